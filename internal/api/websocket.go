package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"nhooyr.io/websocket"

	"github.com/OpenCourseHub/CourseForge/internal/auth"
)

// ──────────────────── Event Hub ────────────────────

const taskUpdateEvent = "task:update"

// EventHub fans background-job lifecycle events out to connected authoring
// clients. The latest update for each unfinished task is retained so a client
// that connects mid-warmup still sees it.
type EventHub struct {
	mu      sync.RWMutex
	clients map[*eventClient]struct{}
	active  map[string][]byte // task_id to its last serialized update
}

type eventClient struct {
	send chan []byte
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[*eventClient]struct{}),
		active:  make(map[string][]byte),
	}
}

// Broadcast sends an event to every connected client. A client whose send
// buffer is full misses the event rather than blocking the hub.
func (h *EventHub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{event, data})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if event == taskUpdateEvent {
		h.rememberTask(data, payload)
	}
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// rememberTask keeps the latest payload per unfinished task and drops the
// entry once the task reaches a terminal status. Caller holds h.mu.
func (h *EventHub) rememberTask(data interface{}, payload []byte) {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return
	}
	taskID, _ := fields["task_id"].(string)
	if taskID == "" {
		return
	}
	switch fields["status"] {
	case "complete", "failed":
		delete(h.active, taskID)
	default:
		h.active[taskID] = payload
	}
}

// attach registers a client and replays unfinished task state so it starts
// current.
func (h *EventHub) attach(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	for _, payload := range h.active {
		select {
		case c.send <- payload:
		default:
		}
	}
}

func (h *EventHub) detach(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ──────────────────── WebSocket Handler ────────────────────

// GET /api/v1/ws upgrades to the event stream. The handshake enforces the
// same token and session-liveness checks as the REST routes, so a revoked
// session cannot open or keep an event stream.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := s.wsClaims(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}

	client := &eventClient{send: make(chan []byte, 64)}
	s.events.attach(client)
	log.Printf("event stream opened for user %s", claims.Subject)

	ctx := r.Context()
	go func() {
		defer conn.Close(websocket.StatusNormalClosure, "")
		for payload := range client.send {
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}()

	// Clients only listen; the read loop exists to notice disconnects.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	s.events.detach(client)
	log.Printf("event stream closed for user %s", claims.Subject)
}

// wsClaims authenticates a handshake request: token from the query parameter
// or bearer header, then the session-liveness check shared with the REST
// middleware.
func (s *Server) wsClaims(r *http.Request) (*auth.Claims, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	claims, err := s.auth.ParseToken(token)
	if err != nil {
		return nil, err
	}
	live, err := s.sessions.IsLive(r.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}
