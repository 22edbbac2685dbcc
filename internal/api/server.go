package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/OpenCourseHub/CourseForge/internal/auth"
	"github.com/OpenCourseHub/CourseForge/internal/config"
	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
	"github.com/OpenCourseHub/CourseForge/internal/db"
	"github.com/OpenCourseHub/CourseForge/internal/jobs"
	"github.com/OpenCourseHub/CourseForge/internal/repository"
	"github.com/OpenCourseHub/CourseForge/internal/val"
)

// AccessChecker answers authoring-permission questions. Satisfied by
// repository.AccessRepository.
type AccessChecker interface {
	HasCourseAuthorAccess(ctx context.Context, userID string, key contentstore.CourseKey) (bool, error)
	AuthorableCourseIDs(ctx context.Context, userID string) ([]string, error)
}

// Enqueuer schedules background report warmups. Satisfied by jobs.Queue.
type Enqueuer interface {
	EnqueueWarmReport(courseID string) (string, error)
}

type Server struct {
	config      *config.Config
	auth        *auth.Auth
	authMW      *auth.Middleware
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	sessions    auth.SessionChecker
	access      AccessChecker
	store       contentstore.Store
	videos      val.Finder
	queue       Enqueuer
	events      *EventHub
	router      *http.ServeMux
	version     string
}

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewServer(cfg *config.Config, database *db.DB, store contentstore.Store, videos val.Finder, queue *jobs.Queue, version string) (*Server, error) {
	authService, err := auth.NewAuth(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return nil, err
	}

	sessionRepo := repository.NewSessionRepository(database.DB)

	s := &Server{
		config:      cfg,
		auth:        authService,
		authMW:      auth.NewMiddleware(authService, sessionRepo),
		userRepo:    repository.NewUserRepository(database.DB),
		sessionRepo: sessionRepo,
		sessions:    sessionRepo,
		access:      repository.NewAccessRepository(database.DB),
		store:       store,
		videos:      videos,
		queue:       queue,
		events:      NewEventHub(),
		router:      http.NewServeMux(),
		version:     version,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) Events() *EventHub {
	return s.events
}

func (s *Server) setupRoutes() {
	// Public
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.router.HandleFunc("POST /api/v1/auth/register", s.rlAuth(s.handleRegister))
	s.router.HandleFunc("POST /api/v1/auth/login", s.rlAuth(s.handleLogin))

	// Session management
	s.router.HandleFunc("POST /api/v1/auth/logout", s.requireAuth(s.handleLogout))
	s.router.HandleFunc("GET /api/v1/auth/sessions", s.requireAuth(s.handleListSessions))
	s.router.HandleFunc("DELETE /api/v1/auth/sessions/{id}", s.requireAuth(s.handleRevokeSession))

	// Profile
	s.router.HandleFunc("GET /api/v1/profile", s.requireAuth(s.handleGetProfile))

	// WebSocket
	s.router.HandleFunc("GET /api/v1/ws", s.handleWebSocket)

	// Users (staff)
	s.router.HandleFunc("GET /api/v1/users", s.requireStaff(s.handleListUsers))

	// Courses
	s.router.HandleFunc("GET /api/v1/courses", s.requireAuth(s.handleListCourses))
	s.router.HandleFunc("GET /api/v1/courses/{course_id}/outline", s.requireAuth(s.handleCourseOutline))
	s.router.HandleFunc("GET /api/v1/courses/{course_id}/quality", s.requireAuth(s.handleCourseQuality))
	s.router.HandleFunc("POST /api/v1/courses/{course_id}/quality/warm", s.requireStaff(s.handleWarmQuality))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	wrapped := s.authMW.RequireAuth(h)
	return wrapped.ServeHTTP
}

func (s *Server) requireStaff(h http.HandlerFunc) http.HandlerFunc {
	wrapped := s.authMW.RequireAuth(s.authMW.RequireStaff(h))
	return wrapped.ServeHTTP
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, Response{Success: false, Error: message})
}
