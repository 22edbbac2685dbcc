package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OpenCourseHub/CourseForge/internal/auth"
	"github.com/OpenCourseHub/CourseForge/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" {
		s.respondError(w, http.StatusBadRequest, "username and email are required")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "password does not meet requirements")
		return
	}

	// The first account becomes global staff so a fresh install is usable.
	existing, err := s.userRepo.List()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		IsStaff:      len(existing) == 0,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user.PasswordHash = ""
	s.respondJSON(w, http.StatusCreated, Response{Success: true, Data: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil || !user.IsActive {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		UserAgent: r.UserAgent(),
		ExpiresAt: time.Now().Add(s.config.JWTExpiresIn),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	token, err := s.auth.IssueToken(user, session.ID.String())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	user.PasswordHash = ""
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: LoginResponse{Token: token, User: user}})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	sessionID, err := uuid.Parse(user.SessionID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid session")
		return
	}
	userID, _ := uuid.Parse(user.UserID)
	if err := s.sessionRepo.Revoke(sessionID, userID); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to revoke session")
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	userID, _ := uuid.Parse(user.UserID)
	sessions, err := s.sessionRepo.ListByUser(userID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: sessions})
}

func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	userID, _ := uuid.Parse(user.UserID)
	if err := s.sessionRepo.Revoke(sessionID, userID); err != nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	userID, err := uuid.Parse(user.UserID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "user not found")
		return
	}
	u.PasswordHash = ""
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: u})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userRepo.List()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: users})
}
