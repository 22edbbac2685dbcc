package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/OpenCourseHub/CourseForge/internal/httputil"
)

type contextKey string

const ContextUser contextKey = "user"

type ContextUserData struct {
	UserID    string
	SessionID string
	IsStaff   bool
}

// SessionChecker reports whether a session is still live (exists, unexpired,
// not revoked).
type SessionChecker interface {
	IsLive(ctx context.Context, sessionID string) (bool, error)
}

type Middleware struct {
	auth     *Auth
	sessions SessionChecker
}

func NewMiddleware(a *Auth, sessions SessionChecker) *Middleware {
	return &Middleware{auth: a, sessions: sessions}
}

func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		claims, err := m.auth.ParseToken(token)
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}

		live, err := m.sessions.IsLive(r.Context(), claims.SessionID)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "SESSION_CHECK_FAILED", "could not verify session")
			return
		}
		if !live {
			httputil.WriteError(w, http.StatusUnauthorized, "SESSION_EXPIRED", "session expired or revoked")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUser, ContextUserData{
			UserID:    claims.Subject,
			SessionID: claims.SessionID,
			IsStaff:   claims.IsStaff,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || !user.IsStaff {
			httputil.WriteError(w, http.StatusForbidden, "FORBIDDEN", "staff access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserFromContext(ctx context.Context) *ContextUserData {
	if v, ok := ctx.Value(ContextUser).(ContextUserData); ok {
		return &v
	}
	return nil
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("session"); err == nil {
		return c.Value
	}
	return ""
}
