package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/OpenCourseHub/CourseForge/internal/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(s *models.Session) error {
	return r.db.QueryRow(`
		INSERT INTO sessions (id, user_id, user_agent, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		s.ID, s.UserID, s.UserAgent, s.ExpiresAt,
	).Scan(&s.CreatedAt)
}

// IsLive reports whether the session exists, has not expired, and has not
// been revoked. Satisfies auth.SessionChecker.
func (r *SessionRepository) IsLive(ctx context.Context, sessionID string) (bool, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return false, nil
	}
	var live bool
	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE id=$1 AND expires_at > now() AND revoked_at IS NULL
		)`, id,
	).Scan(&live)
	if err != nil {
		return false, fmt.Errorf("session check: %w", err)
	}
	return live, nil
}

func (r *SessionRepository) ListByUser(userID uuid.UUID) ([]models.Session, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, user_agent, created_at, expires_at, revoked_at
		FROM sessions
		WHERE user_id=$1 AND expires_at > now() AND revoked_at IS NULL
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserAgent, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Revoke marks a session dead; only the owner's sessions are affected.
func (r *SessionRepository) Revoke(sessionID, userID uuid.UUID) error {
	res, err := r.db.Exec(`
		UPDATE sessions SET revoked_at=now()
		WHERE id=$1 AND user_id=$2 AND revoked_at IS NULL`,
		sessionID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteExpired removes sessions past their expiry plus a grace period.
func (r *SessionRepository) DeleteExpired(grace time.Duration) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < $1`, time.Now().Add(-grace))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
