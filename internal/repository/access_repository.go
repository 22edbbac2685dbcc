package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
)

// AccessRepository answers course-authoring permission questions from the
// users and course_access_roles tables. It never touches the content store,
// so permission checks cost nothing against course data.
type AccessRepository struct {
	db *sql.DB
}

func NewAccessRepository(db *sql.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// HasCourseAuthorAccess reports whether the user may author the course:
// global staff, or a staff/instructor role on the course itself.
func (r *AccessRepository) HasCourseAuthorAccess(ctx context.Context, userID string, key contentstore.CourseKey) (bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}
	var ok bool
	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE id=$1 AND is_active AND is_staff
		) OR EXISTS (
			SELECT 1 FROM course_access_roles
			WHERE user_id=$1 AND course_id=$2 AND role IN ('staff', 'instructor')
		)`, id, key.String(),
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("author access check: %w", err)
	}
	return ok, nil
}

// AuthorableCourseIDs returns the course ids the user holds an authoring role
// on. Global staff authors every course; callers handle that via IsStaff.
func (r *AccessRepository) AuthorableCourseIDs(ctx context.Context, userID string) ([]string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT course_id FROM course_access_roles
		WHERE user_id=$1 AND role IN ('staff', 'instructor')
		ORDER BY course_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		out = append(out, cid)
	}
	return out, rows.Err()
}

// Grant adds a course role for a user, idempotently.
func (r *AccessRepository) Grant(ctx context.Context, userID uuid.UUID, key contentstore.CourseKey, role string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO course_access_roles (user_id, course_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id, role) DO NOTHING`,
		userID, key.String(), role)
	return err
}
