package contentstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore reads the course tree from the course_blocks table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const blockColumns = `block_key, block_type, is_container, display_name, children,
	visible_to_staff_only, hide_from_toc, graded, highlights,
	self_paced, highlights_enabled, video_id, updated_at`

func (s *PostgresStore) CourseRoot(ctx context.Context, key CourseKey) (*CourseNode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+blockColumns+`
		FROM course_blocks
		WHERE course_id = $1 AND block_type = $2`,
		key.String(), BlockTypeCourse)
	node, err := scanBlock(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("course root %s: %w", key, err)
	}
	return node, nil
}

func (s *PostgresStore) Blocks(ctx context.Context, keys []UsageKey) ([]*CourseNode, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	raw := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = k.String()
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+blockColumns+`
		FROM course_blocks
		WHERE block_key = ANY($1)`,
		pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	defer rows.Close()
	return collectBlocks(rows)
}

func (s *PostgresStore) CourseBlocks(ctx context.Context, key CourseKey) ([]*CourseNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+blockColumns+`
		FROM course_blocks
		WHERE course_id = $1`,
		key.String())
	if err != nil {
		return nil, fmt.Errorf("course blocks %s: %w", key, err)
	}
	defer rows.Close()
	return collectBlocks(rows)
}

func (s *PostgresStore) BlocksByType(ctx context.Context, key CourseKey, blockType string) ([]*CourseNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+blockColumns+`
		FROM course_blocks
		WHERE course_id = $1 AND block_type = $2`,
		key.String(), blockType)
	if err != nil {
		return nil, fmt.Errorf("blocks by type %s/%s: %w", key, blockType, err)
	}
	defer rows.Close()
	return collectBlocks(rows)
}

func (s *PostgresStore) ListCourses(ctx context.Context) ([]CourseKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT course_id FROM course_blocks
		WHERE block_type = $1 ORDER BY course_id`,
		BlockTypeCourse)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()
	return collectCourseKeys(rows)
}

func (s *PostgresStore) RecentCourses(ctx context.Context, since time.Time) ([]CourseKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT course_id FROM course_blocks
		WHERE updated_at >= $1 ORDER BY course_id`,
		since)
	if err != nil {
		return nil, fmt.Errorf("recent courses: %w", err)
	}
	defer rows.Close()
	return collectCourseKeys(rows)
}

// ── Row scanning ──

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlock(row rowScanner) (*CourseNode, error) {
	var (
		n          CourseNode
		rawKey     string
		isCont     bool
		children   pq.StringArray
		highlights pq.StringArray
		selfPaced  sql.NullBool
		hlEnabled  sql.NullBool
		videoID    sql.NullString
	)
	err := row.Scan(&rawKey, new(string), &isCont, &n.DisplayName, &children,
		&n.VisibleToStaffOnly, &n.HideFromTOC, &n.Graded, &highlights,
		&selfPaced, &hlEnabled, &videoID, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	key, err := ParseUsageKey(rawKey)
	if err != nil {
		return nil, fmt.Errorf("stored key %q: %w", rawKey, err)
	}
	n.Key = key
	if isCont {
		n.Kind = KindContainer
		n.Children = make([]UsageKey, 0, len(children))
		for _, c := range children {
			ck, err := ParseUsageKey(c)
			if err != nil {
				return nil, fmt.Errorf("child key %q of %s: %w", c, key, err)
			}
			n.Children = append(n.Children, ck)
		}
	} else {
		n.Kind = KindLeaf
	}
	n.Highlights = []string(highlights)
	n.SelfPaced = selfPaced.Bool
	n.HighlightsEnabled = hlEnabled.Bool
	n.VideoID = videoID.String
	return &n, nil
}

func collectBlocks(rows *sql.Rows) ([]*CourseNode, error) {
	var out []*CourseNode
	for rows.Next() {
		n, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func collectCourseKeys(rows *sql.Rows) ([]CourseKey, error) {
	var out []CourseKey
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		key, err := ParseCourseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("stored course id %q: %w", raw, err)
		}
		out = append(out, key)
	}
	return out, rows.Err()
}
