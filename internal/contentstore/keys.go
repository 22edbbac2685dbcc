package contentstore

import (
	"fmt"
	"regexp"
)

// Key formats follow the opaque-key convention used by the authoring
// frontend: course-v1:Org+Course+Run for courses, and
// block-v1:Org+Course+Run+type@<type>+block@<id> for individual blocks.

var (
	courseKeyRe = regexp.MustCompile(`^course-v1:([A-Za-z0-9_.-]+)\+([A-Za-z0-9_.-]+)\+([A-Za-z0-9_.-]+)$`)
	usageKeyRe  = regexp.MustCompile(`^block-v1:([A-Za-z0-9_.-]+)\+([A-Za-z0-9_.-]+)\+([A-Za-z0-9_.-]+)\+type@([a-z0-9_]+)\+block@([A-Za-z0-9_.-]+)$`)
)

type CourseKey struct {
	Org    string
	Course string
	Run    string
}

func ParseCourseKey(s string) (CourseKey, error) {
	m := courseKeyRe.FindStringSubmatch(s)
	if m == nil {
		return CourseKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return CourseKey{Org: m[1], Course: m[2], Run: m[3]}, nil
}

func (k CourseKey) String() string {
	return fmt.Sprintf("course-v1:%s+%s+%s", k.Org, k.Course, k.Run)
}

func (k CourseKey) IsZero() bool {
	return k == CourseKey{}
}

// UsageKey identifies a single block within a course.
type UsageKey struct {
	CourseKey
	BlockType string
	BlockID   string
}

func ParseUsageKey(s string) (UsageKey, error) {
	m := usageKeyRe.FindStringSubmatch(s)
	if m == nil {
		return UsageKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return UsageKey{
		CourseKey: CourseKey{Org: m[1], Course: m[2], Run: m[3]},
		BlockType: m[4],
		BlockID:   m[5],
	}, nil
}

func (k UsageKey) String() string {
	return fmt.Sprintf("block-v1:%s+%s+%s+type@%s+block@%s", k.Org, k.Course, k.Run, k.BlockType, k.BlockID)
}

// NewUsageKey builds a usage key for a block in the given course.
func NewUsageKey(course CourseKey, blockType, blockID string) UsageKey {
	return UsageKey{CourseKey: course, BlockType: blockType, BlockID: blockID}
}
