package contentstore

import (
	"context"
	"time"
)

// Depth controls how much of a course subtree LoadCourse materializes
// eagerly. It is a prefetch hint for the store, not a correctness contract:
// blocks outside the prefetched window are still fetched on demand.
type Depth int

const (
	// DepthCourse fetches the course root only.
	DepthCourse Depth = iota
	// DepthSections fetches the root plus its direct children.
	DepthSections
	// DepthAll fetches every block in the course.
	DepthAll
)

// Store is the read side of the course document store. All methods are safe
// for concurrent use; none of them mutate.
type Store interface {
	// CourseRoot returns the course root block, or ErrNotFound.
	CourseRoot(ctx context.Context, key CourseKey) (*CourseNode, error)

	// Blocks bulk-fetches the given keys. Keys absent from the store are
	// omitted from the result; callers that need every key check lengths.
	Blocks(ctx context.Context, keys []UsageKey) ([]*CourseNode, error)

	// CourseBlocks returns every block belonging to the course.
	CourseBlocks(ctx context.Context, key CourseKey) ([]*CourseNode, error)

	// BlocksByType returns every block of the given type in the course,
	// with no visibility filtering.
	BlocksByType(ctx context.Context, key CourseKey, blockType string) ([]*CourseNode, error)

	// ListCourses returns the keys of all courses in the store.
	ListCourses(ctx context.Context) ([]CourseKey, error)

	// RecentCourses returns courses with any block edited since the cutoff.
	RecentCourses(ctx context.Context, since time.Time) ([]CourseKey, error)
}
