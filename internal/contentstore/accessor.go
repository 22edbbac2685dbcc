package contentstore

import (
	"context"
	"fmt"
)

// Accessor wraps a Store with a request-scoped node cache: within one
// accessor's lifetime each distinct block is fetched from the store at most
// once, no matter how many report computations touch it. Accessors are cheap;
// create one per request and discard it.
type Accessor struct {
	store Store
	nodes map[UsageKey]*CourseNode
	// full is set once the whole course has been prefetched, so cache
	// misses can be answered without another store round trip.
	full map[CourseKey]bool
}

func NewAccessor(store Store) *Accessor {
	return &Accessor{
		store: store,
		nodes: make(map[UsageKey]*CourseNode),
		full:  make(map[CourseKey]bool),
	}
}

// LoadCourse returns the course root, prefetching the subtree according to
// the depth hint.
func (a *Accessor) LoadCourse(ctx context.Context, key CourseKey, depth Depth) (*CourseNode, error) {
	switch depth {
	case DepthAll:
		blocks, err := a.store.CourseBlocks(ctx, key)
		if err != nil {
			return nil, err
		}
		var root *CourseNode
		for _, b := range blocks {
			a.nodes[b.Key] = b
			if b.Key.BlockType == BlockTypeCourse {
				root = b
			}
		}
		if root == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		a.full[key] = true
		return root, nil

	case DepthSections:
		root, err := a.store.CourseRoot(ctx, key)
		if err != nil {
			return nil, err
		}
		a.nodes[root.Key] = root
		if _, err := a.GetMany(ctx, root.Children); err != nil {
			return nil, err
		}
		return root, nil

	default:
		root, err := a.store.CourseRoot(ctx, key)
		if err != nil {
			return nil, err
		}
		a.nodes[root.Key] = root
		return root, nil
	}
}

// Get returns one block, from cache when possible.
func (a *Accessor) Get(ctx context.Context, key UsageKey) (*CourseNode, error) {
	if n, ok := a.nodes[key]; ok {
		return n, nil
	}
	if a.full[key.CourseKey] {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	blocks, err := a.store.Blocks(ctx, []UsageKey{key})
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	a.nodes[key] = blocks[0]
	return blocks[0], nil
}

// GetMany returns the blocks for the given keys in input order, bulk-fetching
// whatever the cache is missing in a single store call.
func (a *Accessor) GetMany(ctx context.Context, keys []UsageKey) ([]*CourseNode, error) {
	var missing []UsageKey
	for _, k := range keys {
		if _, ok := a.nodes[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		fetchNeeded := missing
		if len(a.full) > 0 {
			fetchNeeded = nil
			for _, k := range missing {
				if !a.full[k.CourseKey] {
					fetchNeeded = append(fetchNeeded, k)
				}
			}
		}
		if len(fetchNeeded) > 0 {
			blocks, err := a.store.Blocks(ctx, fetchNeeded)
			if err != nil {
				return nil, err
			}
			for _, b := range blocks {
				a.nodes[b.Key] = b
			}
		}
	}
	out := make([]*CourseNode, 0, len(keys))
	for _, k := range keys {
		n, ok := a.nodes[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
		}
		out = append(out, n)
	}
	return out, nil
}

// BlocksByType returns every block of the given type in the course, with no
// visibility filtering. Served from the cache when the whole course has
// already been prefetched; results of a store scan are cached as well.
func (a *Accessor) BlocksByType(ctx context.Context, key CourseKey, blockType string) ([]*CourseNode, error) {
	if a.full[key] {
		var out []*CourseNode
		for _, n := range a.nodes {
			if n.Key.CourseKey == key && n.Key.BlockType == blockType {
				out = append(out, n)
			}
		}
		return out, nil
	}
	blocks, err := a.store.BlocksByType(ctx, key, blockType)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		a.nodes[b.Key] = b
	}
	return blocks, nil
}
