package contentstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeStore serves blocks from memory and counts store round trips.
type fakeStore struct {
	blocks map[UsageKey]*CourseNode
	calls  int
}

func newFakeStore(blocks ...*CourseNode) *fakeStore {
	s := &fakeStore{blocks: make(map[UsageKey]*CourseNode)}
	for _, b := range blocks {
		s.blocks[b.Key] = b
	}
	return s
}

func (s *fakeStore) CourseRoot(ctx context.Context, key CourseKey) (*CourseNode, error) {
	s.calls++
	for _, b := range s.blocks {
		if b.Key.CourseKey == key && b.Key.BlockType == BlockTypeCourse {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) Blocks(ctx context.Context, keys []UsageKey) ([]*CourseNode, error) {
	s.calls++
	var out []*CourseNode
	for _, k := range keys {
		if b, ok := s.blocks[k]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) CourseBlocks(ctx context.Context, key CourseKey) ([]*CourseNode, error) {
	s.calls++
	var out []*CourseNode
	for _, b := range s.blocks {
		if b.Key.CourseKey == key {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) BlocksByType(ctx context.Context, key CourseKey, blockType string) ([]*CourseNode, error) {
	s.calls++
	var out []*CourseNode
	for _, b := range s.blocks {
		if b.Key.CourseKey == key && b.Key.BlockType == blockType {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) ListCourses(ctx context.Context) ([]CourseKey, error) {
	s.calls++
	var out []CourseKey
	for _, b := range s.blocks {
		if b.Key.BlockType == BlockTypeCourse {
			out = append(out, b.Key.CourseKey)
		}
	}
	return out, nil
}

func (s *fakeStore) RecentCourses(ctx context.Context, since time.Time) ([]CourseKey, error) {
	s.calls++
	return nil, nil
}

var testCourse = CourseKey{Org: "AcmeU", Course: "CS101", Run: "2026"}

func container(blockType, id string, children ...UsageKey) *CourseNode {
	return &CourseNode{
		Key:      NewUsageKey(testCourse, blockType, id),
		Kind:     KindContainer,
		Children: children,
	}
}

func leaf(blockType, id string) *CourseNode {
	return &CourseNode{
		Key:  NewUsageKey(testCourse, blockType, id),
		Kind: KindLeaf,
	}
}

func TestAccessor_GetCachesBlocks(t *testing.T) {
	block := leaf("html", "intro")
	store := newFakeStore(block)
	acc := NewAccessor(store)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := acc.Get(ctx, block.Key)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if got != block {
			t.Fatalf("get %d returned wrong block", i)
		}
	}
	if store.calls != 1 {
		t.Errorf("expected 1 store call, got %d", store.calls)
	}
}

func TestAccessor_LoadCourseDepthAll(t *testing.T) {
	sec := container(BlockTypeSection, "week1")
	root := container(BlockTypeCourse, "course", sec.Key)
	store := newFakeStore(root, sec)
	acc := NewAccessor(store)

	ctx := context.Background()
	got, err := acc.LoadCourse(ctx, testCourse, DepthAll)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Key != root.Key {
		t.Errorf("wrong root: %s", got.Key)
	}

	// Everything is prefetched; further reads stay in-process.
	if _, err := acc.Get(ctx, sec.Key); err != nil {
		t.Fatalf("get section: %v", err)
	}
	if store.calls != 1 {
		t.Errorf("expected 1 store call after full prefetch, got %d", store.calls)
	}

	// A key the course does not contain is a miss without a round trip.
	missing := NewUsageKey(testCourse, "html", "ghost")
	if _, err := acc.Get(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if store.calls != 1 {
		t.Errorf("miss after full prefetch hit the store: %d calls", store.calls)
	}
}

func TestAccessor_LoadCourseDepthSections(t *testing.T) {
	sec1 := container(BlockTypeSection, "week1")
	sec2 := container(BlockTypeSection, "week2")
	root := container(BlockTypeCourse, "course", sec1.Key, sec2.Key)
	store := newFakeStore(root, sec1, sec2)
	acc := NewAccessor(store)

	ctx := context.Background()
	if _, err := acc.LoadCourse(ctx, testCourse, DepthSections); err != nil {
		t.Fatalf("load: %v", err)
	}
	callsAfterLoad := store.calls

	sections, err := acc.GetMany(ctx, root.Children)
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	if len(sections) != 2 || sections[0].Key != sec1.Key || sections[1].Key != sec2.Key {
		t.Errorf("sections out of order or missing: %v", sections)
	}
	if store.calls != callsAfterLoad {
		t.Errorf("section reads after prefetch hit the store")
	}
}

func TestAccessor_LoadCourseNotFound(t *testing.T) {
	acc := NewAccessor(newFakeStore())
	_, err := acc.LoadCourse(context.Background(), testCourse, DepthAll)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccessor_GetManyPreservesOrder(t *testing.T) {
	a := leaf("html", "a")
	b := leaf("video", "b")
	c := leaf("problem", "c")
	store := newFakeStore(a, b, c)
	acc := NewAccessor(store)

	keys := []UsageKey{c.Key, a.Key, b.Key}
	got, err := acc.GetMany(context.Background(), keys)
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	for i, k := range keys {
		if got[i].Key != k {
			t.Errorf("position %d: expected %s, got %s", i, k, got[i].Key)
		}
	}
	if store.calls != 1 {
		t.Errorf("expected a single bulk call, got %d", store.calls)
	}
}

func TestChildrenOf(t *testing.T) {
	sec := container(BlockTypeSection, "week1")
	root := container(BlockTypeCourse, "course", sec.Key)
	if got := ChildrenOf(root); len(got) != 1 || got[0] != sec.Key {
		t.Errorf("unexpected children: %v", got)
	}
	if got := ChildrenOf(leaf("html", "x")); got != nil {
		t.Errorf("leaf children should be nil, got %v", got)
	}
	empty := container(BlockTypeUnit, "empty")
	if got := ChildrenOf(empty); len(got) != 0 {
		t.Errorf("empty container children should be empty, got %v", got)
	}
}
