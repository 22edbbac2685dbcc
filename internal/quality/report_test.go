package quality

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
	"github.com/OpenCourseHub/CourseForge/internal/val"
)

var testCourse = contentstore.CourseKey{Org: "AcmeU", Course: "CS101", Run: "2026"}

// fakeStore serves an in-memory course tree.
type fakeStore struct {
	blocks map[contentstore.UsageKey]*contentstore.CourseNode
}

func newFakeStore(blocks ...*contentstore.CourseNode) *fakeStore {
	s := &fakeStore{blocks: make(map[contentstore.UsageKey]*contentstore.CourseNode)}
	for _, b := range blocks {
		s.blocks[b.Key] = b
	}
	return s
}

func (s *fakeStore) CourseRoot(ctx context.Context, key contentstore.CourseKey) (*contentstore.CourseNode, error) {
	for _, b := range s.blocks {
		if b.Key.CourseKey == key && b.Key.BlockType == contentstore.BlockTypeCourse {
			return b, nil
		}
	}
	return nil, contentstore.ErrNotFound
}

func (s *fakeStore) Blocks(ctx context.Context, keys []contentstore.UsageKey) ([]*contentstore.CourseNode, error) {
	var out []*contentstore.CourseNode
	for _, k := range keys {
		if b, ok := s.blocks[k]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) CourseBlocks(ctx context.Context, key contentstore.CourseKey) ([]*contentstore.CourseNode, error) {
	var out []*contentstore.CourseNode
	for _, b := range s.blocks {
		if b.Key.CourseKey == key {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) BlocksByType(ctx context.Context, key contentstore.CourseKey, blockType string) ([]*contentstore.CourseNode, error) {
	var out []*contentstore.CourseNode
	for _, b := range s.blocks {
		if b.Key.CourseKey == key && b.Key.BlockType == blockType {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) ListCourses(ctx context.Context) ([]contentstore.CourseKey, error) {
	return []contentstore.CourseKey{testCourse}, nil
}

func (s *fakeStore) RecentCourses(ctx context.Context, since time.Time) ([]contentstore.CourseKey, error) {
	return nil, nil
}

type fakeFinder struct {
	records []val.Record
}

func (f *fakeFinder) VideosForCourse(ctx context.Context, key contentstore.CourseKey) ([]val.Record, error) {
	return f.records, nil
}

// ── tree builders ──

func key(blockType, id string) contentstore.UsageKey {
	return contentstore.NewUsageKey(testCourse, blockType, id)
}

func container(blockType, id string, children ...contentstore.UsageKey) *contentstore.CourseNode {
	return &contentstore.CourseNode{
		Key:      key(blockType, id),
		Kind:     contentstore.KindContainer,
		Children: children,
	}
}

func leaf(blockType, id string) *contentstore.CourseNode {
	return &contentstore.CourseNode{
		Key:  key(blockType, id),
		Kind: contentstore.KindLeaf,
	}
}

// referenceCourse builds the canonical fixture: two sections (one hidden),
// the visible one holding a single subsection with two units whose leaf
// block types are {video, video} and {html}.
func referenceCourse() *fakeStore {
	videoA := leaf("video", "clip-a")
	videoB := leaf("video", "clip-b")
	videoA.VideoID = "val-a"
	html := leaf("html", "reading")

	unit1 := container(contentstore.BlockTypeUnit, "unit1", videoA.Key, videoB.Key)
	unit2 := container(contentstore.BlockTypeUnit, "unit2", html.Key)
	sub1 := container(contentstore.BlockTypeSubsection, "sub1", unit1.Key, unit2.Key)
	sec1 := container(contentstore.BlockTypeSection, "week1", sub1.Key)
	sec2 := container(contentstore.BlockTypeSection, "week2")
	sec2.VisibleToStaffOnly = true
	root := container(contentstore.BlockTypeCourse, "course", sec1.Key, sec2.Key)

	return newFakeStore(root, sec1, sec2, sub1, unit1, unit2, videoA, videoB, html)
}

func buildReport(t *testing.T, store contentstore.Store, finder val.Finder, opts Options) *Report {
	t.Helper()
	if finder == nil {
		finder = &fakeFinder{}
	}
	b := NewBuilder(contentstore.NewAccessor(store), finder)
	report, err := b.Build(context.Background(), testCourse, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return report
}

func TestReport_ReferenceCourse(t *testing.T) {
	store := referenceCourse()
	report := buildReport(t, store, nil, Options{Sections: true, Subsections: true, Units: true})

	sec := report.Sections
	if sec.TotalNumber != 2 || sec.TotalVisible != 1 {
		t.Errorf("sections: expected total=2 visible=1, got %+v", sec)
	}
	if sec.NumberWithHighlights != 0 {
		t.Errorf("sections with highlights: expected 0, got %d", sec.NumberWithHighlights)
	}

	sub := report.Subsections
	if sub.TotalVisible != 1 {
		t.Errorf("subsections visible: expected 1, got %d", sub.TotalVisible)
	}
	if sub.NumWithOneBlockType != 0 {
		t.Errorf("one-block-type subsections: expected 0, got %d", sub.NumWithOneBlockType)
	}
	// union of {video} and {html} is two block types
	for name, got := range map[string]*float64{
		"min": sub.NumBlockTypes.Min, "max": sub.NumBlockTypes.Max,
		"mean": sub.NumBlockTypes.Mean, "median": sub.NumBlockTypes.Median,
		"mode": sub.NumBlockTypes.Mode,
	} {
		if got == nil || *got != 2 {
			t.Errorf("num_block_types.%s: expected 2, got %v", name, got)
		}
	}

	units := report.Units
	if units.TotalVisible != 2 {
		t.Errorf("units visible: expected 2, got %d", units.TotalVisible)
	}
	if *units.NumBlocks.Min != 1 || *units.NumBlocks.Max != 2 {
		t.Errorf("num_blocks min/max: expected 1/2, got %v/%v", *units.NumBlocks.Min, *units.NumBlocks.Max)
	}
	if *units.NumBlocks.Mode != 1 {
		t.Errorf("num_blocks mode (tie): expected 1, got %v", *units.NumBlocks.Mode)
	}
}

func TestReport_EmptyCourse(t *testing.T) {
	store := newFakeStore(container(contentstore.BlockTypeCourse, "course"))
	report := buildReport(t, store, nil, Options{Sections: true, Subsections: true, Units: true})

	if report.Sections.TotalNumber != 0 || report.Sections.TotalVisible != 0 {
		t.Errorf("empty course sections: %+v", report.Sections)
	}
	if report.Sections.NumberWithHighlights != 0 {
		t.Errorf("empty course highlights: %+v", report.Sections)
	}
	if report.Subsections.TotalVisible != 0 {
		t.Errorf("empty course subsections: %+v", report.Subsections)
	}
	if report.Subsections.NumBlockTypes.Min != nil {
		t.Errorf("stats over empty input must be nil: %+v", report.Subsections.NumBlockTypes)
	}
	if report.Units.TotalVisible != 0 || report.Units.NumBlocks.Mode != nil {
		t.Errorf("empty course units: %+v", report.Units)
	}
}

func TestReport_HighlightsAndSelfPaced(t *testing.T) {
	sec1 := container(contentstore.BlockTypeSection, "week1")
	sec1.Highlights = []string{"derivatives", "limits"}
	sec2 := container(contentstore.BlockTypeSection, "week2")
	root := container(contentstore.BlockTypeCourse, "course", sec1.Key, sec2.Key)
	root.SelfPaced = true
	root.HighlightsEnabled = true

	report := buildReport(t, newFakeStore(root, sec1, sec2), nil, Options{Sections: true})
	if !report.IsSelfPaced {
		t.Error("expected self-paced course")
	}
	if !report.Sections.HighlightsEnabled {
		t.Error("expected highlights enabled")
	}
	if report.Sections.NumberWithHighlights != 1 {
		t.Errorf("expected 1 section with highlights, got %d", report.Sections.NumberWithHighlights)
	}
}

func TestReport_HiddenNodesNeverCounted(t *testing.T) {
	// A hidden unit inside a visible subsection, and a hidden leaf inside a
	// visible unit: neither may reach any aggregate.
	shown := leaf("problem", "quiz")
	hidden := leaf("html", "secret")
	hidden.HideFromTOC = true

	unit1 := container(contentstore.BlockTypeUnit, "unit1", shown.Key, hidden.Key)
	unit2 := container(contentstore.BlockTypeUnit, "unit2")
	unit2.VisibleToStaffOnly = true
	sub := container(contentstore.BlockTypeSubsection, "sub", unit1.Key, unit2.Key)
	sec := container(contentstore.BlockTypeSection, "week1", sub.Key)
	root := container(contentstore.BlockTypeCourse, "course", sec.Key)

	report := buildReport(t, newFakeStore(root, sec, sub, unit1, unit2, shown, hidden), nil,
		Options{Subsections: true, Units: true})

	if report.Units.TotalVisible != 1 {
		t.Errorf("expected 1 visible unit, got %d", report.Units.TotalVisible)
	}
	if *report.Units.NumBlocks.Max != 1 {
		t.Errorf("hidden leaf was counted: %v", *report.Units.NumBlocks.Max)
	}
	if *report.Subsections.NumBlockTypes.Max != 1 {
		t.Errorf("hidden leaf type was counted: %v", *report.Subsections.NumBlockTypes.Max)
	}
}

func TestReport_SubsectionWithoutUnits(t *testing.T) {
	// A visible subsection with no visible units still counts, with a
	// block-type union of size zero.
	empty := container(contentstore.BlockTypeSubsection, "empty")
	sec := container(contentstore.BlockTypeSection, "week1", empty.Key)
	root := container(contentstore.BlockTypeCourse, "course", sec.Key)

	report := buildReport(t, newFakeStore(root, sec, empty), nil,
		Options{Subsections: true, Units: true})

	if report.Subsections.TotalVisible != 1 {
		t.Errorf("expected 1 subsection, got %d", report.Subsections.TotalVisible)
	}
	if report.Subsections.NumBlockTypes.Min == nil || *report.Subsections.NumBlockTypes.Min != 0 {
		t.Errorf("expected union size 0, got %v", report.Subsections.NumBlockTypes.Min)
	}
	if report.Units.TotalVisible != 0 {
		t.Errorf("expected 0 units, got %d", report.Units.TotalVisible)
	}
}

func TestReport_ExcludeGradedShrinksSubsections(t *testing.T) {
	u1 := container(contentstore.BlockTypeUnit, "u1", key("html", "h1"))
	u2 := container(contentstore.BlockTypeUnit, "u2", key("html", "h2"))
	h1 := leaf("html", "h1")
	h2 := leaf("html", "h2")
	graded := container(contentstore.BlockTypeSubsection, "exam", u1.Key)
	graded.Graded = true
	ungraded := container(contentstore.BlockTypeSubsection, "practice", u2.Key)
	sec := container(contentstore.BlockTypeSection, "week1", graded.Key, ungraded.Key)
	root := container(contentstore.BlockTypeCourse, "course", sec.Key)
	store := newFakeStore(root, sec, graded, ungraded, u1, u2, h1, h2)

	full := buildReport(t, store, nil, Options{Subsections: true})
	reduced := buildReport(t, store, nil, Options{Subsections: true, ExcludeGraded: true})

	if full.Subsections.TotalVisible != 2 {
		t.Fatalf("expected 2 subsections, got %d", full.Subsections.TotalVisible)
	}
	if reduced.Subsections.TotalVisible != 1 {
		t.Errorf("exclude_graded: expected 1 subsection, got %d", reduced.Subsections.TotalVisible)
	}
	if reduced.Subsections.TotalVisible > full.Subsections.TotalVisible {
		t.Error("exclude_graded may never increase the subsection count")
	}
}

func TestReport_Videos(t *testing.T) {
	store := referenceCourse()
	finder := &fakeFinder{records: []val.Record{
		{EdxVideoID: "val-a", Duration: 120},
	}}
	report := buildReport(t, store, finder, Options{Videos: true})

	v := report.Videos
	if v.TotalNumber != 2 {
		t.Errorf("expected 2 video blocks, got %d", v.TotalNumber)
	}
	if v.NumWithValID != 1 {
		t.Errorf("expected 1 block with a val id, got %d", v.NumWithValID)
	}
	if v.NumMobileEncoded != 1 {
		t.Errorf("expected 1 encoded video, got %d", v.NumMobileEncoded)
	}
	if *v.Durations.Min != 120 || *v.Durations.Max != 120 {
		t.Errorf("durations: %+v", v.Durations)
	}
}

func TestReport_NoVideos(t *testing.T) {
	store := newFakeStore(container(contentstore.BlockTypeCourse, "course"))
	report := buildReport(t, store, nil, Options{Videos: true})

	v := report.Videos
	if v.TotalNumber != 0 || v.NumWithValID != 0 || v.NumMobileEncoded != 0 {
		t.Errorf("expected all-zero video counts, got %+v", v)
	}
	if v.Durations.Min != nil || v.Durations.Mode != nil {
		t.Errorf("expected nil duration stats, got %+v", v.Durations)
	}
}

func TestReport_HiddenVideosStillCounted(t *testing.T) {
	// The video total is a raw store scan; visibility does not apply.
	hiddenVideo := leaf("video", "staff-only-clip")
	hiddenVideo.VisibleToStaffOnly = true
	unit := container(contentstore.BlockTypeUnit, "unit", hiddenVideo.Key)
	sub := container(contentstore.BlockTypeSubsection, "sub", unit.Key)
	sec := container(contentstore.BlockTypeSection, "week1", sub.Key)
	root := container(contentstore.BlockTypeCourse, "course", sec.Key)

	report := buildReport(t, newFakeStore(root, sec, sub, unit, hiddenVideo), nil, Options{Videos: true})
	if report.Videos.TotalNumber != 1 {
		t.Errorf("hidden video missing from total: %+v", report.Videos)
	}
}

func TestReport_UnrequestedSectionsOmitted(t *testing.T) {
	store := referenceCourse()
	report := buildReport(t, store, nil, Options{Sections: true})

	if report.Sections == nil {
		t.Fatal("sections requested but missing")
	}
	if report.Subsections != nil || report.Units != nil || report.Videos != nil {
		t.Errorf("unrequested sections present: %+v", report)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := decoded["subsections"]; present {
		t.Error("subsections serialized despite not being requested")
	}
	if _, present := decoded["is_self_paced"]; !present {
		t.Error("is_self_paced must always be present")
	}
}

func TestReport_Idempotent(t *testing.T) {
	store := referenceCourse()
	opts := Options{Sections: true, Subsections: true, Units: true, Videos: true}

	first := buildReport(t, store, nil, opts)
	second := buildReport(t, store, nil, opts)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("reports differ across runs:\n%s\n%s", a, b)
	}
}
