package quality

import (
	"context"

	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
	"github.com/OpenCourseHub/CourseForge/internal/val"
)

// Options selects which report sections to compute. All-off still produces a
// report carrying is_self_paced.
type Options struct {
	Sections      bool
	Subsections   bool
	Units         bool
	Videos        bool
	ExcludeGraded bool
}

// depth returns the store prefetch hint for the requested sections: the full
// tree when subsection or unit statistics need leaf traversal, one level for
// section counts, the root alone otherwise.
func (o Options) depth() contentstore.Depth {
	switch {
	case o.Units, o.Subsections:
		return contentstore.DepthAll
	case o.Sections:
		return contentstore.DepthSections
	default:
		return contentstore.DepthCourse
	}
}

type SectionsQuality struct {
	TotalNumber          int  `json:"total_number"`
	TotalVisible         int  `json:"total_visible"`
	NumberWithHighlights int  `json:"number_with_highlights"`
	HighlightsEnabled    bool `json:"highlights_enabled"`
}

type SubsectionsQuality struct {
	TotalVisible        int          `json:"total_visible"`
	NumWithOneBlockType int          `json:"num_with_one_block_type"`
	NumBlockTypes       StatsSummary `json:"num_block_types"`
}

type UnitsQuality struct {
	TotalVisible int          `json:"total_visible"`
	NumBlocks    StatsSummary `json:"num_blocks"`
}

type VideosQuality struct {
	TotalNumber      int          `json:"total_number"`
	NumWithValID     int          `json:"num_with_val_id"`
	NumMobileEncoded int          `json:"num_mobile_encoded"`
	Durations        StatsSummary `json:"durations"`
}

// Report is the transient response aggregate; section objects are present
// only when requested.
type Report struct {
	IsSelfPaced bool                `json:"is_self_paced"`
	Sections    *SectionsQuality    `json:"sections,omitempty"`
	Subsections *SubsectionsQuality `json:"subsections,omitempty"`
	Units       *UnitsQuality       `json:"units,omitempty"`
	Videos      *VideosQuality      `json:"videos,omitempty"`
}

// unitInfo captures what the unit and subsection sections both need from one
// traversal of a unit's subtree.
type unitInfo struct {
	numLeafBlocks  int
	leafBlockTypes map[string]struct{}
}

// Builder computes one quality report. It is request-scoped: the section list
// and the subsection/unit traversal are each computed at most once per
// builder, and the accessor caches every fetched node, so repeated section
// computations never re-query the store. Builders are not safe for
// concurrent use; requests do not share them.
type Builder struct {
	accessor *contentstore.Accessor
	videos   val.Finder

	sections        []*contentstore.CourseNode
	visibleSections []*contentstore.CourseNode
	sectionsLoaded  bool

	// One entry per counted subsection, holding its visible units.
	subsections       [][]unitInfo
	subsectionsLoaded bool
}

func NewBuilder(accessor *contentstore.Accessor, videos val.Finder) *Builder {
	return &Builder{accessor: accessor, videos: videos}
}

// Build assembles the report for one course. Aggregation is all-or-nothing:
// any store or VAL failure aborts the whole report.
func (b *Builder) Build(ctx context.Context, key contentstore.CourseKey, opts Options) (*Report, error) {
	course, err := b.accessor.LoadCourse(ctx, key, opts.depth())
	if err != nil {
		return nil, err
	}

	report := &Report{IsSelfPaced: course.SelfPaced}

	if opts.Sections {
		sq, err := b.sectionsQuality(ctx, course)
		if err != nil {
			return nil, err
		}
		report.Sections = sq
	}
	if opts.Subsections {
		sq, err := b.subsectionsQuality(ctx, course, opts.ExcludeGraded)
		if err != nil {
			return nil, err
		}
		report.Subsections = sq
	}
	if opts.Units {
		uq, err := b.unitsQuality(ctx, course, opts.ExcludeGraded)
		if err != nil {
			return nil, err
		}
		report.Units = uq
	}
	if opts.Videos {
		vq, err := b.videosQuality(ctx, course)
		if err != nil {
			return nil, err
		}
		report.Videos = vq
	}
	return report, nil
}

func (b *Builder) sectionsQuality(ctx context.Context, course *contentstore.CourseNode) (*SectionsQuality, error) {
	sections, visible, err := b.getSections(ctx, course)
	if err != nil {
		return nil, err
	}
	withHighlights := 0
	for _, s := range visible {
		if len(s.Highlights) > 0 {
			withHighlights++
		}
	}
	return &SectionsQuality{
		TotalNumber:          len(sections),
		TotalVisible:         len(visible),
		NumberWithHighlights: withHighlights,
		HighlightsEnabled:    course.HighlightsEnabled,
	}, nil
}

func (b *Builder) subsectionsQuality(ctx context.Context, course *contentstore.CourseNode, excludeGraded bool) (*SubsectionsQuality, error) {
	subsections, err := b.getSubsectionsAndUnits(ctx, course, excludeGraded)
	if err != nil {
		return nil, err
	}

	unionSizes := make([]int, 0, len(subsections))
	oneBlockType := 0
	for _, units := range subsections {
		union := make(map[string]struct{})
		for _, unit := range units {
			for t := range unit.leafBlockTypes {
				union[t] = struct{}{}
			}
		}
		unionSizes = append(unionSizes, len(union))
		if len(union) == 1 {
			oneBlockType++
		}
	}

	return &SubsectionsQuality{
		TotalVisible:        len(subsections),
		NumWithOneBlockType: oneBlockType,
		NumBlockTypes:       SummarizeInts(unionSizes),
	}, nil
}

func (b *Builder) unitsQuality(ctx context.Context, course *contentstore.CourseNode, excludeGraded bool) (*UnitsQuality, error) {
	subsections, err := b.getSubsectionsAndUnits(ctx, course, excludeGraded)
	if err != nil {
		return nil, err
	}

	var leafCounts []int
	for _, units := range subsections {
		for _, unit := range units {
			leafCounts = append(leafCounts, unit.numLeafBlocks)
		}
	}

	return &UnitsQuality{
		TotalVisible: len(leafCounts),
		NumBlocks:    SummarizeInts(leafCounts),
	}, nil
}

func (b *Builder) videosQuality(ctx context.Context, course *contentstore.CourseNode) (*VideosQuality, error) {
	// Full store scan: video totals deliberately ignore visibility.
	videoBlocks, err := b.accessor.BlocksByType(ctx, course.Key.CourseKey, contentstore.BlockTypeVideo)
	if err != nil {
		return nil, err
	}
	encoded, err := b.videos.VideosForCourse(ctx, course.Key.CourseKey)
	if err != nil {
		return nil, err
	}

	withValID := 0
	for _, v := range videoBlocks {
		if v.VideoID != "" {
			withValID++
		}
	}
	durations := make([]float64, 0, len(encoded))
	for _, rec := range encoded {
		durations = append(durations, rec.Duration)
	}

	return &VideosQuality{
		TotalNumber:      len(videoBlocks),
		NumWithValID:     withValID,
		NumMobileEncoded: len(encoded),
		Durations:        Summarize(durations),
	}, nil
}

// getSections returns all direct children of the course and the visible
// subset, computed once per builder.
func (b *Builder) getSections(ctx context.Context, course *contentstore.CourseNode) (all, visible []*contentstore.CourseNode, err error) {
	if !b.sectionsLoaded {
		children, err := b.accessor.GetMany(ctx, contentstore.ChildrenOf(course))
		if err != nil {
			return nil, nil, err
		}
		b.sections = children
		b.visibleSections = visibleOnly(children)
		b.sectionsLoaded = true
	}
	return b.sections, b.visibleSections, nil
}

// getSubsectionsAndUnits walks visible sections down to units and traverses
// each unit's leaves once, computed once per builder and shared by the
// subsection and unit report sections.
func (b *Builder) getSubsectionsAndUnits(ctx context.Context, course *contentstore.CourseNode, excludeGraded bool) ([][]unitInfo, error) {
	if b.subsectionsLoaded {
		return b.subsections, nil
	}

	_, visibleSections, err := b.getSections(ctx, course)
	if err != nil {
		return nil, err
	}

	var out [][]unitInfo
	for _, section := range visibleSections {
		subsections, err := b.visibleChildren(ctx, section)
		if err != nil {
			return nil, err
		}
		for _, sub := range subsections {
			if excludeGraded && sub.Graded {
				continue
			}
			units, err := b.visibleChildren(ctx, sub)
			if err != nil {
				return nil, err
			}
			var infos []unitInfo
			for _, unit := range units {
				leaves, err := b.leafBlocks(ctx, unit)
				if err != nil {
					return nil, err
				}
				types := make(map[string]struct{})
				for _, leaf := range leaves {
					types[leaf.Key.BlockType] = struct{}{}
				}
				infos = append(infos, unitInfo{
					numLeafBlocks:  len(leaves),
					leafBlockTypes: types,
				})
			}
			out = append(out, infos)
		}
	}

	b.subsections = out
	b.subsectionsLoaded = true
	return out, nil
}
