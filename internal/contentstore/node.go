package contentstore

import "time"

// Block types at the fixed container levels of the course hierarchy.
const (
	BlockTypeCourse     = "course"
	BlockTypeSection    = "chapter"
	BlockTypeSubsection = "sequential"
	BlockTypeUnit       = "vertical"
	BlockTypeVideo      = "video"
)

type NodeKind int

const (
	KindContainer NodeKind = iota
	KindLeaf
)

// CourseNode is one block in the course tree. A node is either a container
// (ordered child keys, no content payload) or a leaf (content block with no
// children). The kind is stored explicitly rather than inferred from a nil
// children slice, so an empty container and a leaf stay distinguishable.
type CourseNode struct {
	Key         UsageKey
	Kind        NodeKind
	DisplayName string

	// Container only: ordered child keys, source order preserved.
	Children []UsageKey

	// Learner visibility flags; evaluated per node, never inherited.
	VisibleToStaffOnly bool
	HideFromTOC        bool

	// Subsection level.
	Graded bool

	// Section level: learner-facing highlight strings.
	Highlights []string

	// Course root only.
	SelfPaced         bool
	HighlightsEnabled bool

	// Leaf video blocks: id assigned by the video pipeline, empty if the
	// block was never registered with it.
	VideoID string

	UpdatedAt time.Time
}

func (n *CourseNode) IsLeaf() bool {
	return n.Kind == KindLeaf
}

// VisibleToLearners reports whether the node shows up in the learner-facing
// table of contents.
func (n *CourseNode) VisibleToLearners() bool {
	return !n.VisibleToStaffOnly && !n.HideFromTOC
}

// ChildrenOf returns the ordered child keys of a node, or nil for leaves.
func ChildrenOf(n *CourseNode) []UsageKey {
	if n.Kind != KindContainer {
		return nil
	}
	return n.Children
}
