package quality

import (
	"context"

	"github.com/OpenCourseHub/CourseForge/internal/contentstore"
)

// visibleOnly filters nodes down to those shown in the learner-facing table
// of contents, preserving input order. Visibility is evaluated on each node
// alone, never inherited from ancestors.
func visibleOnly(nodes []*contentstore.CourseNode) []*contentstore.CourseNode {
	out := make([]*contentstore.CourseNode, 0, len(nodes))
	for _, n := range nodes {
		if n.VisibleToLearners() {
			out = append(out, n)
		}
	}
	return out
}

// visibleChildren loads a node's children and applies the visibility filter.
func (b *Builder) visibleChildren(ctx context.Context, parent *contentstore.CourseNode) ([]*contentstore.CourseNode, error) {
	children, err := b.accessor.GetMany(ctx, contentstore.ChildrenOf(parent))
	if err != nil {
		return nil, err
	}
	return visibleOnly(children), nil
}

// leafBlocks collects, in pre-order, every leaf reachable from root through
// visible children only. The filter runs at each level before descending, so
// a container whose children are all hidden contributes no leaves. A leaf is
// any node with zero children.
func (b *Builder) leafBlocks(ctx context.Context, root *contentstore.CourseNode) ([]*contentstore.CourseNode, error) {
	if len(contentstore.ChildrenOf(root)) == 0 {
		return []*contentstore.CourseNode{root}, nil
	}
	children, err := b.visibleChildren(ctx, root)
	if err != nil {
		return nil, err
	}
	var leaves []*contentstore.CourseNode
	for _, child := range children {
		sub, err := b.leafBlocks(ctx, child)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, sub...)
	}
	return leaves, nil
}
