package core

import (
	"math"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
)

func (n *ShadowNode) initLayoutable() {
	n.peer = layout.NewNode()
	n.peer.SetContext(n)
	if n.traits.Has(TraitMeasurable) {
		errors.Assert(n.traits.Has(TraitLeaf), "core.ShadowNode.initLayoutable", nil,
			"measurable %s must be a leaf", n.family.ComponentName())
		n.peer.SetMeasureFunc(measureContent)
	}
	n.updateLayoutProps()
	n.updateLayoutChildren()
}

// cloneLayoutable gives c a copy of source's peer. The copy keeps the dirty
// flag and cached layout, and becomes dirty only for the changes the fragment
// actually brings.
func (c *ShadowNode) cloneLayoutable(source *ShadowNode, f Fragment) {
	c.peer = source.peer.Clone()
	c.peer.SetContext(c)
	if c.traits.Has(TraitMeasurable) && (f.Props != nil || f.State != nil) {
		c.peer.SetDirty(true)
	}
	if f.Props != nil {
		c.updateLayoutProps()
	}
	if f.Children != nil {
		c.updateLayoutChildren()
	}
}

func (n *ShadowNode) updateLayoutProps() {
	n.peer.SetStyle(n.props.LayoutStyle())
}

// updateLayoutChildren rebuilds the peer child list from n.children. The peer
// stays clean only when it was clean and every layoutable child keeps its
// position, family, style and cleanliness.
func (n *ShadowNode) updateLayoutChildren() {
	if n.traits.Has(TraitLeaf) {
		return
	}
	old := n.peer.Children()
	isClean := !n.peer.IsDirty() && n.layoutableChildCount() == len(old)

	n.peer.SetChildren(make([]*layout.Node, 0, len(n.children)))
	for i := range n.children {
		if n.children[i].peer == nil {
			continue
		}
		pi := n.peer.ChildCount()
		n.peer.InsertChild(n.children[i].peer, pi)
		n.adoptChild(i, pi)

		if isClean {
			cur := n.peer.Child(pi)
			prev := old[pi]
			isClean = !cur.IsDirty() &&
				cur.Style() == prev.Style() &&
				nodeOf(prev).family == n.children[i].family
		}
	}
	n.peer.SetDirty(!isClean)
}

func (n *ShadowNode) layoutableChildCount() int {
	count := 0
	for _, c := range n.children {
		if c.peer != nil {
			count++
		}
	}
	return count
}

// appendLayoutChild links the peer of n.children[i], just appended.
func (n *ShadowNode) appendLayoutChild(i int) {
	child := n.children[i]
	if n.peer == nil || child.peer == nil || n.traits.Has(TraitLeaf) {
		return
	}
	n.markLayoutDirty()
	pi := n.peer.ChildCount()
	n.peer.InsertChild(child.peer, pi)
	n.adoptChild(i, pi)
}

// adoptChild makes n's peer the owner of the peer at layout index pi. A child
// still owned by an earlier generation of n stays shared until a layout pass
// needs to mutate it; a child owned by any other parent, or sealed without an
// owner, is replaced by a dirty clone.
func (n *ShadowNode) adoptChild(i, pi int) {
	child := n.children[i]
	owner := child.peer.Owner()
	switch {
	case owner == n.peer:
		return
	case owner == nil && !child.sealed:
		child.peer.SetOwner(n.peer)
		return
	case owner != nil && nodeOf(owner).family == n.family:
		return
	}
	clone := child.Clone(Fragment{})
	clone.peer.SetDirty(true)
	n.children[i] = clone
	clone.family.setParent(n.family)
	n.peer.ReplaceChild(clone.peer, pi)
}

func (n *ShadowNode) replaceLayoutChild(idx int, old, replacement *ShadowNode) {
	if n.peer == nil || old.peer == nil || replacement.peer == nil {
		return
	}
	pi := 0
	for _, c := range n.children[:idx] {
		if c.peer != nil {
			pi++
		}
	}
	n.peer.ReplaceChild(replacement.peer, pi)
}

// markLayoutDirty dirties n and its unsealed ancestors through the peer owner
// chain.
func (n *ShadowNode) markLayoutDirty() {
	for p := n.peer; p != nil && !p.IsDirty(); p = p.Owner() {
		if nodeOf(p).sealed {
			return
		}
		p.SetDirty(true)
	}
}

// DirtyLayout forces the node to be laid out on the next pass.
func (n *ShadowNode) DirtyLayout() {
	n.ensureUnsealed("core.ShadowNode.DirtyLayout")
	n.markLayoutDirty()
}

// IsLayoutClean reports whether the node's layout is up to date.
func (n *ShadowNode) IsLayoutClean() bool {
	return n.peer == nil || !n.peer.IsDirty()
}

// LayoutStyle returns the style currently held by the peer.
func (n *ShadowNode) LayoutStyle() layout.Style {
	if n.peer == nil {
		return layout.Style{}
	}
	return n.peer.Style()
}

func nodeOf(peer *layout.Node) *ShadowNode {
	return peer.Context().(*ShadowNode)
}

// LayoutTree lays out the tree rooted at n within constraints and applies new
// results to every affected node. n must be unsealed.
func (n *ShadowNode) LayoutTree(ctx LayoutContext, constraints LayoutConstraints, engine layout.Engine) error {
	const op = "core.ShadowNode.LayoutTree"
	n.ensureUnsealed(op)
	errors.Assert(n.peer != nil, op, nil, "%s is not layoutable", n.family.ComponentName())
	if ctx.PointScaleFactor == 0 {
		ctx.PointScaleFactor = 1
	}

	style := n.peer.Style()
	style.MinWidth = boundValue(constraints.MinimumSize.Width)
	style.MinHeight = boundValue(constraints.MinimumSize.Height)
	style.MaxWidth = boundValue(constraints.MaximumSize.Width)
	style.MaxHeight = boundValue(constraints.MaximumSize.Height)
	if constraints.LayoutDirection != layout.DirectionInherit {
		style.Direction = constraints.LayoutDirection
	}
	n.peer.SetStyle(style)

	opts := layout.Options{
		Direction: constraints.LayoutDirection,
		Clone:     cloneForLayout,
		Context:   ctx,
	}
	err := engine.CalculateLayout(n.peer, constraints.MaximumSize.Width, constraints.MaximumSize.Height, opts)
	if err != nil {
		return &errors.ShadowError{
			Op:      op,
			Kind:    errors.KindLayout,
			Surface: int32(n.family.surfaceID),
			Err:     err,
		}
	}

	if n.peer.HasNewLayout() {
		n.peer.SetHasNewLayout(false)
		n.applyMetrics(ctx)
	}
	n.applyLayout(ctx)
	return nil
}

func boundValue(v float64) layout.Value {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return layout.Value{}
	}
	return layout.Points(v)
}

// applyLayout copies results of children whose peers report a new layout.
// Sealed children were not touched by the pass and are skipped.
func (n *ShadowNode) applyLayout(ctx LayoutContext) {
	for _, child := range n.children {
		if child.peer == nil || child.sealed || !child.peer.HasNewLayout() {
			continue
		}
		child.peer.SetHasNewLayout(false)
		child.applyMetrics(ctx)
		if child.metrics.DisplayType != DisplayNone {
			child.applyLayout(ctx)
		}
	}
}

func (n *ShadowNode) applyMetrics(ctx LayoutContext) {
	m := metricsFromResult(n.peer.Layout(), n.peer.Style(), ctx.PointScaleFactor)
	if m == n.metrics {
		return
	}
	n.metrics = m
	if ctx.AffectedNodes != nil {
		*ctx.AffectedNodes = append(*ctx.AffectedNodes, n)
	}
}

// cloneForLayout is the engine's clone callback: the shadow node behind a
// foreign peer is cloned and swapped into the parent being laid out.
func cloneForLayout(child, parent *layout.Node, index int) *layout.Node {
	old := nodeOf(child)
	owner := nodeOf(parent)
	errors.Assert(!owner.sealed, "core.cloneForLayout", errors.ErrUseAfterSeal,
		"layout of sealed %s tag %d", owner.family.ComponentName(), owner.family.tag)

	clone := old.Clone(Fragment{})
	pos := 0
	for i, c := range owner.children {
		if c.peer == nil {
			continue
		}
		if pos == index {
			owner.ensureOwnChildren()
			owner.children[i] = clone
			break
		}
		pos++
	}
	parent.ReplaceChild(clone.peer, index)
	return clone.peer
}

// measureContent converts engine measure modes into constraints for the
// component's descriptor.
func measureContent(peer *layout.Node, ctx any, width float64, widthMode layout.MeasureMode, height float64, heightMode layout.MeasureMode) graphics.Size {
	node := nodeOf(peer)
	lc, ok := ctx.(LayoutContext)
	if !ok {
		lc = DefaultLayoutContext()
	}
	c := LayoutConstraints{
		MaximumSize:     graphics.Size{Width: math.Inf(1), Height: math.Inf(1)},
		LayoutDirection: peer.Layout().Direction,
	}
	switch widthMode {
	case layout.MeasureExactly:
		c.MinimumSize.Width, c.MaximumSize.Width = width, width
	case layout.MeasureAtMost:
		c.MaximumSize.Width = width
	}
	switch heightMode {
	case layout.MeasureExactly:
		c.MinimumSize.Height, c.MaximumSize.Height = height, height
	case layout.MeasureAtMost:
		c.MaximumSize.Height = height
	}
	return node.family.descriptor.MeasureContent(node, lc, c)
}
