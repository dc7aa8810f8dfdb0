package core

import (
	"slices"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/layout"
)

// ShadowNode is one generation of a UI element. After Seal it is immutable and
// may be shared freely across goroutines and trees.
type ShadowNode struct {
	family *Family
	props  Props
	state  *State
	traits Traits

	children       []*ShadowNode
	childrenShared bool
	orderIndex     int
	sealed         bool

	peer    *layout.Node
	metrics LayoutMetrics
}

func newShadowNode(f Fragment, family *Family, traits Traits) *ShadowNode {
	n := &ShadowNode{
		family:  family,
		props:   f.Props,
		state:   f.State,
		traits:  traits,
		metrics: EmptyLayoutMetrics,
	}
	if f.Children != nil {
		n.children = slices.Clone(*f.Children)
		for _, c := range n.children {
			c.family.setParent(family)
		}
	}
	if traits.Has(TraitLayoutable) {
		n.initLayoutable()
	}
	family.descriptor.Adopt(n)
	return n
}

// Clone returns a new unsealed generation of n with the fragment's fields
// replaced. Identity fields in the fragment must match n.
func (n *ShadowNode) Clone(f Fragment) *ShadowNode {
	const op = "core.ShadowNode.Clone"
	errors.Assert(f.Tag == 0 || f.Tag == n.family.tag, op, errors.ErrImmutableField,
		"tag %d cannot become %d", n.family.tag, f.Tag)
	errors.Assert(f.SurfaceID == 0 || f.SurfaceID == n.family.surfaceID, op, errors.ErrImmutableField,
		"surface %d cannot become %d", n.family.surfaceID, f.SurfaceID)
	errors.Assert(f.EventEmitter == nil || f.EventEmitter == n.family.eventEmitter, op, errors.ErrImmutableField,
		"event emitter of tag %d cannot change", n.family.tag)
	if f.Props != nil {
		errors.Assert(n.family.descriptor.AcceptsProps(f.Props), op, nil,
			"props %T do not belong to %s", f.Props, n.family.ComponentName())
	}

	c := &ShadowNode{
		family:     n.family,
		props:      n.props,
		state:      n.state,
		traits:     n.traits,
		orderIndex: n.orderIndex,
		metrics:    n.metrics,
	}
	if f.Props != nil {
		c.props = f.Props
	}
	if f.State != nil {
		c.state = f.State
	}
	if f.Children != nil {
		c.children = slices.Clone(*f.Children)
		for _, child := range c.children {
			child.family.setParent(c.family)
		}
	} else {
		c.children = n.children
		c.childrenShared = true
	}
	if n.peer != nil {
		c.cloneLayoutable(n, f)
	}
	n.family.descriptor.Adopt(c)
	return c
}

// AppendChild adds child at the end. A child already owned by a parent of
// another family is cloned first, so no node is spliced into two trees.
func (n *ShadowNode) AppendChild(child *ShadowNode) {
	n.ensureUnsealed("core.ShadowNode.AppendChild")
	errors.Assert(child != nil, "core.ShadowNode.AppendChild", nil, "nil child")
	n.ensureOwnChildren()
	n.children = append(n.children, child)
	child.family.setParent(n.family)
	n.appendLayoutChild(len(n.children) - 1)
}

// ReplaceChild swaps old for replacement. suggestedIndex is checked first;
// it reports false when old is not a child.
func (n *ShadowNode) ReplaceChild(old, replacement *ShadowNode, suggestedIndex int) bool {
	n.ensureUnsealed("core.ShadowNode.ReplaceChild")
	idx := suggestedIndex
	if idx < 0 || idx >= len(n.children) || n.children[idx] != old {
		idx = slices.Index(n.children, old)
	}
	if idx < 0 {
		return false
	}
	n.ensureOwnChildren()
	n.children[idx] = replacement
	replacement.family.setParent(n.family)
	n.replaceLayoutChild(idx, old, replacement)
	return true
}

// Seal makes n immutable.
func (n *ShadowNode) Seal() {
	n.sealed = true
}

// SealRecursive seals n and every unsealed descendant.
func (n *ShadowNode) SealRecursive() {
	n.sealed = true
	for _, c := range n.children {
		if !c.sealed {
			c.SealRecursive()
		}
	}
}

// IsSealed reports whether n is immutable.
func (n *ShadowNode) IsSealed() bool {
	return n.sealed
}

func (n *ShadowNode) ensureUnsealed(op string) {
	if n.sealed {
		errors.Fatalf(op, errors.ErrUseAfterSeal, "%s tag %d", n.family.ComponentName(), n.family.tag)
	}
}

func (n *ShadowNode) ensureOwnChildren() {
	if n.childrenShared {
		n.children = slices.Clone(n.children)
		n.childrenShared = false
	}
}

// Family returns the node's family.
func (n *ShadowNode) Family() *Family {
	return n.family
}

// Tag returns the family tag.
func (n *ShadowNode) Tag() Tag {
	return n.family.tag
}

// SurfaceID returns the family surface.
func (n *ShadowNode) SurfaceID() SurfaceID {
	return n.family.surfaceID
}

// ComponentName returns the component type name.
func (n *ShadowNode) ComponentName() string {
	return n.family.ComponentName()
}

// ComponentHandle returns the component type handle.
func (n *ShadowNode) ComponentHandle() ComponentHandle {
	return n.family.ComponentHandle()
}

// EventEmitter returns the family emitter.
func (n *ShadowNode) EventEmitter() *EventEmitter {
	return n.family.eventEmitter
}

// Props returns the node's props.
func (n *ShadowNode) Props() Props {
	return n.props
}

// State returns the state the node was created with.
func (n *ShadowNode) State() *State {
	return n.state
}

// MostRecentState returns the latest committed state of the family, falling
// back to the node's own state.
func (n *ShadowNode) MostRecentState() *State {
	if s := n.family.MostRecentState(); s != nil && s.revision > n.state.Revision() {
		return s
	}
	return n.state
}

// Children returns the child list. Callers must not modify it.
func (n *ShadowNode) Children() []*ShadowNode {
	return n.children
}

// Traits returns the node's traits.
func (n *ShadowNode) Traits() Traits {
	return n.traits
}

// SetTraits replaces the traits of an unsealed node.
func (n *ShadowNode) SetTraits(t Traits) {
	n.ensureUnsealed("core.ShadowNode.SetTraits")
	n.traits = t
}

// OrderIndex orders siblings independently of list position.
func (n *ShadowNode) OrderIndex() int {
	return n.orderIndex
}

// SetOrderIndex sets the order index of an unsealed node.
func (n *ShadowNode) SetOrderIndex(i int) {
	n.ensureUnsealed("core.ShadowNode.SetOrderIndex")
	n.orderIndex = i
}

// LayoutMetrics returns the last applied layout.
func (n *ShadowNode) LayoutMetrics() LayoutMetrics {
	return n.metrics
}

// SetLayoutMetrics overrides the layout of an unsealed node.
func (n *ShadowNode) SetLayoutMetrics(m LayoutMetrics) {
	n.ensureUnsealed("core.ShadowNode.SetLayoutMetrics")
	n.metrics = m
}

// SameFamily reports whether a and b are generations of one element.
func SameFamily(a, b *ShadowNode) bool {
	return a != nil && b != nil && a.family == b.family
}

// Walk visits n and its descendants depth first; returning false from fn
// skips the node's children.
func (n *ShadowNode) Walk(fn func(*ShadowNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}
