package layout

import (
	"maps"
	"slices"

	"github.com/go-drift/shadow/pkg/graphics"
)

// MeasureMode tells a measure callback how to read an available size.
type MeasureMode uint8

const (
	// MeasureUndefined leaves the size unconstrained.
	MeasureUndefined MeasureMode = iota
	// MeasureExactly demands the given size.
	MeasureExactly
	// MeasureAtMost bounds the size from above.
	MeasureAtMost
)

func (m MeasureMode) String() string {
	switch m {
	case MeasureExactly:
		return "exactly"
	case MeasureAtMost:
		return "at_most"
	default:
		return "undefined"
	}
}

// MeasureFunc reports the content size of a leaf for the given available
// space. ctx is the value passed in Options.Context. The callback must be
// idempotent for identical arguments.
type MeasureFunc func(node *Node, ctx any, width float64, widthMode MeasureMode, height float64, heightMode MeasureMode) graphics.Size

// Result is the computed box of a node relative to its parent's border box.
// Edge arrays are physical: left, top, right, bottom.
type Result struct {
	Left      float64
	Top       float64
	Width     float64
	Height    float64
	Direction Direction
	Margin    [4]float64
	Border    [4]float64
	Padding   [4]float64
}

type constraintKey struct {
	width      float64
	widthMode  MeasureMode
	height     float64
	heightMode MeasureMode
	ownerW     float64
	ownerH     float64
	direction  Direction
}

type measureKey struct {
	width      float64
	widthMode  MeasureMode
	height     float64
	heightMode MeasureMode
}

// Node is a layout peer. Nodes are mutated only while their owning shadow
// node is unsealed, or by an engine on nodes it owns.
type Node struct {
	style    Style
	children []*Node
	owner    *Node
	context  any
	measure  MeasureFunc

	dirty        bool
	hasNewLayout bool
	layout       Result

	lastKey      constraintKey
	hasLastKey   bool
	measureCache map[measureKey]graphics.Size
}

// NewNode returns a dirty node with the default style.
func NewNode() *Node {
	return &Node{style: DefaultStyle(), dirty: true, hasNewLayout: true}
}

// Clone copies n except its owner link. Children are shared by reference; the
// clone keeps pointing at them without owning them.
func (n *Node) Clone() *Node {
	c := *n
	c.owner = nil
	c.children = slices.Clone(n.children)
	c.measureCache = maps.Clone(n.measureCache)
	return &c
}

// Style returns the node's style.
func (n *Node) Style() Style {
	return n.style
}

// SetStyle replaces the style and marks the node dirty if it changed.
func (n *Node) SetStyle(s Style) {
	if n.style == s {
		return
	}
	n.style = s
	n.MarkDirty()
}

// Children returns the child list. Callers must not modify it.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the child at index i.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// InsertChild inserts child at index (clamped to the list length).
// Ownership and dirtiness are left to the caller.
func (n *Node) InsertChild(child *Node, index int) {
	if index < 0 || index > len(n.children) {
		index = len(n.children)
	}
	n.children = slices.Insert(n.children, index, child)
}

// RemoveChild removes child and reports whether it was present.
func (n *Node) RemoveChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	if child.owner == n {
		child.owner = nil
	}
	return true
}

// ReplaceChild puts child at index and makes n its owner.
func (n *Node) ReplaceChild(child *Node, index int) {
	n.children[index] = child
	child.owner = n
}

// SetChildren replaces the child list without touching ownership.
func (n *Node) SetChildren(children []*Node) {
	n.children = children
}

// Owner returns the node whose child list owns n.
func (n *Node) Owner() *Node {
	return n.owner
}

// SetOwner sets the owner link.
func (n *Node) SetOwner(owner *Node) {
	n.owner = owner
}

// Context returns the opaque value attached by the adapter.
func (n *Node) Context() any {
	return n.context
}

// SetContext attaches an opaque value.
func (n *Node) SetContext(ctx any) {
	n.context = ctx
}

// SetMeasureFunc installs a leaf measure callback.
func (n *Node) SetMeasureFunc(fn MeasureFunc) {
	n.measure = fn
}

// HasMeasureFunc reports whether a measure callback is installed.
func (n *Node) HasMeasureFunc() bool {
	return n.measure != nil
}

// IsDirty reports whether n needs layout.
func (n *Node) IsDirty() bool {
	return n.dirty
}

// SetDirty sets the dirty flag on n alone. Setting it drops cached
// measurements.
func (n *Node) SetDirty(dirty bool) {
	n.dirty = dirty
	if dirty {
		n.measureCache = nil
	}
}

// MarkDirty marks n and its owners dirty, stopping at the first node that is
// already dirty.
func (n *Node) MarkDirty() {
	for node := n; node != nil && !node.dirty; node = node.owner {
		node.SetDirty(true)
	}
}

// Layout returns the last computed result.
func (n *Node) Layout() Result {
	return n.layout
}

// HasNewLayout reports whether the result changed since the flag was cleared.
func (n *Node) HasNewLayout() bool {
	return n.hasNewLayout
}

// SetHasNewLayout sets the new-layout flag.
func (n *Node) SetHasNewLayout(v bool) {
	n.hasNewLayout = v
}

// measureCached calls the measure callback through the constraint cache.
func (n *Node) measureCached(ctx any, w float64, wm MeasureMode, h float64, hm MeasureMode) graphics.Size {
	key := measureKey{width: keyFloat(w, wm), widthMode: wm, height: keyFloat(h, hm), heightMode: hm}
	if size, ok := n.measureCache[key]; ok {
		return size
	}
	size := n.measure(n, ctx, w, wm, h, hm)
	if n.measureCache == nil {
		n.measureCache = make(map[measureKey]graphics.Size)
	}
	n.measureCache[key] = size
	return size
}

// keyFloat normalizes sizes so unconstrained axes compare equal in cache keys.
func keyFloat(v float64, mode MeasureMode) float64 {
	if mode == MeasureUndefined || IsUndefined(v) {
		return -1
	}
	return v
}
