package mounting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
)

// StubView is a view of the reference native layer.
type StubView struct {
	View     ShadowView
	Children []*StubView
}

// StubViewTree is a reference native layer: it applies mutation lists the way
// a platform would and checks every precondition on the way.
type StubViewTree struct {
	root    *StubView
	views   map[core.Tag]*StubView
	parents map[core.Tag]core.Tag
}

// NewStubViewTree returns a tree holding only the root view.
func NewStubViewTree(root ShadowView) *StubViewTree {
	v := &StubView{View: root}
	return &StubViewTree{
		root:    v,
		views:   map[core.Tag]*StubView{root.Tag: v},
		parents: make(map[core.Tag]core.Tag),
	}
}

// BuildStubViewTree returns the views a native layer should hold for root.
func BuildStubViewTree(root *core.ShadowNode) *StubViewTree {
	t := NewStubViewTree(NewShadowView(root))
	var walk func(parent *StubView, n *core.ShadowNode)
	walk = func(parent *StubView, n *core.ShadowNode) {
		for _, e := range flatten(n) {
			v := &StubView{View: e.view}
			parent.Children = append(parent.Children, v)
			t.views[e.view.Tag] = v
			t.parents[e.view.Tag] = parent.View.Tag
			walk(v, e.node)
		}
	}
	walk(t.root, root)
	return t
}

// Root returns the root view.
func (t *StubViewTree) Root() *StubView {
	return t.root
}

// Get returns the view for tag.
func (t *StubViewTree) Get(tag core.Tag) (*StubView, bool) {
	v, ok := t.views[tag]
	return v, ok
}

// Size returns the number of live views, the root included.
func (t *StubViewTree) Size() int {
	return len(t.views)
}

func stubError(format string, args ...any) error {
	return errors.Newf("mounting.StubViewTree.Mutate", errors.KindAssertion, format, args...)
}

// Mutate applies ms. Creates, deletes and updates apply in list order;
// removes and moves detach first, then inserts and moves attach in
// ascending index order.
func (t *StubViewTree) Mutate(ms Mutations) error {
	for _, m := range ms {
		if m.Type != MutationCreate {
			continue
		}
		if _, ok := t.views[m.NewChild.Tag]; ok {
			return stubError("create of existing view %s", m.NewChild)
		}
		t.views[m.NewChild.Tag] = &StubView{View: m.NewChild}
	}

	// Detach in descending old index so earlier indices stay valid.
	var detach []Mutation
	for _, m := range ms {
		if m.Type == MutationRemove || m.Type == MutationMove {
			detach = append(detach, m)
		}
	}
	slices.SortStableFunc(detach, func(a, b Mutation) int { return detachIndex(b) - detachIndex(a) })
	for _, m := range detach {
		if err := t.detach(m); err != nil {
			return err
		}
	}

	for _, m := range ms {
		switch m.Type {
		case MutationDelete:
			v, ok := t.views[m.OldChild.Tag]
			if !ok {
				return stubError("delete of unknown view %s", m.OldChild)
			}
			if _, attached := t.parents[m.OldChild.Tag]; attached {
				return stubError("delete of attached view %s", m.OldChild)
			}
			if len(v.Children) > 0 {
				return stubError("delete of %s with %d children", m.OldChild, len(v.Children))
			}
			delete(t.views, m.OldChild.Tag)
		case MutationUpdate:
			v, ok := t.views[m.OldChild.Tag]
			if !ok {
				return stubError("update of unknown view %s", m.OldChild)
			}
			if !v.View.Equal(m.OldChild) {
				return stubError("update of %s from a stale view", m.OldChild)
			}
			v.View = m.NewChild
		}
	}

	var attach []Mutation
	for _, m := range ms {
		if m.Type == MutationInsert || m.Type == MutationMove {
			attach = append(attach, m)
		}
	}
	slices.SortStableFunc(attach, func(a, b Mutation) int { return a.Index - b.Index })
	for _, m := range attach {
		if err := t.attach(m); err != nil {
			return err
		}
	}
	return nil
}

func detachIndex(m Mutation) int {
	if m.Type == MutationMove {
		return m.OldIndex
	}
	return m.Index
}

func (t *StubViewTree) detach(m Mutation) error {
	child := m.OldChild
	parent, ok := t.views[m.Parent.Tag]
	if !ok {
		return stubError("%s: unknown parent", m)
	}
	idx := detachIndex(m)
	if idx < 0 || idx >= len(parent.Children) || parent.Children[idx].View.Tag != child.Tag {
		return stubError("%s: child not found at index", m)
	}
	parent.Children = slices.Delete(parent.Children, idx, idx+1)
	if len(parent.Children) == 0 {
		parent.Children = nil
	}
	delete(t.parents, child.Tag)
	return nil
}

func (t *StubViewTree) attach(m Mutation) error {
	child, ok := t.views[m.NewChild.Tag]
	if !ok {
		return stubError("%s: unknown child", m)
	}
	if _, attached := t.parents[m.NewChild.Tag]; attached {
		return stubError("%s: child already has a parent", m)
	}
	parent, ok := t.views[m.Parent.Tag]
	if !ok {
		return stubError("%s: unknown parent", m)
	}
	if m.Index < 0 || m.Index > len(parent.Children) {
		return stubError("%s: index out of range", m)
	}
	parent.Children = slices.Insert(parent.Children, m.Index, child)
	t.parents[m.NewChild.Tag] = m.Parent.Tag
	return nil
}

// String renders the tree, one view per line, indented by depth.
func (t *StubViewTree) String() string {
	var b strings.Builder
	var walk func(v *StubView, depth int)
	walk = func(v *StubView, depth int) {
		f := v.View.LayoutMetrics.Frame
		fmt.Fprintf(&b, "%s%s {%g,%g %gx%g}\n", strings.Repeat("  ", depth), v.View, f.Left, f.Top, f.Width(), f.Height())
		for _, c := range v.Children {
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
	return b.String()
}
