package mounting

import (
	"testing"

	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/props"
)

const testSurface core.SurfaceID = 1

func node(t *testing.T, d core.ComponentDescriptor, tag core.Tag, raw props.Raw, children ...*core.ShadowNode) *core.ShadowNode {
	t.Helper()
	p, err := d.CloneProps(nil, raw)
	if err != nil {
		t.Fatalf("CloneProps(%v): %v", raw, err)
	}
	n, err := d.CreateShadowNode(core.Fragment{Props: p, Children: core.ChildList(children...)}, d.CreateFamily(tag, testSurface))
	if err != nil {
		t.Fatalf("CreateShadowNode(%d): %v", tag, err)
	}
	return n
}

// box is a view that forms a native view.
func box(t *testing.T, tag core.Tag, raw props.Raw, children ...*core.ShadowNode) *core.ShadowNode {
	t.Helper()
	full := props.Raw{"backgroundColor": "red"}
	for k, v := range raw {
		full[k] = v
	}
	return node(t, components.View, tag, full, children...)
}

// layer is an absolutely positioned 10x10 box; layers never move each other.
func layer(t *testing.T, tag core.Tag) *core.ShadowNode {
	t.Helper()
	return box(t, tag, props.Raw{"position": "absolute", "width": 10, "height": 10})
}

func rootNode(t *testing.T, children ...*core.ShadowNode) *core.ShadowNode {
	t.Helper()
	return node(t, components.Root, 1, nil, children...)
}

// next returns a new generation of root with children.
func next(root *core.ShadowNode, children ...*core.ShadowNode) *core.ShadowNode {
	return root.Clone(core.Fragment{Children: core.ChildList(children...)})
}

func restyle(t *testing.T, n *core.ShadowNode, raw props.Raw) *core.ShadowNode {
	t.Helper()
	p, err := n.Family().Descriptor().CloneProps(n.Props(), raw)
	if err != nil {
		t.Fatal(err)
	}
	return n.Clone(core.Fragment{Props: p})
}

// commit lays root out in a 100x100 surface and seals it.
func commit(t *testing.T, root *core.ShadowNode) *core.ShadowNode {
	t.Helper()
	err := root.LayoutTree(core.DefaultLayoutContext(), core.Tight(graphics.Size{Width: 100, Height: 100}), layout.NewBoxEngine())
	if err != nil {
		t.Fatalf("LayoutTree: %v", err)
	}
	root.SealRecursive()
	return root
}

func lines(ms Mutations) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

// checkApply applies the diff of old and cur to a native tree mounted for old
// and compares the result with a tree mounted for cur.
func checkApply(t *testing.T, old, cur *core.ShadowNode, ms Mutations) {
	t.Helper()
	stub := BuildStubViewTree(old)
	if err := stub.Mutate(ms); err != nil {
		t.Fatalf("Mutate: %v\n%s", err, ms)
	}
	want := BuildStubViewTree(cur)
	if got, exp := stub.String(), want.String(); got != exp {
		t.Fatalf("native tree mismatch\ngot:\n%s\nwant:\n%s", got, exp)
	}
	if stub.Size() != want.Size() {
		t.Errorf("live views = %d, want %d", stub.Size(), want.Size())
	}
}

// checkRemovesBeforeInserts verifies that per parent no remove follows an
// insert or move.
func checkRemovesBeforeInserts(t *testing.T, ms Mutations) {
	t.Helper()
	attached := map[core.Tag]bool{}
	for _, m := range ms {
		switch m.Type {
		case MutationInsert, MutationMove:
			attached[m.Parent.Tag] = true
		case MutationRemove:
			if attached[m.Parent.Tag] {
				t.Errorf("remove after insert under %s: %s", m.Parent, m)
			}
		}
	}
}

var (
	viewDescriptor = components.View
	rootDescriptor = components.Root
)

func expectPanic(t *testing.T, sentinel error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		ae, ok := r.(*errors.AssertionError)
		if !ok {
			t.Fatalf("recovered %v (%T), want *errors.AssertionError", r, r)
		}
		if !errors.Is(ae, sentinel) {
			t.Errorf("assertion %v does not wrap %v", ae, sentinel)
		}
	}()
	fn()
}
