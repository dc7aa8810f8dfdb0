package components

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/props"
)

func build(t *testing.T, d core.ComponentDescriptor, tag core.Tag, raw props.Raw, children ...*core.ShadowNode) *core.ShadowNode {
	t.Helper()
	p, err := d.CloneProps(nil, raw)
	if err != nil {
		t.Fatalf("CloneProps(%v): %v", raw, err)
	}
	n, err := d.CreateShadowNode(core.Fragment{Props: p, Children: core.ChildList(children...)}, d.CreateFamily(tag, 1))
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestParseViewStyle(t *testing.T) {
	p, err := View.CloneProps(nil, props.Raw{
		"flexDirection":    "row",
		"justifyContent":   "space-between",
		"alignItems":       "center",
		"width":            "50%",
		"height":           "auto",
		"minWidth":         "12",
		"marginHorizontal": 4,
		"paddingTop":       2,
		"borderWidth":      1,
		"start":            3,
		"display":          "none",
		"flex":             2,
	})
	if err != nil {
		t.Fatal(err)
	}
	st := p.LayoutStyle()

	want := layout.DefaultStyle()
	want.FlexDirection = layout.FlexRow
	want.JustifyContent = layout.JustifySpaceBetween
	want.AlignItems = layout.AlignCenter
	want.Width = layout.Percent(50)
	want.Height = layout.Auto
	want.MinWidth = layout.Points(12)
	want.Margin[layout.EdgeHorizontal] = layout.Points(4)
	want.Padding[layout.EdgeTop] = layout.Points(2)
	want.Border[layout.EdgeAll] = layout.Points(1)
	want.Position[layout.EdgeStart] = layout.Points(3)
	want.Display = layout.DisplayNone
	want.FlexGrow, want.FlexShrink, want.FlexBasis = 2, 1, layout.Points(0)

	if diff := cmp.Diff(want, st, cmp.Comparer(func(a, b float64) bool {
		return a == b || (layout.IsUndefined(a) && layout.IsUndefined(b))
	})); diff != "" {
		t.Errorf("style mismatch (-want +got):\n%s", diff)
	}
}

func TestParseViewErrors(t *testing.T) {
	cases := []props.Raw{
		{"flexDirection": "diagonal"},
		{"width": "wide"},
		{"width": "x%"},
		{"opacity": "half"},
		{"backgroundColor": "#12"},
		{"zIndex": 1.5},
	}
	for _, raw := range cases {
		if _, err := View.CloneProps(nil, raw); errors.KindOf(err) != errors.KindConstruction {
			t.Errorf("CloneProps(%v) err = %v, want construction error", raw, err)
		}
	}
}

func TestCloneViewPropsKeepsSource(t *testing.T) {
	base, err := View.CloneProps(nil, props.Raw{"width": 10, "backgroundColor": "red"})
	if err != nil {
		t.Fatal(err)
	}
	next, err := View.CloneProps(base, props.Raw{"height": 5})
	if err != nil {
		t.Fatal(err)
	}
	vp := next.(*ViewProps)
	if vp.Style.Width != layout.Points(10) || vp.Style.Height != layout.Points(5) || vp.BackgroundColor != graphics.ColorRed {
		t.Errorf("merged props = %+v", vp)
	}
	if base.(*ViewProps).Style.Height.IsDefined() {
		t.Error("source props changed")
	}
}

func TestViewFlattening(t *testing.T) {
	cases := []struct {
		name  string
		raw   props.Raw
		forms bool
	}{
		{"plain", nil, false},
		{"background", props.Raw{"backgroundColor": "blue"}, true},
		{"transparent", props.Raw{"backgroundColor": "transparent"}, false},
		{"opacity", props.Raw{"opacity": 0.5}, true},
		{"testID", props.Raw{"testID": "x"}, true},
		{"not collapsable", props.Raw{"collapsable": false}, true},
		{"border without color", props.Raw{"borderWidth": 1}, false},
		{"border", props.Raw{"borderWidth": 1, "borderColor": "red"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := build(t, View, 2, tc.raw)
			if got := n.Traits().Has(core.TraitFormsView); got != tc.forms {
				t.Errorf("FormsView = %v, want %v", got, tc.forms)
			}
		})
	}
}

func TestRootAlwaysFormsView(t *testing.T) {
	n := build(t, Root, 1, nil)
	if !n.Traits().Has(core.TraitFormsView) || !n.Traits().Has(core.TraitRoot) {
		t.Errorf("root traits = %b", n.Traits())
	}
}

func TestZIndexSetsOrderIndex(t *testing.T) {
	n := build(t, View, 2, props.Raw{"zIndex": 3})
	if n.OrderIndex() != 3 {
		t.Errorf("OrderIndex = %d, want 3", n.OrderIndex())
	}
	c := n.Clone(core.Fragment{})
	if c.OrderIndex() != 3 {
		t.Errorf("clone OrderIndex = %d, want 3", c.OrderIndex())
	}
}

func layoutSurface(t *testing.T, root *core.ShadowNode, w, h float64) {
	t.Helper()
	err := root.LayoutTree(core.DefaultLayoutContext(), core.Tight(graphics.Size{Width: w, Height: h}), layout.NewBoxEngine())
	if err != nil {
		t.Fatalf("LayoutTree: %v", err)
	}
}

func TestParagraphMeasure(t *testing.T) {
	cases := []struct {
		name  string
		raw   props.Raw
		width float64
		want  graphics.Rect
	}{
		{"single line", props.Raw{"text": "hello world", "fontSize": 13}, 200, graphics.RectFromLTWH(0, 0, 200, 13)},
		{"wraps", props.Raw{"text": "hello world", "fontSize": 13}, 40, graphics.RectFromLTWH(0, 0, 40, 26)},
		{"line limit", props.Raw{"text": "hello world", "fontSize": 13, "numberOfLines": 1}, 40, graphics.RectFromLTWH(0, 0, 40, 13)},
		{"empty", props.Raw{"fontSize": 13}, 40, graphics.RectFromLTWH(0, 0, 40, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := build(t, Paragraph, 2, tc.raw)
			root := build(t, Root, 1, nil, text)
			layoutSurface(t, root, tc.width, 100)
			if got := root.Children()[0].LayoutMetrics().Frame; got != tc.want {
				t.Errorf("frame = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParagraphIntrinsicWidth(t *testing.T) {
	text := build(t, Paragraph, 2, props.Raw{"text": "hello world", "fontSize": 13})
	root := build(t, Root, 1, props.Raw{"alignItems": "flex-start"}, text)
	layoutSurface(t, root, 200, 100)
	if got, want := text.LayoutMetrics().Frame, graphics.RectFromLTWH(0, 0, 77, 13); got != want {
		t.Errorf("frame = %+v, want %+v", got, want)
	}
}

func TestParagraphTextChangeRelayouts(t *testing.T) {
	text := build(t, Paragraph, 2, props.Raw{"text": "hi", "fontSize": 13})
	root := build(t, Root, 1, props.Raw{"alignItems": "flex-start"}, text)
	layoutSurface(t, root, 200, 100)
	root.SealRecursive()

	root2 := root.CloneTree(text.Family(), func(n *core.ShadowNode) *core.ShadowNode {
		p, err := Paragraph.CloneProps(n.Props(), props.Raw{"text": "hello"})
		if err != nil {
			t.Fatal(err)
		}
		return n.Clone(core.Fragment{Props: p})
	})
	if root2.IsLayoutClean() {
		t.Fatal("text change did not dirty the root")
	}
	layoutSurface(t, root2, 200, 100)
	if got := root2.Children()[0].LayoutMetrics().Frame.Width(); got != 35 {
		t.Errorf("width = %v, want 35", got)
	}
}

func TestRegistryNames(t *testing.T) {
	got := NewRegistry().Names()
	want := []string{"Paragraph", "RootView", "View"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}
