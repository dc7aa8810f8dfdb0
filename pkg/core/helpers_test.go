package core

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/props"
)

type testProps struct {
	style layout.Style
	color string
	text  string
}

func (p *testProps) LayoutStyle() layout.Style {
	return p.style
}

func parseTestProps(source *testProps, raw *props.RawProps) (*testProps, error) {
	p := &testProps{style: layout.DefaultStyle()}
	if source != nil {
		*p = *source
	}
	if v, ok := raw.At("width"); ok {
		f, err := props.Float("width", v)
		if err != nil {
			return nil, err
		}
		p.style.Width = layout.Points(f)
	}
	if v, ok := raw.At("height"); ok {
		f, err := props.Float("height", v)
		if err != nil {
			return nil, err
		}
		p.style.Height = layout.Points(f)
	}
	if v, ok := raw.At("color"); ok {
		s, err := props.String("color", v)
		if err != nil {
			return nil, err
		}
		p.color = s
	}
	if v, ok := raw.At("text"); ok {
		s, err := props.String("text", v)
		if err != nil {
			return nil, err
		}
		p.text = s
	}
	return p, nil
}

type otherProps struct{}

func (*otherProps) LayoutStyle() layout.Style { return layout.DefaultStyle() }

var (
	testView = NewConcreteDescriptor(DescriptorConfig[*testProps]{
		Name:       "CoreTestView",
		Traits:     TraitLayoutable | TraitFormsView,
		ParseProps: parseTestProps,
		Initialize: func(n *ShadowNode, p *testProps) {
			traits := TraitLayoutable | TraitFormsView
			if p.color == "none" {
				traits = traits.Without(TraitFormsView)
			}
			n.SetTraits(traits)
		},
	})

	lastConstraints LayoutConstraints
	measureCalls    int

	testText = NewConcreteDescriptor(DescriptorConfig[*testProps]{
		Name:       "CoreTestText",
		Traits:     TraitLayoutable | TraitLeaf | TraitMeasurable | TraitFormsView | TraitText,
		ParseProps: parseTestProps,
		Measure: func(n *ShadowNode, p *testProps, ctx LayoutContext, c LayoutConstraints) graphics.Size {
			measureCalls++
			lastConstraints = c
			if p.text == "nan" {
				return graphics.Size{Width: -1, Height: 1}
			}
			return graphics.Size{Width: float64(7 * len(p.text)), Height: 13}
		},
		InitialState: func(f *Family, p *testProps) any {
			return "initial:" + p.text
		},
	})

	testOther = NewConcreteDescriptor(DescriptorConfig[*otherProps]{
		Name:   "CoreTestOther",
		Traits: TraitLayoutable,
		ParseProps: func(source *otherProps, raw *props.RawProps) (*otherProps, error) {
			return &otherProps{}, nil
		},
	})
)

func mustProps(t *testing.T, d ComponentDescriptor, raw props.Raw) Props {
	t.Helper()
	p, err := d.CloneProps(nil, raw)
	if err != nil {
		t.Fatalf("CloneProps(%v): %v", raw, err)
	}
	return p
}

func mustNode(t *testing.T, d ComponentDescriptor, tag Tag, raw props.Raw, children ...*ShadowNode) *ShadowNode {
	t.Helper()
	n, err := d.CreateShadowNode(Fragment{Props: mustProps(t, d, raw), Children: ChildList(children...)}, d.CreateFamily(tag, 1))
	if err != nil {
		t.Fatalf("CreateShadowNode(%d): %v", tag, err)
	}
	return n
}

func withProps(t *testing.T, n *ShadowNode, raw props.Raw) *ShadowNode {
	t.Helper()
	p, err := n.Family().Descriptor().CloneProps(n.Props(), raw)
	if err != nil {
		t.Fatalf("CloneProps: %v", err)
	}
	return n.Clone(Fragment{Props: p})
}

func layoutRoot(t *testing.T, root *ShadowNode, ctx LayoutContext) {
	t.Helper()
	if err := root.LayoutTree(ctx, Tight(graphics.Size{Width: 100, Height: 100}), layout.NewBoxEngine()); err != nil {
		t.Fatalf("LayoutTree: %v", err)
	}
}

func expectAssertion(t *testing.T, sentinel error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		ae, ok := r.(*errors.AssertionError)
		if !ok {
			t.Fatalf("recovered %v (%T), want *errors.AssertionError", r, r)
		}
		if sentinel != nil && !stderrors.Is(ae, sentinel) {
			t.Errorf("assertion %v does not wrap %v", ae, sentinel)
		}
	}()
	fn()
}

// sampleTree builds
//
//	root(1) 100x100
//	├── a(2) height 10
//	│   └── a1(3) height 5
//	└── b(4) height 20
func sampleTree(t *testing.T) (root, a, a1, b *ShadowNode) {
	t.Helper()
	a1 = mustNode(t, testView, 3, props.Raw{"height": 5})
	a = mustNode(t, testView, 2, props.Raw{"height": 10}, a1)
	b = mustNode(t, testView, 4, props.Raw{"height": 20})
	root = mustNode(t, testView, 1, props.Raw{"width": 100, "height": 100}, a, b)
	return root, a, a1, b
}
