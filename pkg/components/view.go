package components

import (
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/props"
)

// ViewProps are the props of View and Root.
type ViewProps struct {
	Style           layout.Style
	BackgroundColor graphics.Color
	BorderColor     graphics.Color
	Opacity         float64
	// Collapsable views without visual props are flattened into their parent.
	Collapsable bool
	ZIndex      int
	TestID      string
}

// LayoutStyle implements core.Props.
func (p *ViewProps) LayoutStyle() layout.Style {
	return p.Style
}

// Visual reports whether the view draws anything itself.
func (p *ViewProps) Visual() bool {
	return p.BackgroundColor.Alpha() != 0 ||
		(p.BorderColor.Alpha() != 0 && p.Style.Border != layout.Edges{}) ||
		p.Opacity < 1 ||
		p.TestID != ""
}

func defaultViewProps() *ViewProps {
	return &ViewProps{
		Style:       layout.DefaultStyle(),
		Opacity:     1,
		Collapsable: true,
	}
}

func parseViewProps(source *ViewProps, raw *props.RawProps) (*ViewProps, error) {
	p := defaultViewProps()
	if source != nil {
		*p = *source
	}
	err := parseStyle(&p.Style, raw)
	if v, ok := raw.At("backgroundColor"); ok {
		c, cerr := props.Color("backgroundColor", v)
		err = firstErr(err, cerr)
		p.BackgroundColor = c
	}
	if v, ok := raw.At("borderColor"); ok {
		c, cerr := props.Color("borderColor", v)
		err = firstErr(err, cerr)
		p.BorderColor = c
	}
	if v, ok := raw.At("opacity"); ok {
		f, ferr := props.Float("opacity", v)
		err = firstErr(err, ferr)
		p.Opacity = min(1, max(0, f))
	}
	if v, ok := raw.At("collapsable"); ok {
		b, berr := props.Bool("collapsable", v)
		err = firstErr(err, berr)
		p.Collapsable = b
	}
	if v, ok := raw.At("zIndex"); ok {
		n, nerr := props.Int("zIndex", v)
		err = firstErr(err, nerr)
		p.ZIndex = n
	}
	if v, ok := raw.At("testID"); ok {
		s, serr := props.String("testID", v)
		err = firstErr(err, serr)
		p.TestID = s
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}

// initView decides whether the view forms a native view of its own.
func initView(base core.Traits) func(*core.ShadowNode, *ViewProps) {
	return func(n *core.ShadowNode, p *ViewProps) {
		traits := base
		if p.Collapsable && !p.Visual() {
			traits = traits.Without(core.TraitFormsView)
		}
		n.SetTraits(traits)
		n.SetOrderIndex(p.ZIndex)
	}
}

// View is the generic container.
var View = core.NewConcreteDescriptor(core.DescriptorConfig[*ViewProps]{
	Name:       "View",
	Traits:     core.TraitLayoutable | core.TraitFormsView,
	ParseProps: parseViewProps,
	Initialize: initView(core.TraitLayoutable | core.TraitFormsView),
})
