package components

import (
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/props"
)

// DefaultFontSize is the font size of a Paragraph without fontSize.
const DefaultFontSize = 14

// ParagraphProps are the props of Paragraph.
type ParagraphProps struct {
	Style         layout.Style
	Text          string
	FontSize      float64
	Color         graphics.Color
	NumberOfLines int
}

// LayoutStyle implements core.Props.
func (p *ParagraphProps) LayoutStyle() layout.Style {
	return p.Style
}

func parseParagraphProps(source *ParagraphProps, raw *props.RawProps) (*ParagraphProps, error) {
	p := &ParagraphProps{
		Style:    layout.DefaultStyle(),
		FontSize: DefaultFontSize,
		Color:    graphics.ColorBlack,
	}
	if source != nil {
		*p = *source
	}
	err := parseStyle(&p.Style, raw)
	if v, ok := raw.At("text"); ok {
		s, serr := props.String("text", v)
		err = firstErr(err, serr)
		p.Text = s
	}
	if v, ok := raw.At("fontSize"); ok {
		f, ferr := props.Float("fontSize", v)
		err = firstErr(err, ferr)
		p.FontSize = f
	}
	if v, ok := raw.At("color"); ok {
		c, cerr := props.Color("color", v)
		err = firstErr(err, cerr)
		p.Color = c
	}
	if v, ok := raw.At("numberOfLines"); ok {
		n, nerr := props.Int("numberOfLines", v)
		err = firstErr(err, nerr)
		p.NumberOfLines = n
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// TextMeasurer sizes Paragraph content.
var TextMeasurer graphics.TextMeasurer = graphics.DefaultTextMeasurer

func measureParagraph(n *core.ShadowNode, p *ParagraphProps, ctx core.LayoutContext, c core.LayoutConstraints) graphics.Size {
	scale := ctx.FontSizeMultiplier
	if scale <= 0 {
		scale = 1
	}
	size := TextMeasurer.MeasureText(p.Text, p.FontSize*scale, c.MaximumSize.Width, p.NumberOfLines)
	return c.Clamp(size)
}

// Paragraph is a measurable text leaf.
var Paragraph = core.NewConcreteDescriptor(core.DescriptorConfig[*ParagraphProps]{
	Name:       "Paragraph",
	Traits:     core.TraitLayoutable | core.TraitLeaf | core.TraitMeasurable | core.TraitFormsView | core.TraitText,
	ParseProps: parseParagraphProps,
	Measure:    measureParagraph,
})
