package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/props"
)

var (
	flexDirections = map[string]layout.FlexDirection{
		"column":         layout.FlexColumn,
		"column-reverse": layout.FlexColumnReverse,
		"row":            layout.FlexRow,
		"row-reverse":    layout.FlexRowReverse,
	}
	justifies = map[string]layout.Justify{
		"flex-start":    layout.JustifyFlexStart,
		"center":        layout.JustifyCenter,
		"flex-end":      layout.JustifyFlexEnd,
		"space-between": layout.JustifySpaceBetween,
		"space-around":  layout.JustifySpaceAround,
		"space-evenly":  layout.JustifySpaceEvenly,
	}
	aligns = map[string]layout.Align{
		"auto":       layout.AlignAuto,
		"flex-start": layout.AlignFlexStart,
		"center":     layout.AlignCenter,
		"flex-end":   layout.AlignFlexEnd,
		"stretch":    layout.AlignStretch,
	}
	directions = map[string]layout.Direction{
		"inherit": layout.DirectionInherit,
		"ltr":     layout.DirectionLTR,
		"rtl":     layout.DirectionRTL,
	}
	positions = map[string]layout.PositionType{
		"relative": layout.PositionRelative,
		"absolute": layout.PositionAbsolute,
	}
	displays = map[string]layout.Display{
		"flex": layout.DisplayFlex,
		"none": layout.DisplayNone,
	}
	overflows = map[string]layout.Overflow{
		"visible": layout.OverflowVisible,
		"hidden":  layout.OverflowHidden,
		"scroll":  layout.OverflowScroll,
	}
)

// edgeSuffixes lists the per-edge key suffixes in Edge order.
var edgeSuffixes = [...]struct {
	suffix string
	edge   layout.Edge
}{
	{"Left", layout.EdgeLeft},
	{"Top", layout.EdgeTop},
	{"Right", layout.EdgeRight},
	{"Bottom", layout.EdgeBottom},
	{"Start", layout.EdgeStart},
	{"End", layout.EdgeEnd},
	{"Horizontal", layout.EdgeHorizontal},
	{"Vertical", layout.EdgeVertical},
	{"", layout.EdgeAll},
}

// positionKeys are the inset keys of the position edges.
var positionKeys = [...]struct {
	key  string
	edge layout.Edge
}{
	{"left", layout.EdgeLeft},
	{"top", layout.EdgeTop},
	{"right", layout.EdgeRight},
	{"bottom", layout.EdgeBottom},
	{"start", layout.EdgeStart},
	{"end", layout.EdgeEnd},
}

func parseEnum[T any](raw *props.RawProps, key string, table map[string]T, dst *T) error {
	v, ok := raw.At(key)
	if !ok {
		return nil
	}
	s, err := props.String(key, v)
	if err != nil {
		return err
	}
	e, ok := table[s]
	if !ok {
		return fmt.Errorf("prop %q: unknown value %q", key, s)
	}
	*dst = e
	return nil
}

func parseFloat(raw *props.RawProps, key string, dst *float64) error {
	v, ok := raw.At(key)
	if !ok {
		return nil
	}
	f, err := props.Float(key, v)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

// parseValue accepts numbers (points), "auto", "N%" and nil (undefined).
func parseValue(raw *props.RawProps, key string, dst *layout.Value) error {
	v, ok := raw.At(key)
	if !ok {
		return nil
	}
	val, err := toValue(key, v)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func toValue(key string, v any) (layout.Value, error) {
	if v == nil {
		return layout.Value{}, nil
	}
	s, ok := v.(string)
	if !ok {
		f, err := props.Float(key, v)
		if err != nil {
			return layout.Value{}, err
		}
		return layout.Points(f), nil
	}
	s = strings.TrimSpace(s)
	switch {
	case s == "auto":
		return layout.Auto, nil
	case strings.HasSuffix(s, "%"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return layout.Value{}, &props.ConversionError{Key: key, Want: "percentage", Got: v}
		}
		return layout.Percent(f), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return layout.Value{}, &props.ConversionError{Key: key, Want: "dimension", Got: v}
	}
	return layout.Points(f), nil
}

func parseEdges(raw *props.RawProps, prefix, suffix string, dst *layout.Edges) error {
	for _, e := range edgeSuffixes {
		if err := parseValue(raw, prefix+e.suffix+suffix, &dst[e.edge]); err != nil {
			return err
		}
	}
	return nil
}

// parseStyle reads the layout keys of raw on top of st. Every key is read on
// every call so discovery sees the full list.
func parseStyle(st *layout.Style, raw *props.RawProps) error {
	steps := []func() error{
		func() error { return parseEnum(raw, "direction", directions, &st.Direction) },
		func() error { return parseEnum(raw, "flexDirection", flexDirections, &st.FlexDirection) },
		func() error { return parseEnum(raw, "justifyContent", justifies, &st.JustifyContent) },
		func() error { return parseEnum(raw, "alignItems", aligns, &st.AlignItems) },
		func() error { return parseEnum(raw, "alignSelf", aligns, &st.AlignSelf) },
		func() error { return parseEnum(raw, "position", positions, &st.PositionType) },
		func() error { return parseEnum(raw, "display", displays, &st.Display) },
		func() error { return parseEnum(raw, "overflow", overflows, &st.Overflow) },
		func() error { return parseFlex(raw, st) },
		func() error { return parseFloat(raw, "flexGrow", &st.FlexGrow) },
		func() error { return parseFloat(raw, "flexShrink", &st.FlexShrink) },
		func() error { return parseValue(raw, "flexBasis", &st.FlexBasis) },
		func() error { return parseValue(raw, "width", &st.Width) },
		func() error { return parseValue(raw, "height", &st.Height) },
		func() error { return parseValue(raw, "minWidth", &st.MinWidth) },
		func() error { return parseValue(raw, "minHeight", &st.MinHeight) },
		func() error { return parseValue(raw, "maxWidth", &st.MaxWidth) },
		func() error { return parseValue(raw, "maxHeight", &st.MaxHeight) },
		func() error { return parseEdges(raw, "margin", "", &st.Margin) },
		func() error { return parseEdges(raw, "padding", "", &st.Padding) },
		func() error { return parseEdges(raw, "border", "Width", &st.Border) },
		func() error {
			for _, p := range positionKeys {
				if err := parseValue(raw, p.key, &st.Position[p.edge]); err != nil {
					return err
				}
			}
			return nil
		},
	}
	var first error
	for _, step := range steps {
		if err := step(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// parseFlex expands the flex shorthand: positive values grow with a zero
// basis, negative values shrink.
func parseFlex(raw *props.RawProps, st *layout.Style) error {
	v, ok := raw.At("flex")
	if !ok {
		return nil
	}
	flex, err := props.Float("flex", v)
	if err != nil {
		return err
	}
	switch {
	case flex > 0:
		st.FlexGrow, st.FlexShrink, st.FlexBasis = flex, 1, layout.Points(0)
	case flex < 0:
		st.FlexGrow, st.FlexShrink = 0, -flex
	default:
		st.FlexGrow, st.FlexShrink = 0, 0
	}
	return nil
}
