package core

import (
	"math"

	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
)

// DisplayType mirrors the layout display style.
type DisplayType uint8

const (
	DisplayFlex DisplayType = iota
	DisplayNone
)

func (d DisplayType) String() string {
	if d == DisplayNone {
		return "none"
	}
	return "flex"
}

// LayoutMetrics is the computed box of a node relative to its parent.
type LayoutMetrics struct {
	Frame            graphics.Rect
	ContentInsets    graphics.EdgeInsets
	BorderWidth      graphics.EdgeInsets
	DisplayType      DisplayType
	LayoutDirection  layout.Direction
	PointScaleFactor float64
}

// EmptyLayoutMetrics is the value of a node that has never been laid out.
var EmptyLayoutMetrics = LayoutMetrics{PointScaleFactor: 1}

// LayoutConstraints bound the size of a root.
type LayoutConstraints struct {
	MinimumSize     graphics.Size
	MaximumSize     graphics.Size
	LayoutDirection layout.Direction
}

// Unbounded returns constraints with no upper bound.
func Unbounded() LayoutConstraints {
	return LayoutConstraints{MaximumSize: graphics.Size{Width: math.Inf(1), Height: math.Inf(1)}}
}

// Tight returns constraints that force size.
func Tight(size graphics.Size) LayoutConstraints {
	return LayoutConstraints{MinimumSize: size, MaximumSize: size}
}

// Clamp bounds size by the constraints.
func (c LayoutConstraints) Clamp(size graphics.Size) graphics.Size {
	return graphics.Size{
		Width:  math.Max(c.MinimumSize.Width, math.Min(c.MaximumSize.Width, size.Width)),
		Height: math.Max(c.MinimumSize.Height, math.Min(c.MaximumSize.Height, size.Height)),
	}
}

// LayoutContext is passed through one layout pass.
type LayoutContext struct {
	PointScaleFactor float64
	// FontSizeMultiplier scales text measured by measurable leaves.
	FontSizeMultiplier float64
	// AffectedNodes, when non-nil, collects nodes whose metrics changed.
	AffectedNodes *[]*ShadowNode
}

// DefaultLayoutContext returns a context with unit scale.
func DefaultLayoutContext() LayoutContext {
	return LayoutContext{PointScaleFactor: 1, FontSizeMultiplier: 1}
}

func metricsFromResult(r layout.Result, style layout.Style, scale float64) LayoutMetrics {
	border := graphics.EdgeInsets{Left: r.Border[0], Top: r.Border[1], Right: r.Border[2], Bottom: r.Border[3]}
	padding := graphics.EdgeInsets{Left: r.Padding[0], Top: r.Padding[1], Right: r.Padding[2], Bottom: r.Padding[3]}
	m := LayoutMetrics{
		Frame:            graphics.RectFromLTWH(r.Left, r.Top, r.Width, r.Height),
		BorderWidth:      border,
		ContentInsets:    border.Add(padding),
		LayoutDirection:  r.Direction,
		PointScaleFactor: scale,
	}
	if style.Display == layout.DisplayNone {
		m.DisplayType = DisplayNone
	}
	return m
}
