// Package layout defines the layout engine consumed by the shadow tree.
//
// Every layoutable shadow node owns one peer Node. Peers form a parallel tree
// with owner back-links; an Engine computes positions and sizes over that tree.
// The package ships a reference flexbox-subset engine, BoxEngine.
package layout

import "math"

// Undefined is the float used for sizes that have no value.
var Undefined = math.NaN()

// IsUndefined reports whether v carries no value.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Direction is the inline layout direction.
type Direction uint8

const (
	DirectionInherit Direction = iota
	DirectionLTR
	DirectionRTL
)

func (d Direction) String() string {
	switch d {
	case DirectionLTR:
		return "ltr"
	case DirectionRTL:
		return "rtl"
	default:
		return "inherit"
	}
}

// FlexDirection is the main axis of a container.
type FlexDirection uint8

const (
	FlexColumn FlexDirection = iota
	FlexColumnReverse
	FlexRow
	FlexRowReverse
)

func (f FlexDirection) isRow() bool {
	return f == FlexRow || f == FlexRowReverse
}

func (f FlexDirection) isReverse() bool {
	return f == FlexColumnReverse || f == FlexRowReverse
}

// Justify distributes free space along the main axis.
type Justify uint8

const (
	JustifyFlexStart Justify = iota
	JustifyCenter
	JustifyFlexEnd
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// Align positions children on the cross axis.
type Align uint8

const (
	AlignAuto Align = iota
	AlignFlexStart
	AlignCenter
	AlignFlexEnd
	AlignStretch
)

// PositionType selects normal flow or absolute positioning.
type PositionType uint8

const (
	PositionRelative PositionType = iota
	PositionAbsolute
)

// Display toggles whether a node takes part in layout at all.
type Display uint8

const (
	DisplayFlex Display = iota
	DisplayNone
)

// Overflow is carried through to the native layer; the engine ignores it.
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
)

// Unit tags a Value.
type Unit uint8

const (
	UnitUndefined Unit = iota
	UnitPoint
	UnitPercent
	UnitAuto
)

// Value is a dimension in points or percent of the owner.
type Value struct {
	Value float64
	Unit  Unit
}

// Auto is the automatic dimension.
var Auto = Value{Unit: UnitAuto}

// Points returns a point value.
func Points(v float64) Value {
	return Value{Value: v, Unit: UnitPoint}
}

// Percent returns a percentage value.
func Percent(v float64) Value {
	return Value{Value: v, Unit: UnitPercent}
}

// IsDefined reports whether v resolves to a number given a defined owner size.
func (v Value) IsDefined() bool {
	return v.Unit == UnitPoint || v.Unit == UnitPercent
}

// Resolve returns v in points against owner, or Undefined.
func (v Value) Resolve(owner float64) float64 {
	switch v.Unit {
	case UnitPoint:
		return v.Value
	case UnitPercent:
		if IsUndefined(owner) {
			return Undefined
		}
		return owner * v.Value / 100
	}
	return Undefined
}

// Edge indexes an Edges array.
type Edge uint8

const (
	EdgeLeft Edge = iota
	EdgeTop
	EdgeRight
	EdgeBottom
	EdgeStart
	EdgeEnd
	EdgeHorizontal
	EdgeVertical
	EdgeAll
	edgeCount
)

// Edges holds per-edge values, including logical and shorthand edges.
type Edges [edgeCount]Value

// left resolves the physical left edge: logical start/end first, then left,
// then horizontal, then all.
func (e Edges) left(dir Direction) Value {
	logical := e[EdgeStart]
	if dir == DirectionRTL {
		logical = e[EdgeEnd]
	}
	return firstDefined(logical, e[EdgeLeft], e[EdgeHorizontal], e[EdgeAll])
}

func (e Edges) right(dir Direction) Value {
	logical := e[EdgeEnd]
	if dir == DirectionRTL {
		logical = e[EdgeStart]
	}
	return firstDefined(logical, e[EdgeRight], e[EdgeHorizontal], e[EdgeAll])
}

func (e Edges) top() Value {
	return firstDefined(e[EdgeTop], e[EdgeVertical], e[EdgeAll])
}

func (e Edges) bottom() Value {
	return firstDefined(e[EdgeBottom], e[EdgeVertical], e[EdgeAll])
}

func firstDefined(vs ...Value) Value {
	for _, v := range vs {
		if v.Unit != UnitUndefined {
			return v
		}
	}
	return Value{}
}

// resolve returns physical left, top, right, bottom in points.
// Undefined and auto edges resolve to zero.
func (e Edges) resolve(dir Direction, owner float64) [4]float64 {
	vals := [4]Value{e.left(dir), e.top(), e.right(dir), e.bottom()}
	var out [4]float64
	for i, v := range vals {
		if r := v.Resolve(owner); !IsUndefined(r) {
			out[i] = r
		}
	}
	return out
}

// Style is the layout-relevant subset of a node's props. Styles are
// comparable with ==.
type Style struct {
	Direction      Direction
	FlexDirection  FlexDirection
	JustifyContent Justify
	AlignItems     Align
	AlignSelf      Align
	PositionType   PositionType
	Display        Display
	Overflow       Overflow

	FlexGrow   float64
	FlexShrink float64
	FlexBasis  Value

	Width     Value
	Height    Value
	MinWidth  Value
	MinHeight Value
	MaxWidth  Value
	MaxHeight Value

	Margin   Edges
	Padding  Edges
	Border   Edges
	Position Edges
}

// DefaultStyle returns the style of a freshly created node.
func DefaultStyle() Style {
	return Style{AlignItems: AlignStretch}
}
