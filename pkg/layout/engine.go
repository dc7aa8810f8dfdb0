package layout

import "errors"

// Engine computes layout over a peer tree.
type Engine interface {
	// CalculateLayout lays out root within the owner size. Either dimension may
	// be Undefined or +Inf for an unconstrained axis.
	CalculateLayout(root *Node, ownerWidth, ownerHeight float64, opts Options) error
}

// CloneFunc replaces child, currently owned elsewhere, before the engine
// mutates it. The returned node must already sit at parent.Child(index); a nil
// return makes the engine clone the peer itself.
type CloneFunc func(child, parent *Node, index int) *Node

// Options configures one layout pass.
type Options struct {
	Direction Direction
	Clone     CloneFunc
	// Context is handed to every measure callback of the pass.
	Context any
}

var (
	// ErrInvalidOwnerSize is returned for negative owner sizes.
	ErrInvalidOwnerSize = errors.New("layout: invalid owner size")
	// ErrInvalidMeasurement is returned when a measure callback yields a
	// negative or non-finite size.
	ErrInvalidMeasurement = errors.New("layout: invalid measurement")
)
