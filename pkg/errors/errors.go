// Package errors provides structured error handling for the shadow tree engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConstruction indicates invalid input while building props or nodes.
	KindConstruction
	// KindNotFound indicates a lookup that matched nothing.
	KindNotFound
	// KindLayout indicates a failure inside the layout engine.
	KindLayout
	// KindAssertion indicates a violated invariant (programming error).
	KindAssertion
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration or document file.
	KindConfig
	// KindJournal indicates a commit journal failure.
	KindJournal
)

func (k ErrorKind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindNotFound:
		return "not_found"
	case KindLayout:
		return "layout"
	case KindAssertion:
		return "assertion"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	case KindJournal:
		return "journal"
	default:
		return "unknown"
	}
}

// Sentinel errors wrapped by assertions and lookups.
var (
	ErrUseAfterSeal   = stderrors.New("mutation of sealed shadow node")
	ErrImmutableField = stderrors.New("attempt to change an immutable node field")
	ErrUnsealedTree   = stderrors.New("tree is not sealed")
	ErrRootMismatch   = stderrors.New("roots belong to different families")
	ErrNotFound       = stderrors.New("not found")
)

// ShadowError represents a structured error raised by the engine.
type ShadowError struct {
	// Op is the operation that failed (e.g., "mounting.ShadowTree.Commit").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Surface is the surface id, if applicable.
	Surface int32
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ShadowError) Error() string {
	if e.Surface != 0 {
		return fmt.Sprintf("%s [%s] surface=%d: %v", e.Op, e.Kind, e.Surface, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ShadowError) Unwrap() error {
	return e.Err
}

// New returns a ShadowError for op wrapping err.
func New(op string, kind ErrorKind, err error) *ShadowError {
	return &ShadowError{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// Newf is like New but formats the underlying error.
func Newf(op string, kind ErrorKind, format string, args ...any) *ShadowError {
	return New(op, kind, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the first ShadowError in err's chain.
func KindOf(err error) ErrorKind {
	var se *ShadowError
	if stderrors.As(err, &se) {
		return se.Kind
	}
	var ae *AssertionError
	if stderrors.As(err, &ae) {
		return KindAssertion
	}
	return KindUnknown
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "mounting.ShadowTree.Commit").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// AssertionError is the panic value used for violated invariants.
type AssertionError struct {
	Op  string
	Err error
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed in %s: %v", e.Op, e.Err)
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

// Fatalf panics with an AssertionError wrapping sentinel.
// A nil sentinel produces a plain formatted error.
func Fatalf(op string, sentinel error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	var err error
	if sentinel != nil {
		err = fmt.Errorf("%w: %s", sentinel, msg)
	} else {
		err = stderrors.New(msg)
	}
	panic(&AssertionError{Op: op, Err: err})
}

// Assert panics with an AssertionError when cond is false.
func Assert(cond bool, op string, sentinel error, format string, args ...any) {
	if !cond {
		Fatalf(op, sentinel, format, args...)
	}
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ShadowError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
