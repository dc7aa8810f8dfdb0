package core

import (
	"sync"
	"weak"
)

// Tag identifies a family within a surface.
type Tag int32

// SurfaceID identifies a root surface.
type SurfaceID int32

// ComponentHandle identifies a component type.
type ComponentHandle int64

// EventEmitter is the per-family event dispatch handle handed to the native
// layer. Event delivery itself is outside this package.
type EventEmitter struct {
	tag     Tag
	surface SurfaceID
}

// Tag returns the tag the emitter targets.
func (e *EventEmitter) Tag() Tag {
	if e == nil {
		return 0
	}
	return e.tag
}

// SurfaceID returns the surface the emitter belongs to.
func (e *EventEmitter) SurfaceID() SurfaceID {
	if e == nil {
		return 0
	}
	return e.surface
}

// Family is the identity shared by every generation of one logical element.
type Family struct {
	tag          Tag
	surfaceID    SurfaceID
	eventEmitter *EventEmitter
	descriptor   ComponentDescriptor

	mu         sync.Mutex
	parent     weak.Pointer[Family]
	mostRecent weak.Pointer[ShadowNode]
	state      *State
}

// NewFamily returns a family bound to descriptor.
func NewFamily(tag Tag, surfaceID SurfaceID, descriptor ComponentDescriptor) *Family {
	return &Family{
		tag:          tag,
		surfaceID:    surfaceID,
		eventEmitter: &EventEmitter{tag: tag, surface: surfaceID},
		descriptor:   descriptor,
	}
}

// Tag returns the family's tag.
func (f *Family) Tag() Tag {
	return f.tag
}

// SurfaceID returns the surface the family belongs to.
func (f *Family) SurfaceID() SurfaceID {
	return f.surfaceID
}

// EventEmitter returns the family's emitter.
func (f *Family) EventEmitter() *EventEmitter {
	return f.eventEmitter
}

// Descriptor returns the descriptor resolved when the family was created.
func (f *Family) Descriptor() ComponentDescriptor {
	return f.descriptor
}

// ComponentName returns the component type name.
func (f *Family) ComponentName() string {
	return f.descriptor.ComponentName()
}

// ComponentHandle returns the component type handle.
func (f *Family) ComponentHandle() ComponentHandle {
	return f.descriptor.ComponentHandle()
}

// MostRecent returns the most recently committed generation, or nil if none
// is committed or it has been collected.
func (f *Family) MostRecent() *ShadowNode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mostRecent.Value()
}

// MostRecentState returns the state of the most recently committed
// generation that carried one.
func (f *Family) MostRecentState() *State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// RecordCommitted notes node as the family's most recent committed generation.
func (f *Family) RecordCommitted(node *ShadowNode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mostRecent = weak.Make(node)
	if node.state != nil && (f.state == nil || node.state.revision >= f.state.revision) {
		f.state = node.state
	}
}

func (f *Family) setParent(parent *Family) {
	f.mu.Lock()
	f.parent = weak.Make(parent)
	f.mu.Unlock()
}

func (f *Family) parentFamily() *Family {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parent.Value()
}
