package core

import "sync/atomic"

var stateRevision atomic.Int64

// State is an immutable, versioned payload owned by a family. A node keeps
// the State it was created with; newer values are read through
// Family.MostRecentState.
type State struct {
	family   *Family
	data     any
	revision int64
}

// NewState returns a state for family carrying data.
func NewState(family *Family, data any) *State {
	return &State{family: family, data: data, revision: stateRevision.Add(1)}
}

// Data returns the payload.
func (s *State) Data() any {
	if s == nil {
		return nil
	}
	return s.data
}

// Revision orders states of one family; later states have larger values.
func (s *State) Revision() int64 {
	if s == nil {
		return 0
	}
	return s.revision
}

// Family returns the owning family.
func (s *State) Family() *Family {
	if s == nil {
		return nil
	}
	return s.family
}

// IsObsolete reports whether a newer state has been committed for the family.
func (s *State) IsObsolete() bool {
	if s == nil || s.family == nil {
		return false
	}
	latest := s.family.MostRecentState()
	return latest != nil && latest.revision > s.revision
}
