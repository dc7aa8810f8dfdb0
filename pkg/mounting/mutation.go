package mounting

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MutationType is the kind of a Mutation.
type MutationType uint8

const (
	MutationCreate MutationType = iota + 1
	MutationDelete
	MutationInsert
	MutationRemove
	MutationUpdate
	MutationMove
)

func (t MutationType) String() string {
	switch t {
	case MutationCreate:
		return "create"
	case MutationDelete:
		return "delete"
	case MutationInsert:
		return "insert"
	case MutationRemove:
		return "remove"
	case MutationUpdate:
		return "update"
	case MutationMove:
		return "move"
	default:
		return "unknown"
	}
}

// Mutation is one instruction for the native view layer.
//
//	Create: NewChild
//	Delete: OldChild
//	Insert: NewChild into Parent at Index
//	Remove: OldChild from Parent at Index
//	Update: OldChild to NewChild
//	Move:   NewChild within Parent from OldIndex to Index
type Mutation struct {
	Type     MutationType
	Parent   ShadowView
	OldChild ShadowView
	NewChild ShadowView
	Index    int
	OldIndex int
}

// CreateMutation returns a create instruction.
func CreateMutation(v ShadowView) Mutation {
	return Mutation{Type: MutationCreate, NewChild: v, Index: -1, OldIndex: -1}
}

// DeleteMutation returns a delete instruction.
func DeleteMutation(v ShadowView) Mutation {
	return Mutation{Type: MutationDelete, OldChild: v, Index: -1, OldIndex: -1}
}

// InsertMutation returns an insert instruction.
func InsertMutation(parent, child ShadowView, index int) Mutation {
	return Mutation{Type: MutationInsert, Parent: parent, NewChild: child, Index: index, OldIndex: -1}
}

// RemoveMutation returns a remove instruction.
func RemoveMutation(parent, child ShadowView, index int) Mutation {
	return Mutation{Type: MutationRemove, Parent: parent, OldChild: child, Index: index, OldIndex: -1}
}

// UpdateMutation returns an update instruction.
func UpdateMutation(oldChild, newChild ShadowView) Mutation {
	return Mutation{Type: MutationUpdate, OldChild: oldChild, NewChild: newChild, Index: -1, OldIndex: -1}
}

// MoveMutation returns a move instruction.
func MoveMutation(parent, oldChild, newChild ShadowView, oldIndex, index int) Mutation {
	return Mutation{Type: MutationMove, Parent: parent, OldChild: oldChild, NewChild: newChild, Index: index, OldIndex: oldIndex}
}

// Target returns the view the mutation is about.
func (m Mutation) Target() ShadowView {
	if m.NewChild.IsZero() {
		return m.OldChild
	}
	return m.NewChild
}

func (m Mutation) String() string {
	switch m.Type {
	case MutationCreate, MutationDelete, MutationUpdate:
		return fmt.Sprintf("%s %s", m.Type, m.Target())
	case MutationInsert:
		return fmt.Sprintf("insert %s into %s at %d", m.NewChild, m.Parent, m.Index)
	case MutationRemove:
		return fmt.Sprintf("remove %s from %s at %d", m.OldChild, m.Parent, m.Index)
	case MutationMove:
		return fmt.Sprintf("move %s in %s from %d to %d", m.NewChild, m.Parent, m.OldIndex, m.Index)
	}
	return "unknown"
}

type mutationJSON struct {
	Type     string      `json:"type"`
	Parent   *ShadowView `json:"parent,omitempty"`
	OldChild *ShadowView `json:"old_child,omitempty"`
	NewChild *ShadowView `json:"new_child,omitempty"`
	Index    *int        `json:"index,omitempty"`
	OldIndex *int        `json:"old_index,omitempty"`
}

// MarshalJSON encodes only the fields meaningful for the mutation type.
func (m Mutation) MarshalJSON() ([]byte, error) {
	out := mutationJSON{Type: m.Type.String()}
	view := func(v ShadowView) *ShadowView {
		if v.IsZero() {
			return nil
		}
		return &v
	}
	out.Parent = view(m.Parent)
	out.OldChild = view(m.OldChild)
	out.NewChild = view(m.NewChild)
	if m.Index >= 0 {
		out.Index = &m.Index
	}
	if m.OldIndex >= 0 {
		out.OldIndex = &m.OldIndex
	}
	return json.Marshal(out)
}

// Mutations is an ordered mutation list.
type Mutations []Mutation

// String renders one mutation per line.
func (ms Mutations) String() string {
	var b strings.Builder
	for _, m := range ms {
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Count returns the number of mutations of type t.
func (ms Mutations) Count(t MutationType) int {
	n := 0
	for _, m := range ms {
		if m.Type == t {
			n++
		}
	}
	return n
}

// Filter returns the mutations of type t.
func (ms Mutations) Filter(t MutationType) Mutations {
	var out Mutations
	for _, m := range ms {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}
