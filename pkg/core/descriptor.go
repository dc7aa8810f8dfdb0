package core

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/props"
)

// Props is an immutable, component-specific property object. Implementations
// must be pointer types: views compare props by identity.
type Props interface {
	LayoutStyle() layout.Style
}

// ComponentDescriptor creates and adopts nodes of one component type.
type ComponentDescriptor interface {
	ComponentName() string
	ComponentHandle() ComponentHandle
	// Traits are the base traits of every node of this type.
	Traits() Traits

	CreateFamily(tag Tag, surfaceID SurfaceID) *Family
	CreateShadowNode(fragment Fragment, family *Family) (*ShadowNode, error)

	// DefaultProps returns the props of an empty bag.
	DefaultProps() Props
	// CloneProps parses raw on top of source; a nil source means defaults.
	CloneProps(source Props, raw props.Raw) (Props, error)
	// AcceptsProps reports whether p has this descriptor's props type.
	AcceptsProps(p Props) bool

	CreateState(family *Family, data any) *State

	// Adopt runs after every construction and clone, while the node is
	// still unsealed.
	Adopt(node *ShadowNode)
	// MeasureContent sizes a measurable leaf.
	MeasureContent(node *ShadowNode, ctx LayoutContext, constraints LayoutConstraints) graphics.Size
}

var nextHandle atomic.Int64

// DescriptorConfig configures a ConcreteDescriptor.
type DescriptorConfig[P Props] struct {
	Name   string
	Traits Traits
	// ParseProps builds props from raw on top of source. A nil source means
	// defaults. It must read every key it knows through raw.At even when the
	// bag is empty, so the parser can discover them.
	ParseProps func(source P, raw *props.RawProps) (P, error)
	// Initialize adjusts traits and order index of a fresh generation.
	Initialize func(node *ShadowNode, p P)
	// Measure sizes measurable leaves.
	Measure func(node *ShadowNode, p P, ctx LayoutContext, constraints LayoutConstraints) graphics.Size
	// InitialState returns the data for a node created without state, or nil.
	InitialState func(family *Family, p P) any
}

// ConcreteDescriptor implements ComponentDescriptor for props type P.
type ConcreteDescriptor[P Props] struct {
	cfg    DescriptorConfig[P]
	handle ComponentHandle

	once     sync.Once
	parser   *props.Parser
	defaults P
}

// NewConcreteDescriptor returns a descriptor for cfg.
func NewConcreteDescriptor[P Props](cfg DescriptorConfig[P]) *ConcreteDescriptor[P] {
	return &ConcreteDescriptor[P]{cfg: cfg, handle: ComponentHandle(nextHandle.Add(1))}
}

func (d *ConcreteDescriptor[P]) prepare() {
	d.once.Do(func() {
		d.parser = props.For(d.cfg.Name, func(raw *props.RawProps) {
			var zero P
			_, _ = d.cfg.ParseProps(zero, raw)
		})
		var zero P
		defaults, err := d.cfg.ParseProps(zero, d.parser.Parse(nil))
		if err != nil {
			errors.Fatalf("core.ConcreteDescriptor.prepare", nil, "%s: default props: %v", d.cfg.Name, err)
		}
		d.defaults = defaults
	})
}

// ComponentName implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) ComponentName() string {
	return d.cfg.Name
}

// ComponentHandle implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) ComponentHandle() ComponentHandle {
	return d.handle
}

// Traits implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) Traits() Traits {
	return d.cfg.Traits
}

// Parser returns the component's prop parser.
func (d *ConcreteDescriptor[P]) Parser() *props.Parser {
	d.prepare()
	return d.parser
}

// CreateFamily implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) CreateFamily(tag Tag, surfaceID SurfaceID) *Family {
	return NewFamily(tag, surfaceID, d)
}

// DefaultProps implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) DefaultProps() Props {
	d.prepare()
	return d.defaults
}

// AcceptsProps implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) AcceptsProps(p Props) bool {
	_, ok := p.(P)
	return ok
}

// CloneProps implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) CloneProps(source Props, raw props.Raw) (Props, error) {
	d.prepare()
	var base P
	if source != nil {
		typed, ok := source.(P)
		if !ok {
			return nil, errors.Newf("core."+d.cfg.Name+".CloneProps", errors.KindConstruction,
				"source props %T do not belong to %s", source, d.cfg.Name)
		}
		base = typed
	} else {
		base = d.defaults
	}
	p, err := d.cfg.ParseProps(base, d.parser.Parse(raw))
	if err != nil {
		return nil, errors.New("core."+d.cfg.Name+".CloneProps", errors.KindConstruction, err)
	}
	return p, nil
}

// CreateShadowNode implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) CreateShadowNode(fragment Fragment, family *Family) (*ShadowNode, error) {
	op := "core." + d.cfg.Name + ".CreateShadowNode"
	if family == nil {
		return nil, errors.Newf(op, errors.KindConstruction, "nil family")
	}
	if family.descriptor.ComponentHandle() != d.handle {
		return nil, errors.Newf(op, errors.KindConstruction,
			"family %d belongs to %s", family.tag, family.ComponentName())
	}
	if fragment.Props == nil {
		fragment.Props = d.DefaultProps()
	} else if !d.AcceptsProps(fragment.Props) {
		return nil, errors.New(op, errors.KindConstruction,
			fmt.Errorf("props %T do not belong to %s", fragment.Props, d.cfg.Name))
	}
	if fragment.State == nil && d.cfg.InitialState != nil {
		if data := d.cfg.InitialState(family, fragment.Props.(P)); data != nil {
			fragment.State = NewState(family, data)
		}
	}
	if fragment.Children != nil {
		for _, child := range *fragment.Children {
			if child == nil {
				return nil, errors.Newf(op, errors.KindConstruction, "nil child")
			}
			if child.family.surfaceID != family.surfaceID {
				return nil, errors.Newf(op, errors.KindConstruction,
					"child %d belongs to surface %d", child.family.tag, child.family.surfaceID)
			}
		}
	}
	return newShadowNode(fragment, family, d.cfg.Traits), nil
}

// CreateState implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) CreateState(family *Family, data any) *State {
	return NewState(family, data)
}

// Adopt implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) Adopt(node *ShadowNode) {
	if d.cfg.Initialize != nil {
		d.cfg.Initialize(node, node.props.(P))
	}
}

// MeasureContent implements ComponentDescriptor.
func (d *ConcreteDescriptor[P]) MeasureContent(node *ShadowNode, ctx LayoutContext, constraints LayoutConstraints) graphics.Size {
	if d.cfg.Measure == nil {
		errors.Fatalf("core."+d.cfg.Name+".MeasureContent", nil, "component is not measurable")
	}
	return d.cfg.Measure(node, node.props.(P), ctx, constraints)
}

// Registry maps component names to descriptors.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]ComponentDescriptor
}

// NewRegistry returns a registry holding descriptors.
func NewRegistry(descriptors ...ComponentDescriptor) *Registry {
	r := &Registry{byName: make(map[string]ComponentDescriptor)}
	for _, d := range descriptors {
		r.Register(d)
	}
	return r
}

// Register adds or replaces a descriptor.
func (r *Registry) Register(d ComponentDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[d.ComponentName()] = d
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (ComponentDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
