// Package core provides the immutable shadow node model.
//
// A ShadowNode is one generation of a logical UI element. Its identity lives in
// a Family, shared by every generation of the same element; nodes themselves are
// never edited after they are sealed. Updates produce new generations by cloning:
//
//	next := node.Clone(core.Fragment{Props: props})
//
// and a whole tree is updated with copy-on-write along one path:
//
//	root2 := root.CloneTree(target.Family(), func(old *core.ShadowNode) *core.ShadowNode {
//	    return old.Clone(core.Fragment{Props: props})
//	})
//
// Siblings off the path are shared by reference between root and root2.
//
// # Layout
//
// Layoutable nodes own a layout.Node peer. The peer carries the layout style
// taken from props, a dirty flag and the last computed layout. Cloning a node
// clones its peer; the peer is dirtied only when the layout style or the set of
// layoutable children actually changes, and dirt flows to ancestors as the
// cloner rebuilds them. Root nodes run LayoutTree, which drives a layout.Engine
// and copies new results into each node's LayoutMetrics.
//
// # Sealing
//
// Seal marks a node immutable; SealRecursive seals a whole committed tree. Any
// mutator called on a sealed node panics with an *errors.AssertionError
// wrapping errors.ErrUseAfterSeal.
//
// # Component Descriptors
//
// A ComponentDescriptor knows how to create families, props, states and nodes
// for one component type. ConcreteDescriptor implements it for a props type P:
//
//	var View = core.NewConcreteDescriptor(core.DescriptorConfig[*ViewProps]{
//	    Name:       "View",
//	    Traits:     core.TraitLayoutable | core.TraitFormsView,
//	    ParseProps: parseViewProps,
//	})
//
// Props are parsed through the per-component cache of package props.
package core
