package components

import "github.com/go-drift/shadow/pkg/core"

// RootProps are the props of the surface root.
type RootProps = ViewProps

// Root is the top node of every surface. It always forms a view.
var Root = core.NewConcreteDescriptor(core.DescriptorConfig[*RootProps]{
	Name:       "RootView",
	Traits:     core.TraitLayoutable | core.TraitFormsView | core.TraitRoot,
	ParseProps: parseViewProps,
	Initialize: func(n *core.ShadowNode, p *RootProps) {
		n.SetOrderIndex(p.ZIndex)
	},
})
