// Package components provides the built-in component descriptors: the surface
// Root, the View container and the Paragraph text leaf.
package components

import "github.com/go-drift/shadow/pkg/core"

// NewRegistry returns a registry holding the built-in components.
func NewRegistry() *core.Registry {
	return core.NewRegistry(Root, View, Paragraph)
}
