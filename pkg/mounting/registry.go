package mounting

import (
	"slices"
	"sync"

	"github.com/go-drift/shadow/pkg/core"
)

// SurfaceRegistry tracks the live trees of a process by surface.
type SurfaceRegistry struct {
	mu    sync.RWMutex
	trees map[core.SurfaceID]*ShadowTree
}

// NewSurfaceRegistry returns an empty registry.
func NewSurfaceRegistry() *SurfaceRegistry {
	return &SurfaceRegistry{trees: make(map[core.SurfaceID]*ShadowTree)}
}

// Add registers t, replacing any tree of the same surface.
func (r *SurfaceRegistry) Add(t *ShadowTree) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trees[t.SurfaceID()] = t
}

// Remove drops the tree of surface.
func (r *SurfaceRegistry) Remove(surface core.SurfaceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trees, surface)
}

// Get returns the tree of surface.
func (r *SurfaceRegistry) Get(surface core.SurfaceID) (*ShadowTree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trees[surface]
	return t, ok
}

// Surfaces returns the registered surfaces in ascending order.
func (r *SurfaceRegistry) Surfaces() []core.SurfaceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]core.SurfaceID, 0, len(r.trees))
	for id := range r.trees {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
