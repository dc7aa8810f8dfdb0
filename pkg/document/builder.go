package document

import (
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/mounting"
	"github.com/go-drift/shadow/pkg/props"
)

// built is what the last committed generation of a tag was built from.
type built struct {
	props core.Props
	raw   map[string]any
}

// Builder turns documents of one surface into shadow trees. It keeps a family
// per tag, so successive documents produce successive generations of the same
// nodes. Elements whose props and children are unchanged since the last
// committed generation reuse that node, and elements whose props alone are
// unchanged keep the committed props value.
type Builder struct {
	registry *core.Registry
	surface  core.SurfaceID
	log      *slog.Logger

	mu       sync.Mutex
	families map[core.Tag]*core.Family
	last     map[core.Tag]built
}

// NewBuilder returns a builder resolving components in registry.
func NewBuilder(registry *core.Registry, surface core.SurfaceID, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		registry: registry,
		surface:  surface,
		log:      logger,
		families: make(map[core.Tag]*core.Family),
		last:     make(map[core.Tag]built),
	}
}

// Family returns the family of tag, if one was built or bound.
func (b *Builder) Family(tag core.Tag) (*core.Family, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.families[tag]
	return f, ok
}

// Bind makes f the family of its tag, replacing any previous one.
func (b *Builder) Bind(f *core.Family) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.families[f.Tag()]; ok && prev != f {
		delete(b.last, f.Tag())
	}
	b.families[f.Tag()] = f
}

// Build returns an unsealed root for doc. Only Commit records what a tree was
// built from, so a standalone build does not change later reuse.
func (b *Builder) Build(doc *Document) (*core.ShadowNode, error) {
	node, _, err := b.buildDocument(doc)
	return node, err
}

func (b *Builder) buildDocument(doc *Document) (*core.ShadowNode, map[core.Tag]built, error) {
	const op = "document.Builder.Build"
	if core.SurfaceID(doc.Surface) != b.surface {
		return nil, nil, errors.Newf(op, errors.KindConstruction, "document surface %d, builder surface %d", doc.Surface, b.surface)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	pending := make(map[core.Tag]built)
	node, err := b.build(doc.Root, true, pending)
	if err != nil {
		return nil, nil, err
	}
	return node, pending, nil
}

func (b *Builder) build(el Element, root bool, pending map[core.Tag]built) (*core.ShadowNode, error) {
	const op = "document.Builder.Build"
	desc, ok := b.registry.Get(el.Component)
	if !ok {
		err := errors.Newf(op, errors.KindNotFound, "component %q: %w", el.Component, errors.ErrNotFound)
		err.Surface = int32(b.surface)
		return nil, err
	}
	tag := core.Tag(el.Tag)
	family := b.families[tag]
	if family != nil && family.ComponentHandle() != desc.ComponentHandle() {
		return nil, errors.Newf(op, errors.KindConstruction, "tag %d is a %s, not a %s", tag, family.ComponentName(), el.Component)
	}
	if family == nil {
		family = desc.CreateFamily(tag, b.surface)
		b.families[tag] = family
	}

	children := make([]*core.ShadowNode, 0, len(el.Children))
	for _, c := range el.Children {
		child, err := b.build(c, false, pending)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	prev := family.MostRecent()
	last, known := b.last[tag]
	sameProps := prev != nil && known && last.props == prev.Props() && reflect.DeepEqual(last.raw, el.Props)
	if sameProps && !root && slices.Equal(prev.Children(), children) {
		pending[tag] = last
		return prev, nil
	}

	var fragment core.Fragment
	fragment.Children = core.ChildList(children...)
	if !sameProps {
		p, err := desc.CloneProps(nil, props.Raw(el.Props))
		if err != nil {
			var se *errors.ShadowError
			if errors.As(err, &se) {
				se.Surface = int32(b.surface)
			}
			return nil, err
		}
		fragment.Props = p
	}

	var node *core.ShadowNode
	if prev != nil {
		node = prev.Clone(fragment)
	} else {
		var err error
		if node, err = desc.CreateShadowNode(fragment, family); err != nil {
			return nil, err
		}
	}
	pending[tag] = built{props: node.Props(), raw: el.Props}
	return node, nil
}

// Commit builds doc into tree. The tree's root family is bound first, so the
// document root becomes its next generation.
func (b *Builder) Commit(tree *mounting.ShadowTree, doc *Document) (mounting.Revision, error) {
	b.Bind(tree.Root().Family())
	var (
		buildErr error
		pending  map[core.Tag]built
	)
	rev, err := tree.Commit(func(*core.ShadowNode) *core.ShadowNode {
		root, p, err := b.buildDocument(doc)
		if err != nil {
			buildErr = err
			return nil
		}
		pending = p
		return root
	})
	if buildErr != nil {
		b.log.Warn("document rejected", "surface_id", int32(b.surface), "error", buildErr)
		return rev, buildErr
	}
	if err != nil {
		return rev, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for tag, e := range pending {
		b.last[tag] = e
	}
	return rev, nil
}
