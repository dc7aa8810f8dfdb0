package mounting

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
)

// Revision is one committed state of a surface.
type Revision struct {
	Number    int64
	ID        uuid.UUID
	Root      *core.ShadowNode
	Mutations Mutations
	Timestamp time.Time
}

// Transaction returns the next root for old, or nil to abandon the commit.
// The returned root must be an unsealed generation of old's family.
type Transaction func(old *core.ShadowNode) *core.ShadowNode

// MountingDelegate receives the mutations of every commit.
type MountingDelegate interface {
	ShadowTreeDidCommit(tree *ShadowTree, rev Revision)
}

// Options configure a ShadowTree.
type Options struct {
	Engine      layout.Engine
	Constraints core.LayoutConstraints
	Context     core.LayoutContext
	Delegate    MountingDelegate
	Logger      *slog.Logger
}

// ShadowTree holds the committed tree of one surface. Commits are serialized;
// reads of the current revision are safe from any goroutine.
type ShadowTree struct {
	surface core.SurfaceID
	opts    Options
	log     *slog.Logger

	commitMu sync.Mutex
	mu       sync.RWMutex
	current  Revision
	failed   error

	obsMu     sync.Mutex
	observers map[int]func(Revision)
	nextObs   int
}

// NewShadowTree returns a tree for surface whose first revision is an empty
// root created by rootDescriptor with the surface id as tag.
func NewShadowTree(surface core.SurfaceID, rootDescriptor core.ComponentDescriptor, opts Options) (*ShadowTree, error) {
	if opts.Engine == nil {
		opts.Engine = layout.NewBoxEngine()
	}
	if opts.Context.PointScaleFactor == 0 {
		opts.Context = core.DefaultLayoutContext()
	}
	if opts.Constraints == (core.LayoutConstraints{}) {
		opts.Constraints = core.Unbounded()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	family := rootDescriptor.CreateFamily(core.Tag(surface), surface)
	root, err := rootDescriptor.CreateShadowNode(core.Fragment{}, family)
	if err != nil {
		return nil, err
	}
	t := &ShadowTree{
		surface:   surface,
		opts:      opts,
		log:       opts.Logger.With("surface_id", int32(surface)),
		observers: make(map[int]func(Revision)),
	}
	if err := root.LayoutTree(opts.Context, opts.Constraints, opts.Engine); err != nil {
		return nil, err
	}
	root.SealRecursive()
	family.RecordCommitted(root)
	t.current = Revision{Number: 0, ID: newRevisionID(), Root: root, Timestamp: time.Now()}
	return t, nil
}

func newRevisionID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// SurfaceID returns the surface of the tree.
func (t *ShadowTree) SurfaceID() core.SurfaceID {
	return t.surface
}

// Current returns the last committed revision.
func (t *ShadowTree) Current() Revision {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Root returns the last committed root.
func (t *ShadowTree) Root() *core.ShadowNode {
	return t.Current().Root
}

// Err returns the layout error that failed the surface, if any.
func (t *ShadowTree) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.failed
}

// Observe registers fn for every later commit and returns a function that
// removes it.
func (t *ShadowTree) Observe(fn func(Revision)) (cancel func()) {
	t.obsMu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn
	t.obsMu.Unlock()
	return func() {
		t.obsMu.Lock()
		delete(t.observers, id)
		t.obsMu.Unlock()
	}
}

// Commit runs tx against the current root, lays out, seals and diffs the
// result, and publishes it as the next revision. A nil root from tx leaves the
// tree unchanged and returns an error wrapping errors.ErrNotFound. A layout
// failure fails the surface: this and every later commit return it.
func (t *ShadowTree) Commit(tx Transaction) (Revision, error) {
	const op = "mounting.ShadowTree.Commit"
	t.commitMu.Lock()
	defer t.commitMu.Unlock()

	if err := t.Err(); err != nil {
		return Revision{}, err
	}
	old := t.Current()
	root := tx(old.Root)
	if root == nil {
		return old, &errors.ShadowError{Op: op, Kind: errors.KindNotFound, Surface: int32(t.surface), Err: errors.ErrNotFound}
	}
	errors.Assert(core.SameFamily(root, old.Root), op, errors.ErrRootMismatch,
		"commit root tag %d on surface %d", root.Tag(), t.surface)
	errors.Assert(!root.IsSealed(), op, errors.ErrUseAfterSeal, "commit of a sealed root")

	var affected []*core.ShadowNode
	ctx := t.opts.Context
	ctx.AffectedNodes = &affected
	if err := root.LayoutTree(ctx, t.opts.Constraints, t.opts.Engine); err != nil {
		t.mu.Lock()
		t.failed = err
		t.mu.Unlock()
		t.log.Warn("surface disabled", "revision", old.Number)
		var se *errors.ShadowError
		if errors.As(err, &se) {
			if se.StackTrace == "" {
				se.StackTrace = errors.CaptureStack()
			}
			errors.Report(se)
		}
		return Revision{}, err
	}

	var fresh []*core.ShadowNode
	root.Walk(func(n *core.ShadowNode) bool {
		if n.IsSealed() {
			return false
		}
		fresh = append(fresh, n)
		return true
	})
	root.SealRecursive()
	for _, n := range fresh {
		n.Family().RecordCommitted(n)
	}

	rev := Revision{
		Number:    old.Number + 1,
		ID:        newRevisionID(),
		Root:      root,
		Mutations: Diff(old.Root, root),
		Timestamp: time.Now(),
	}
	t.mu.Lock()
	t.current = rev
	t.mu.Unlock()

	t.log.Debug("commit",
		"revision", rev.Number,
		"revision_id", rev.ID.String(),
		"mutations", len(rev.Mutations),
		"affected", len(affected),
		"new_nodes", len(fresh))

	if t.opts.Delegate != nil {
		guard("mounting.MountingDelegate.ShadowTreeDidCommit", func() { t.opts.Delegate.ShadowTreeDidCommit(t, rev) })
	}
	t.obsMu.Lock()
	observers := make([]func(Revision), 0, len(t.observers))
	for _, fn := range t.observers {
		observers = append(observers, fn)
	}
	t.obsMu.Unlock()
	for _, fn := range observers {
		guard("mounting.ShadowTree.Observe", func() { fn(rev) })
	}
	return rev, nil
}

// guard runs fn and reports a panic instead of unwinding the commit, which
// is already published.
func guard(op string, fn func()) {
	defer errors.Recover(op)
	fn()
}

// UpdateState commits a new state for family, cloned from its node in the
// current tree.
func (t *ShadowTree) UpdateState(family *core.Family, data any) (Revision, error) {
	return t.Commit(func(old *core.ShadowNode) *core.ShadowNode {
		return old.CloneTree(family, func(n *core.ShadowNode) *core.ShadowNode {
			return n.Clone(core.Fragment{State: family.Descriptor().CreateState(family, data)})
		})
	})
}

// SetConstraints changes the root constraints and relays out the surface.
func (t *ShadowTree) SetConstraints(c core.LayoutConstraints) (Revision, error) {
	t.commitMu.Lock()
	t.opts.Constraints = c
	t.commitMu.Unlock()
	return t.Commit(func(old *core.ShadowNode) *core.ShadowNode {
		return old.Clone(core.Fragment{})
	})
}

// SetSize is SetConstraints with tight constraints of size.
func (t *ShadowTree) SetSize(size graphics.Size) (Revision, error) {
	return t.SetConstraints(core.Tight(size))
}
