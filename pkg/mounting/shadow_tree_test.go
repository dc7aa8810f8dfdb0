package mounting

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/props"
)

type recordingDelegate struct {
	mu   sync.Mutex
	revs []Revision
}

func (d *recordingDelegate) ShadowTreeDidCommit(_ *ShadowTree, rev Revision) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revs = append(d.revs, rev)
}

// flakyEngine fails every layout after the first ok calls.
type flakyEngine struct {
	ok    int
	calls int
	inner layout.Engine
}

func (e *flakyEngine) CalculateLayout(root *layout.Node, w, h float64, opts layout.Options) error {
	e.calls++
	if e.calls > e.ok {
		return layout.ErrInvalidMeasurement
	}
	return e.inner.CalculateLayout(root, w, h, opts)
}

type recordingHandler struct {
	errs   []*errors.ShadowError
	panics []*errors.PanicError
}

func (h *recordingHandler) HandleError(err *errors.ShadowError) { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandlePanic(err *errors.PanicError)  { h.panics = append(h.panics, err) }

func newTree(t *testing.T, opts Options) *ShadowTree {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Constraints == (core.LayoutConstraints{}) {
		opts.Constraints = core.Tight(graphics.Size{Width: 100, Height: 100})
	}
	tree, err := NewShadowTree(testSurface, components.Root, opts)
	if err != nil {
		t.Fatalf("NewShadowTree: %v", err)
	}
	return tree
}

func TestShadowTreeInitialRevision(t *testing.T) {
	tree := newTree(t, Options{})
	rev := tree.Current()
	if rev.Number != 0 || rev.Root == nil || !rev.Root.IsSealed() {
		t.Fatalf("initial revision = %+v", rev)
	}
	if rev.Root.Tag() != core.Tag(testSurface) || len(rev.Root.Children()) != 0 {
		t.Errorf("initial root tag %d with %d children", rev.Root.Tag(), len(rev.Root.Children()))
	}
	if got, want := rev.Root.LayoutMetrics().Frame, graphics.RectFromLTWH(0, 0, 100, 100); got != want {
		t.Errorf("root frame = %+v, want %+v", got, want)
	}
	if rev.Root.Family().MostRecent() != rev.Root {
		t.Error("initial root not recorded on its family")
	}
}

func TestShadowTreeCommit(t *testing.T) {
	delegate := &recordingDelegate{}
	tree := newTree(t, Options{Delegate: delegate})
	var observed []int64
	cancel := tree.Observe(func(rev Revision) { observed = append(observed, rev.Number) })

	child := box(t, 2, props.Raw{"height": 10})
	rev, err := tree.Commit(func(old *core.ShadowNode) *core.ShadowNode {
		return next(old, child)
	})
	if err != nil {
		t.Fatal(err)
	}
	if rev.Number != 1 || rev.ID.Version() != 7 {
		t.Errorf("revision %d id %s", rev.Number, rev.ID)
	}
	want := []string{
		"create [View#2]",
		"insert [View#2] into [RootView#1] at 0",
	}
	if diff := cmp.Diff(want, lines(rev.Mutations)); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}
	if !child.IsSealed() || child.Family().MostRecent() != child {
		t.Error("committed child not sealed and recorded")
	}
	if tree.Root() != rev.Root {
		t.Error("Current not updated")
	}

	cancel()
	rev2, err := tree.Commit(func(old *core.ShadowNode) *core.ShadowNode {
		return old.CloneTree(child.Family(), func(n *core.ShadowNode) *core.ShadowNode {
			return restyle(t, n, props.Raw{"height": 20})
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if rev2.ID == rev.ID || rev2.Number != 2 {
		t.Errorf("second revision %d reused id %s", rev2.Number, rev2.ID)
	}
	if diff := cmp.Diff([]int64{1}, observed); diff != "" {
		t.Errorf("observer calls (-want +got):\n%s", diff)
	}
	if len(delegate.revs) != 2 || delegate.revs[1].Number != 2 {
		t.Errorf("delegate saw %d revisions", len(delegate.revs))
	}
}

func TestShadowTreeCommitNotFound(t *testing.T) {
	tree := newTree(t, Options{})
	stranger := box(t, 9, nil)
	_, err := tree.Commit(func(old *core.ShadowNode) *core.ShadowNode {
		return old.CloneTree(stranger.Family(), func(n *core.ShadowNode) *core.ShadowNode { return n })
	})
	if !errors.Is(err, errors.ErrNotFound) || errors.KindOf(err) != errors.KindNotFound {
		t.Errorf("err = %v, want not found", err)
	}
	if tree.Current().Number != 0 {
		t.Error("abandoned commit changed the revision")
	}
}

func TestShadowTreeRejectsForeignRoot(t *testing.T) {
	tree := newTree(t, Options{})
	expectPanic(t, errors.ErrRootMismatch, func() {
		_, _ = tree.Commit(func(*core.ShadowNode) *core.ShadowNode {
			return node(t, components.Root, 1, nil)
		})
	})
}

func TestShadowTreeUpdateState(t *testing.T) {
	tree := newTree(t, Options{})
	child := box(t, 2, nil)
	if _, err := tree.Commit(func(old *core.ShadowNode) *core.ShadowNode { return next(old, child) }); err != nil {
		t.Fatal(err)
	}

	rev, err := tree.UpdateState(child.Family(), "scrolled")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"update [View#2]"}, lines(rev.Mutations)); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}
	if got := child.Family().MostRecentState().Data(); got != "scrolled" {
		t.Errorf("MostRecentState = %v", got)
	}
	if got := child.MostRecentState().Data(); got != "scrolled" {
		t.Errorf("old generation reads %v", got)
	}
	if child.State() != nil {
		t.Error("committed generation state changed")
	}
}

func TestShadowTreeSetSize(t *testing.T) {
	tree := newTree(t, Options{})
	rev, err := tree.SetSize(graphics.Size{Width: 50, Height: 80})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"update [RootView#1]"}, lines(rev.Mutations)); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}
	if got, want := rev.Root.LayoutMetrics().Frame, graphics.RectFromLTWH(0, 0, 50, 80); got != want {
		t.Errorf("root frame = %+v, want %+v", got, want)
	}
}

func TestShadowTreeLayoutFailureDisablesSurface(t *testing.T) {
	handler := &recordingHandler{}
	errors.SetHandler(handler)
	t.Cleanup(func() { errors.SetHandler(nil) })

	tree := newTree(t, Options{Engine: &flakyEngine{ok: 1, inner: layout.NewBoxEngine()}})
	_, err := tree.Commit(func(old *core.ShadowNode) *core.ShadowNode { return next(old, box(t, 2, nil)) })
	if errors.KindOf(err) != errors.KindLayout {
		t.Fatalf("err = %v, want layout error", err)
	}
	if !errors.Is(err, layout.ErrInvalidMeasurement) {
		t.Errorf("engine error not wrapped: %v", err)
	}
	if tree.Err() == nil || len(handler.errs) != 1 {
		t.Fatalf("failure not recorded: err=%v reports=%d", tree.Err(), len(handler.errs))
	}
	if stack := handler.errs[0].StackTrace; !strings.Contains(stack, "TestShadowTreeLayoutFailureDisablesSurface") {
		t.Errorf("report stack does not reach the caller:\n%s", stack)
	}

	called := false
	_, err = tree.Commit(func(old *core.ShadowNode) *core.ShadowNode {
		called = true
		return old.Clone(core.Fragment{})
	})
	if err == nil || called {
		t.Error("failed surface accepted a commit")
	}
	if tree.Current().Number != 0 {
		t.Error("failed commit was published")
	}
}

func TestShadowTreeObserverPanicIsReported(t *testing.T) {
	handler := &recordingHandler{}
	errors.SetHandler(handler)
	t.Cleanup(func() { errors.SetHandler(nil) })

	tree := newTree(t, Options{})
	var seen []int64
	tree.Observe(func(Revision) { panic("observer failed") })
	tree.Observe(func(rev Revision) { seen = append(seen, rev.Number) })

	rev, err := tree.Commit(func(old *core.ShadowNode) *core.ShadowNode { return next(old, box(t, 2, nil)) })
	if err != nil {
		t.Fatal(err)
	}
	if tree.Current().Number != rev.Number {
		t.Error("commit was not published")
	}
	if len(seen) != 1 || seen[0] != rev.Number {
		t.Errorf("other observer saw %v", seen)
	}
	if len(handler.panics) != 1 {
		t.Fatalf("got %d panic reports", len(handler.panics))
	}
	p := handler.panics[0]
	if p.Op != "mounting.ShadowTree.Observe" || p.Value != "observer failed" || p.StackTrace == "" {
		t.Errorf("panic report = %+v", p)
	}
}

func TestShadowTreeConcurrentCommits(t *testing.T) {
	tree := newTree(t, Options{})
	child := box(t, 2, nil)
	if _, err := tree.Commit(func(old *core.ShadowNode) *core.ShadowNode { return next(old, child) }); err != nil {
		t.Fatal(err)
	}

	const n = 16
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tree.UpdateState(child.Family(), i); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if got := tree.Current().Number; got != n+1 {
		t.Errorf("revision = %d, want %d", got, n+1)
	}
}

func TestRevisionMutationsJSON(t *testing.T) {
	tree := newTree(t, Options{})
	rev, err := tree.Commit(func(old *core.ShadowNode) *core.ShadowNode { return next(old, box(t, 2, props.Raw{"height": 10})) })
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(rev.Mutations)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []struct {
		Type     string `json:"type"`
		Index    *int   `json:"index"`
		Parent   *struct {
			Tag int `json:"tag"`
		} `json:"parent"`
		NewChild *struct {
			Component string        `json:"component"`
			Tag       int           `json:"tag"`
			Frame     graphics.Rect `json:"frame"`
		} `json:"new_child"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || decoded[1].Type != "insert" || decoded[1].Parent.Tag != 1 || *decoded[1].Index != 0 {
		t.Fatalf("decoded = %s", data)
	}
	if decoded[0].Index != nil {
		t.Error("create carries an index")
	}
	if nc := decoded[1].NewChild; nc.Component != "View" || nc.Frame != graphics.RectFromLTWH(0, 0, 100, 10) {
		t.Errorf("new child = %+v", nc)
	}
}

func TestSurfaceRegistry(t *testing.T) {
	r := NewSurfaceRegistry()
	tree := newTree(t, Options{})
	r.Add(tree)
	if got, ok := r.Get(testSurface); !ok || got != tree {
		t.Error("Get failed")
	}
	if diff := cmp.Diff([]core.SurfaceID{testSurface}, r.Surfaces()); diff != "" {
		t.Error(diff)
	}
	r.Remove(testSurface)
	if _, ok := r.Get(testSurface); ok {
		t.Error("Remove failed")
	}
}
