package terminal

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/document"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/mounting"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

type surface struct {
	tree    *mounting.ShadowTree
	builder *document.Builder
}

func newSurface(t *testing.T, host *Host) *surface {
	t.Helper()
	tree, err := mounting.NewShadowTree(1, components.Root, mounting.Options{
		Constraints: core.Tight(host.SurfaceSize()),
		Logger:      discard(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return &surface{tree: tree, builder: document.NewBuilder(components.NewRegistry(), 1, discard())}
}

func (s *surface) commit(t *testing.T, children ...document.Element) mounting.Revision {
	t.Helper()
	rev, err := s.builder.Commit(s.tree, &document.Document{Version: document.SchemaVersion, Surface: 1,
		Root: document.Element{Component: document.RootComponent, Tag: 1, Children: children}})
	if err != nil {
		t.Fatal(err)
	}
	return rev
}

var (
	redBox = document.Element{Component: "View", Tag: 2,
		Props: map[string]any{"width": 70, "height": 26, "backgroundColor": "red"}}
	greeting = document.Element{Component: "Paragraph", Tag: 3,
		Props: map[string]any{"text": "hi", "fontSize": 13}}
)

func cell(s tcell.Screen, x, y int) (rune, tcell.Color, tcell.Color) {
	r, _, style, _ := s.GetContent(x, y)
	fg, bg, _ := style.Decompose()
	return r, fg, bg
}

func TestHostMountsCommits(t *testing.T) {
	screen := newScreen(t, 20, 6)
	host := New(screen, Options{Logger: discard()})
	if got := host.SurfaceSize(); got != (graphics.Size{Width: 140, Height: 78}) {
		t.Fatalf("surface size = %+v", got)
	}
	s := newSurface(t, host)
	host.Attach(s.tree)
	defer host.Detach()

	s.commit(t, redBox, greeting)
	red := tcell.NewRGBColor(255, 0, 0)
	if _, _, bg := cell(screen, 9, 1); bg != red {
		t.Errorf("inside red box bg = %v", bg)
	}
	if _, _, bg := cell(screen, 10, 1); bg == red {
		t.Error("red box leaks past its right edge")
	}
	if r, fg, _ := cell(screen, 0, 2); r != 'h' || fg != tcell.NewRGBColor(0, 0, 0) {
		t.Errorf("text cell = %q fg %v", r, fg)
	}
	if r, _, _ := cell(screen, 1, 2); r != 'i' {
		t.Errorf("second glyph = %q", r)
	}

	s.commit(t, greeting)
	if r, _, bg := cell(screen, 0, 0); r != 'h' || bg == red {
		t.Errorf("after removal cell = %q bg %v", r, bg)
	}
	if n := host.Views().Size(); n != 2 {
		t.Errorf("mounted views = %d", n)
	}
}

func TestHostBorder(t *testing.T) {
	screen := newScreen(t, 20, 6)
	host := New(screen, Options{Logger: discard()})
	s := newSurface(t, host)
	host.Attach(s.tree)
	defer host.Detach()

	s.commit(t, document.Element{Component: "View", Tag: 4,
		Props: map[string]any{"width": 35, "height": 39, "borderWidth": 7, "borderColor": "blue"}})
	want := map[[2]int]rune{
		{0, 0}: tcell.RuneULCorner, {4, 0}: tcell.RuneURCorner,
		{0, 2}: tcell.RuneLLCorner, {4, 2}: tcell.RuneLRCorner,
		{2, 0}: tcell.RuneHLine, {0, 1}: tcell.RuneVLine,
		{2, 1}: ' ',
	}
	for pos, r := range want {
		got, fg, _ := cell(screen, pos[0], pos[1])
		if got != r {
			t.Errorf("cell %v = %q, want %q", pos, got, r)
		}
		if r != ' ' && fg != tcell.NewRGBColor(0, 0, 255) {
			t.Errorf("cell %v fg = %v", pos, fg)
		}
	}
}

type quietHandler struct {
	n      int
	panics []*errors.PanicError
}

func (h *quietHandler) HandleError(*errors.ShadowError)    { h.n++ }
func (h *quietHandler) HandlePanic(err *errors.PanicError) { h.panics = append(h.panics, err) }

func TestHostRemountsOnBadMutations(t *testing.T) {
	handler := &quietHandler{}
	errors.SetHandler(handler)
	t.Cleanup(func() { errors.SetHandler(nil) })

	screen := newScreen(t, 20, 6)
	host := New(screen, Options{Logger: discard()})
	s := newSurface(t, host)
	host.Attach(s.tree)
	host.Detach()

	rev := s.commit(t, redBox)
	stale := mounting.Revision{Root: rev.Root, Mutations: mounting.Mutations{mounting.DeleteMutation(mounting.ShadowView{Tag: 99, ComponentName: "View"})}}
	if err := host.Apply(stale); errors.KindOf(err) != errors.KindAssertion {
		t.Fatalf("Apply = %v", err)
	}
	if handler.n != 1 {
		t.Errorf("reported %d errors", handler.n)
	}
	if _, ok := host.Views().Get(2); !ok {
		t.Error("views not rebuilt from the revision root")
	}
	if _, _, bg := cell(screen, 0, 0); bg != tcell.NewRGBColor(255, 0, 0) {
		t.Error("rebuilt views not drawn")
	}
}

func TestHostRun(t *testing.T) {
	screen := newScreen(t, 20, 6)
	host := New(screen, Options{Logger: discard()})
	s := newSurface(t, host)
	s.commit(t, greeting)

	done := make(chan error, 1)
	go func() { done <- host.Run(context.Background(), s.tree) }()

	screen.SetSize(30, 6)
	screen.PostEvent(tcell.NewEventResize(30, 6))
	deadline := time.Now().Add(2 * time.Second)
	for s.tree.Root().LayoutMetrics().Frame.Width() != 210 {
		if time.Now().After(deadline) {
			t.Fatalf("root never resized, frame %+v", s.tree.Root().LayoutMetrics().Frame)
		}
		time.Sleep(5 * time.Millisecond)
	}

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on q")
	}
}

func TestHostRunRecoversPanic(t *testing.T) {
	handler := &quietHandler{}
	errors.SetHandler(handler)
	t.Cleanup(func() { errors.SetHandler(nil) })

	screen := newScreen(t, 20, 6)
	host := New(screen, Options{Logger: discard()})
	err := host.Run(context.Background(), nil)
	if err == nil || !strings.HasPrefix(err.Error(), "terminal: ") {
		t.Fatalf("Run = %v", err)
	}
	if len(handler.panics) != 1 || handler.panics[0].Op != "terminal.Host.Run" || handler.panics[0].StackTrace == "" {
		t.Errorf("panic reports = %+v", handler.panics)
	}

	// The host is still usable.
	s := newSurface(t, host)
	host.Attach(s.tree)
	defer host.Detach()
	s.commit(t, redBox)
	if _, ok := host.Views().Get(2); !ok {
		t.Error("views not mounted after a recovered panic")
	}
}

func TestHostRunCancel(t *testing.T) {
	screen := newScreen(t, 20, 6)
	host := New(screen, Options{Logger: discard()})
	s := newSurface(t, host)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- host.Run(ctx, s.tree) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on cancel")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"hello world", 20, []string{"hello world"}},
		{"hello world", 7, []string{"hello", "world"}},
		{"abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"a\n\nb", 5, []string{"a", "", "b"}},
		{"x", 0, nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, wrap(tt.text, tt.width)); diff != "" {
			t.Errorf("wrap(%q, %d) (-want +got):\n%s", tt.text, tt.width, diff)
		}
	}
}
