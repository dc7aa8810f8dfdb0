// Package terminal is a native view layer that mounts shadow views on a tcell
// screen. Views are kept in a mounting.StubViewTree and redrawn after every
// commit; one screen cell covers CellSize points.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/mounting"
)

// DefaultCellSize matches the glyph box of graphics.DefaultTextMeasurer, so
// measured text takes one cell per character.
var DefaultCellSize = graphics.Size{Width: 7, Height: 13}

// Options configure a Host.
type Options struct {
	// CellSize is the size of one cell in points. Zero means DefaultCellSize.
	CellSize graphics.Size
	Logger   *slog.Logger
}

// Host mounts the views of one surface on a screen.
type Host struct {
	screen tcell.Screen
	cell   graphics.Size
	log    *slog.Logger

	mu     sync.Mutex
	views  *mounting.StubViewTree
	cancel func()
}

// New returns a host drawing on screen. The screen must be initialized.
func New(screen tcell.Screen, opts Options) *Host {
	if opts.CellSize.Width <= 0 || opts.CellSize.Height <= 0 {
		opts.CellSize = DefaultCellSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Host{screen: screen, cell: opts.CellSize, log: opts.Logger}
}

// SurfaceSize returns the screen size in points.
func (h *Host) SurfaceSize() graphics.Size {
	w, ht := h.screen.Size()
	return graphics.Size{Width: float64(w) * h.cell.Width, Height: float64(ht) * h.cell.Height}
}

// Attach mounts the current tree of t and follows its commits until Detach.
func (h *Host) Attach(t *mounting.ShadowTree) {
	views := mounting.BuildStubViewTree(t.Root())
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.views = views
	h.cancel = t.Observe(func(rev mounting.Revision) {
		if err := h.Apply(rev); err != nil {
			h.log.Warn("remounted surface", "surface_id", int32(t.SurfaceID()), "revision", rev.Number, "error", err)
		}
	})
	h.mu.Unlock()
	h.Draw()
}

// Detach stops following commits.
func (h *Host) Detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// Apply mounts the mutations of rev and redraws. When the mutations do not
// apply to the mounted views, the views are rebuilt from rev.Root and the
// error is reported and returned.
func (h *Host) Apply(rev mounting.Revision) error {
	h.mu.Lock()
	var err error
	if h.views == nil {
		h.views = mounting.BuildStubViewTree(rev.Root)
	} else if err = h.views.Mutate(rev.Mutations); err != nil {
		h.views = mounting.BuildStubViewTree(rev.Root)
		var se *errors.ShadowError
		if errors.As(err, &se) {
			errors.Report(se)
		}
	}
	h.mu.Unlock()
	h.Draw()
	return err
}

// Views returns the mounted view tree.
func (h *Host) Views() *mounting.StubViewTree {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.views
}

// Run attaches t, keeps its size in step with the screen and returns when
// q, Esc or Ctrl-C is pressed or ctx is done. A panic while running is
// reported and returned as an error so the caller can restore the screen.
func (h *Host) Run(ctx context.Context, t *mounting.ShadowTree) (err error) {
	defer errors.RecoverWithCallback("terminal.Host.Run", func(r any) {
		err = fmt.Errorf("terminal: %v", r)
	})
	h.Attach(t)
	defer h.Detach()
	if _, err := t.SetSize(h.SurfaceSize()); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			h.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	for {
		switch ev := h.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			return ctx.Err()
		case *tcell.EventResize:
			h.screen.Sync()
			if _, err := t.SetSize(h.SurfaceSize()); err != nil {
				return err
			}
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				return nil
			}
		}
	}
}

// cells converts a frame in points to a half-open cell range.
func (h *Host) cells(r graphics.Rect) (x0, y0, x1, y1 int) {
	return int(math.Round(r.Left / h.cell.Width)),
		int(math.Round(r.Top / h.cell.Height)),
		int(math.Round(r.Right / h.cell.Width)),
		int(math.Round(r.Bottom / h.cell.Height))
}

func tcellColor(c graphics.Color) tcell.Color {
	r, g, b, _ := c.Components()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
