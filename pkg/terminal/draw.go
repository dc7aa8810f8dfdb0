package terminal

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
	"github.com/go-drift/shadow/pkg/mounting"
)

// Draw repaints every mounted view. Children paint over their parents in
// mounting order.
func (h *Host) Draw() {
	h.mu.Lock()
	views := h.views
	h.mu.Unlock()

	h.screen.Clear()
	if views != nil {
		h.drawView(views.Root(), graphics.Point{})
	}
	h.screen.Show()
}

func (h *Host) drawView(v *mounting.StubView, origin graphics.Point) {
	frame := v.View.LayoutMetrics.Frame.Translate(origin.X, origin.Y)
	switch p := v.View.Props.(type) {
	case *components.ViewProps:
		if p.BackgroundColor.Alpha() != 0 {
			h.fill(frame, tcell.StyleDefault.Background(tcellColor(p.BackgroundColor)))
		}
		if p.BorderColor.Alpha() != 0 && p.Style.Border != (layout.Edges{}) {
			h.border(frame, tcellColor(p.BorderColor))
		}
	case *components.ParagraphProps:
		insets := v.View.LayoutMetrics.ContentInsets
		content := graphics.Rect{
			Left:   frame.Left + insets.Left,
			Top:    frame.Top + insets.Top,
			Right:  frame.Right - insets.Right,
			Bottom: frame.Bottom - insets.Bottom,
		}
		h.text(content, p)
	}
	for _, c := range v.Children {
		h.drawView(c, frame.Origin())
	}
}

func (h *Host) fill(frame graphics.Rect, style tcell.Style) {
	x0, y0, x1, y1 := h.cells(frame)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			h.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// restyle sets fg on the cell at x, y keeping its background.
func (h *Host) restyle(x, y int, r rune, fg tcell.Color) {
	_, _, style, _ := h.screen.GetContent(x, y)
	h.screen.SetContent(x, y, r, nil, style.Foreground(fg))
}

func (h *Host) border(frame graphics.Rect, fg tcell.Color) {
	x0, y0, x1, y1 := h.cells(frame)
	if x1-x0 < 2 || y1-y0 < 2 {
		return
	}
	for x := x0 + 1; x < x1-1; x++ {
		h.restyle(x, y0, tcell.RuneHLine, fg)
		h.restyle(x, y1-1, tcell.RuneHLine, fg)
	}
	for y := y0 + 1; y < y1-1; y++ {
		h.restyle(x0, y, tcell.RuneVLine, fg)
		h.restyle(x1-1, y, tcell.RuneVLine, fg)
	}
	h.restyle(x0, y0, tcell.RuneULCorner, fg)
	h.restyle(x1-1, y0, tcell.RuneURCorner, fg)
	h.restyle(x0, y1-1, tcell.RuneLLCorner, fg)
	h.restyle(x1-1, y1-1, tcell.RuneLRCorner, fg)
}

func (h *Host) text(frame graphics.Rect, p *components.ParagraphProps) {
	x0, y0, x1, y1 := h.cells(frame)
	rows := y1 - y0
	if p.NumberOfLines > 0 {
		rows = min(rows, p.NumberOfLines)
	}
	fg := tcellColor(p.Color)
	for i, line := range wrap(p.Text, x1-x0) {
		if i >= rows {
			break
		}
		for j, r := range []rune(line) {
			h.restyle(x0+j, y0+i, r, fg)
		}
	}
}

// wrap breaks text into lines of at most width runes, greedily by word.
// Words longer than width are cut.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var line []rune
		for _, word := range strings.Fields(paragraph) {
			w := []rune(word)
			if len(line) > 0 && len(line)+1+len(w) <= width {
				line = append(append(line, ' '), w...)
				continue
			}
			if len(line) > 0 {
				lines = append(lines, string(line))
			}
			for len(w) > width {
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
			line = w
		}
		lines = append(lines, string(line))
	}
	return lines
}
