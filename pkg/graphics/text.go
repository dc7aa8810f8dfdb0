package graphics

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// TextMeasurer computes intrinsic text sizes.
type TextMeasurer interface {
	MeasureText(text string, fontSize float64, maxWidth float64, maxLines int) Size
}

// FaceMeasurer measures text with a fixed font.Face scaled to the requested size.
type FaceMeasurer struct {
	Face font.Face
	// Size is the nominal size of Face in points.
	Size float64
}

// DefaultTextMeasurer uses basicfont's 7x13 bitmap face.
var DefaultTextMeasurer TextMeasurer = FaceMeasurer{Face: basicfont.Face7x13, Size: 13}

// MeasureText wraps words greedily at maxWidth (NaN or Inf means unbounded).
// maxLines <= 0 means no line limit.
func (m FaceMeasurer) MeasureText(text string, fontSize float64, maxWidth float64, maxLines int) Size {
	if text == "" {
		return Size{}
	}
	scale := 1.0
	if fontSize > 0 && m.Size > 0 {
		scale = fontSize / m.Size
	}
	lineHeight := float64(m.Face.Metrics().Height.Ceil()) * scale
	space := float64(font.MeasureString(m.Face, " ").Ceil()) * scale
	bounded := !math.IsNaN(maxWidth) && !math.IsInf(maxWidth, 0)

	var widest float64
	lines := 0
	for _, paragraph := range strings.Split(text, "\n") {
		var line float64
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines++
			continue
		}
		lines++
		for i, word := range words {
			w := float64(font.MeasureString(m.Face, word).Ceil()) * scale
			next := line + w
			if i > 0 {
				next += space
			}
			if bounded && i > 0 && next > maxWidth {
				widest = math.Max(widest, line)
				lines++
				line = w
				continue
			}
			line = next
		}
		widest = math.Max(widest, line)
	}
	if maxLines > 0 && lines > maxLines {
		lines = maxLines
	}
	if bounded {
		widest = math.Min(widest, maxWidth)
	}
	return Size{Width: widest, Height: float64(lines) * lineHeight}
}
