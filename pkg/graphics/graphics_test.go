package graphics

import (
	"math"
	"testing"
)

func TestRectFromLTWH(t *testing.T) {
	r := RectFromLTWH(10, 20, 30, 40)
	if r.Right != 40 || r.Bottom != 60 {
		t.Fatalf("RectFromLTWH = %+v", r)
	}
	if r.Width() != 30 || r.Height() != 40 {
		t.Errorf("size = %vx%v, want 30x40", r.Width(), r.Height())
	}
	if got := r.Translate(5, -5).Origin(); got != (Point{X: 15, Y: 15}) {
		t.Errorf("Translate origin = %+v", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ff0000", ColorRed, false},
		{"#80ff0000", Color(0x80FF0000), false},
		{"#fff", ColorWhite, false},
		{"Blue", ColorBlue, false},
		{"transparent", ColorTransparent, false},
		{"ff0000", 0, true},
		{"#zzzzzz", 0, true},
		{"#12345", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMeasureTextWraps(t *testing.T) {
	m := DefaultTextMeasurer
	one := m.MeasureText("hello world", 13, math.Inf(1), 0)
	if one.Width != 77 || one.Height != 13 {
		t.Fatalf("single line = %+v, want 77x13", one)
	}
	wrapped := m.MeasureText("hello world", 13, 40, 0)
	if wrapped.Height != 26 {
		t.Errorf("wrapped height = %v, want 26", wrapped.Height)
	}
	if wrapped.Width > 40 {
		t.Errorf("wrapped width = %v exceeds bound", wrapped.Width)
	}
	clipped := m.MeasureText("a b c d", 13, 7, 2)
	if clipped.Height != 26 {
		t.Errorf("maxLines height = %v, want 26", clipped.Height)
	}
	if got := m.MeasureText("", 13, 100, 0); got != (Size{}) {
		t.Errorf("empty text = %+v", got)
	}
}
