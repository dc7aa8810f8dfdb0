package props

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-drift/shadow/pkg/graphics"
)

// ConversionError reports a value of the wrong type under a key.
type ConversionError struct {
	Key  string
	Want string
	Got  any
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("prop %q: expected %s, got %T (%v)", e.Key, e.Want, e.Got, e.Got)
}

// Float converts a numeric value.
func Float(key string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &ConversionError{Key: key, Want: "number", Got: v}
		}
		return f, nil
	}
	return 0, &ConversionError{Key: key, Want: "number", Got: v}
}

// Int converts an integral numeric value.
func Int(key string, v any) (int, error) {
	f, err := Float(key, v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &ConversionError{Key: key, Want: "integer", Got: v}
	}
	return int(f), nil
}

// Bool converts a boolean value.
func Bool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, &ConversionError{Key: key, Want: "bool", Got: v}
	}
	return b, nil
}

// String converts a string value.
func String(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &ConversionError{Key: key, Want: "string", Got: v}
	}
	return s, nil
}

// Color accepts color strings and ARGB integers.
func Color(key string, v any) (graphics.Color, error) {
	if s, ok := v.(string); ok {
		c, err := graphics.ParseColor(s)
		if err != nil {
			return 0, fmt.Errorf("prop %q: %w", key, err)
		}
		return c, nil
	}
	n, err := Int(key, v)
	if err != nil {
		return 0, &ConversionError{Key: key, Want: "color", Got: v}
	}
	return graphics.Color(uint32(n)), nil
}
