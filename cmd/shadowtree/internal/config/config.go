// Package config loads the optional shadow.yaml of the shadowtree CLI.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/layout"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "shadow.yaml"

// Config represents the optional shadow.yaml configuration.
type Config struct {
	Surface   SurfaceConfig   `yaml:"surface"`
	Inspector InspectorConfig `yaml:"inspector"`
	Journal   JournalConfig   `yaml:"journal"`
	Log       LogConfig       `yaml:"log"`
}

// SurfaceConfig sizes the surface of commands without a screen.
type SurfaceConfig struct {
	Width      float64 `yaml:"width,omitempty"`
	Height     float64 `yaml:"height,omitempty"`
	PointScale float64 `yaml:"point_scale,omitempty"`
	Direction  string  `yaml:"direction,omitempty"`
}

// InspectorConfig contains inspector settings.
type InspectorConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// JournalConfig contains journal settings. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	// Path is the file the values came from, or "" for pure defaults.
	Path          string
	Size          graphics.Size
	PointScale    float64
	Direction     layout.Direction
	InspectorAddr string
	JournalPath   string
	LogLevel      slog.Level
	LogFormat     string
}

// LoadOptional reads path if present. A missing file yields an empty config.
func LoadOptional(path string) (*Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, false, nil
		}
		return nil, false, errors.New("config.LoadOptional", errors.KindConfig, fmt.Errorf("failed to read %s: %w", path, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, false, errors.New("config.LoadOptional", errors.KindConfig, fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return &cfg, true, nil
}

// Resolve loads path (DefaultFile when empty) and resolves defaults. An
// explicitly named file must exist.
func Resolve(path string) (*Resolved, error) {
	const op = "config.Resolve"
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	cfg, found, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	if explicit && !found {
		return nil, errors.Newf(op, errors.KindConfig, "config file %s does not exist", path)
	}

	r := &Resolved{
		Size:          graphics.Size{Width: 320, Height: 480},
		PointScale:    1,
		Direction:     layout.DirectionLTR,
		InspectorAddr: "127.0.0.1:9339",
		JournalPath:   strings.TrimSpace(cfg.Journal.Path),
		LogLevel:      slog.LevelInfo,
		LogFormat:     "text",
	}
	if found {
		r.Path = path
	}

	s := cfg.Surface
	if s.Width < 0 || s.Height < 0 {
		return nil, errors.Newf(op, errors.KindConfig, "surface size %gx%g is negative", s.Width, s.Height)
	}
	if s.Width > 0 {
		r.Size.Width = s.Width
	}
	if s.Height > 0 {
		r.Size.Height = s.Height
	}
	if s.PointScale < 0 {
		return nil, errors.Newf(op, errors.KindConfig, "point_scale %g is negative", s.PointScale)
	}
	if s.PointScale > 0 {
		r.PointScale = s.PointScale
	}
	switch strings.ToLower(strings.TrimSpace(s.Direction)) {
	case "", "ltr":
	case "rtl":
		r.Direction = layout.DirectionRTL
	default:
		return nil, errors.Newf(op, errors.KindConfig, "unknown direction %q (use ltr or rtl)", s.Direction)
	}

	if addr := strings.TrimSpace(cfg.Inspector.Addr); addr != "" {
		r.InspectorAddr = addr
	}

	if lvl := strings.TrimSpace(cfg.Log.Level); lvl != "" {
		if err := r.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, errors.Newf(op, errors.KindConfig, "log level: %v", err)
		}
	}
	switch f := strings.ToLower(strings.TrimSpace(cfg.Log.Format)); f {
	case "":
	case "text", "json":
		r.LogFormat = f
	default:
		return nil, errors.Newf(op, errors.KindConfig, "unknown log format %q (use text or json)", cfg.Log.Format)
	}
	return r, nil
}

// Constraints returns tight root constraints of the configured size.
func (r *Resolved) Constraints() core.LayoutConstraints {
	c := core.Tight(r.Size)
	c.LayoutDirection = r.Direction
	return c
}

// Context returns the layout context of the configured scale.
func (r *Resolved) Context() core.LayoutContext {
	ctx := core.DefaultLayoutContext()
	ctx.PointScaleFactor = r.PointScale
	return ctx
}

// Logger returns a logger writing to w. verbose lowers the level to debug.
func (r *Resolved) Logger(w io.Writer, verbose bool) *slog.Logger {
	level := r.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if r.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
