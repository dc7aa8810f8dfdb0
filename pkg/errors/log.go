package errors

import "log/slog"

// LogHandler is an ErrorHandler that writes reports through slog.
type LogHandler struct {
	// Logger receives the records; nil means slog.Default().
	Logger *slog.Logger
	// Verbose attaches stack traces to records.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs a ShadowError.
func (h *LogHandler) HandleError(err *ShadowError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "error", err.Err}
	if err.Surface != 0 {
		attrs = append(attrs, "surface_id", err.Surface)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("shadow error", attrs...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("shadow panic", attrs...)
}
