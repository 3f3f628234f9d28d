package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the process logger from the logging configuration.
// Format selects a text or JSON handler; level one of debug, info, warn,
// error. Unknown values fall back to text at info.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	return slog.New(NewHandler(w, ParseLevel(level), format))
}

// NewHandler creates a slog handler with the given output, level and
// format.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a configuration level string to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
