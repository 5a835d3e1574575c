// Package logging adapts log/slog to the gateway.Logger interface.
package logging

import (
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/quillpost/gateway-client/pkg/gateway"
)

var _ gateway.Logger = (*SlogLogger)(nil)

// SlogLogger implements gateway.Logger on top of a *slog.Logger. Fields are
// emitted as attributes in key order.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// New creates a text or JSON logger writing to w at the given level
// ("debug", "info", "warn", "error").
func New(w io.Writer, level string, json bool) *SlogLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return NewSlogLogger(slog.New(handler))
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug implements gateway.Logger.
func (s *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	s.l.Debug(msg, attrs(fields)...)
}

// Info implements gateway.Logger.
func (s *SlogLogger) Info(msg string, fields map[string]interface{}) {
	s.l.Info(msg, attrs(fields)...)
}

// Warn implements gateway.Logger.
func (s *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	s.l.Warn(msg, attrs(fields)...)
}

// Error implements gateway.Logger.
func (s *SlogLogger) Error(msg string, fields map[string]interface{}) {
	s.l.Error(msg, attrs(fields)...)
}

// With returns a child logger that always includes the given key-value pairs.
func (s *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{l: s.l.With(args...)}
}

func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}

	args := make([]any, 0, len(fields)*2)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, key, fields[key])
	}

	return args
}
