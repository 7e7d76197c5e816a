// Package log provides structured logging for slamwood.
// It wraps slog with a process-wide logger and actor-scoped children.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is info.
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

// Init installs the global logger writing to stderr.
// SLAMWOOD_LOG_FORMAT=json selects the JSON handler.
func Init(level string) {
	InitWriter(os.Stderr, level, os.Getenv("SLAMWOOD_LOG_FORMAT") == "json")
}

// InitWriter installs the global logger writing to w.
func InitWriter(w io.Writer, level string, json bool) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	logger = slog.New(h)
	mu.Unlock()
	slog.SetDefault(logger)
}

// L returns the global logger instance.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init("info")
		return L()
	}
	return l
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Actor returns the logger used by the named actor.
func Actor(base *slog.Logger, name string) *slog.Logger {
	if base == nil {
		base = L()
	}
	return base.With("actor", name)
}
