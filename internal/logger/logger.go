// Package logger provides structured, leveled logging backed by log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level controls the minimum severity that gets emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LoggerInterface is the logging contract used across the application.
// Key-value pairs follow the slog convention (alternating key, value).
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
	With(keyvals ...any) LoggerInterface
}

// Logger implements LoggerInterface on top of slog with JSON output.
type Logger struct {
	sl *slog.Logger
}

// New creates a Logger writing JSON records to w at the given level.
// The service name is attached to every record. Extra base attributes
// may be passed as alternating key-value pairs.
func New(w io.Writer, level Level, service string, baseAttrs []any) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: toSlogLevel(level),
	})

	sl := slog.New(handler).With("service", service)
	if len(baseAttrs) > 0 {
		sl = sl.With(baseAttrs...)
	}

	return &Logger{sl: sl}
}

func toSlogLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, keyvals ...any) {
	l.sl.DebugContext(ctx, msg, keyvals...)
}

func (l *Logger) Info(ctx context.Context, msg string, keyvals ...any) {
	l.sl.InfoContext(ctx, msg, keyvals...)
}

func (l *Logger) Warn(ctx context.Context, msg string, keyvals ...any) {
	l.sl.WarnContext(ctx, msg, keyvals...)
}

func (l *Logger) Error(ctx context.Context, msg string, keyvals ...any) {
	l.sl.ErrorContext(ctx, msg, keyvals...)
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(keyvals ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(keyvals...)}
}
