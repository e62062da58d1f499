// Package logger provides structured logging using log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/zapponejosh/cycle-api/internal/config"
)

// Context keys for request-scoped values
type contextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey contextKey = "request_id"
)

// Setup initializes the global logger based on configuration.
// Call this once at application startup.
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w without touching the global default.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug, // Add source file info in debug mode
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds a request ID to the logger context.
// Use this in middleware to tag all logs for a request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID extracts the request ID from context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns base (or the default logger when base is nil) with
// request-scoped attributes from ctx.
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	logger := base
	if logger == nil {
		logger = slog.Default()
	}

	if requestID := RequestID(ctx); requestID != "" {
		logger = logger.With(slog.String("request_id", requestID))
	}

	return logger
}

// Error logs an error with context.
func Error(ctx context.Context, base *slog.Logger, msg string, err error, args ...any) {
	allArgs := append([]any{slog.Any("error", err)}, args...)
	FromContext(ctx, base).ErrorContext(ctx, msg, allArgs...)
}

// Info logs an info message with context.
func Info(ctx context.Context, base *slog.Logger, msg string, args ...any) {
	FromContext(ctx, base).InfoContext(ctx, msg, args...)
}

// Debug logs a debug message with context.
func Debug(ctx context.Context, base *slog.Logger, msg string, args ...any) {
	FromContext(ctx, base).DebugContext(ctx, msg, args...)
}

// Warn logs a warning message with context.
func Warn(ctx context.Context, base *slog.Logger, msg string, args ...any) {
	FromContext(ctx, base).WarnContext(ctx, msg, args...)
}
