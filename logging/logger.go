// Package logging provides structured logging for the runc-go container runtime.
//
// It wraps zerolog for leveled, structured output in both text (console) and
// JSON form, and integrates with context.Context for request-scoped loggers.
package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ctxKey is the context key for the logger.
type ctxKey struct{}

var (
	// defaultLogger is the global logger instance.
	defaultLogger zerolog.Logger
	// loggerMu protects defaultLogger.
	loggerMu sync.RWMutex
)

func init() {
	defaultLogger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Config holds the logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level zerolog.Level
	// Format is the output format ("text" or "json").
	Format string
	// Output is the log output destination.
	Output io.Writer
	// AddSource adds the caller file:line to log entries.
	AddSource bool
}

// NewLogger creates a new structured logger with the given configuration.
func NewLogger(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	var w io.Writer = cfg.Output
	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).With().Timestamp()
	if cfg.AddSource {
		ctx = ctx.Caller()
	}

	return ctx.Logger().Level(cfg.Level)
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = logger
}

// Default returns the default global logger.
func Default() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// WithContainer returns a logger with container context.
func WithContainer(logger zerolog.Logger, id string) zerolog.Logger {
	return logger.With().Str("container_id", id).Logger()
}

// WithOperation returns a logger with operation context.
func WithOperation(logger zerolog.Logger, op string) zerolog.Logger {
	return logger.With().Str("operation", op).Logger()
}

// WithPID returns a logger with process ID context.
func WithPID(logger zerolog.Logger, pid int) zerolog.Logger {
	return logger.With().Int("pid", pid).Logger()
}

// WithPath returns a logger with file path context.
func WithPath(logger zerolog.Logger, path string) zerolog.Logger {
	return logger.With().Str("path", path).Logger()
}

// ContextWithLogger returns a new context with the logger attached.
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext retrieves the logger from context.
// If no logger is found, returns the default logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return logger
	}
	return Default()
}

// ParseLevel parses a log level string into a zerolog.Level.
// Valid values: "debug", "info", "warn", "error".
// Returns zerolog.InfoLevel for invalid values.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Helper functions for common log patterns, using the default logger.

// Info logs an info message using the default logger.
func Info(msg string) {
	Default().Info().Msg(msg)
}

// Warn logs a warning message using the default logger.
func Warn(msg string) {
	Default().Warn().Msg(msg)
}

// Error logs an error message using the default logger.
func Error(msg string, err error) {
	Default().Error().Err(err).Msg(msg)
}

// Debug logs a debug message using the default logger.
func Debug(msg string) {
	Default().Debug().Msg(msg)
}

// InfoContext logs an info message using the logger from context.
func InfoContext(ctx context.Context, msg string) {
	FromContext(ctx).Info().Msg(msg)
}

// WarnContext logs a warning message using the logger from context.
func WarnContext(ctx context.Context, msg string) {
	FromContext(ctx).Warn().Msg(msg)
}

// ErrorContext logs an error message using the logger from context.
func ErrorContext(ctx context.Context, msg string, err error) {
	FromContext(ctx).Error().Err(err).Msg(msg)
}

// DebugContext logs a debug message using the logger from context.
func DebugContext(ctx context.Context, msg string) {
	FromContext(ctx).Debug().Msg(msg)
}
