// Package logger provides structured logging for paralegal.
package logger

import (
	"log/slog"
	"os"
	"sync"
)

// Logger is the logging interface used throughout the codebase. It mirrors
// slog's leveled, key-value style so implementations can delegate directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithGroup(name string) Logger
}

// SlogLogger implements Logger on top of log/slog.
type SlogLogger struct {
	inner *slog.Logger
}

// NewLogger creates a logger writing to stderr. Format is "text" or "json";
// anything else falls back to text. Debug enables debug-level output.
func NewLogger(debug bool, format string) *SlogLogger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return &SlogLogger{inner: slog.New(handler)}
}

// Debug logs a debug message.
func (s *SlogLogger) Debug(msg string, args ...any) {
	s.inner.Debug(msg, args...)
}

// Info logs an info message.
func (s *SlogLogger) Info(msg string, args ...any) {
	s.inner.Info(msg, args...)
}

// Warn logs a warning message.
func (s *SlogLogger) Warn(msg string, args ...any) {
	s.inner.Warn(msg, args...)
}

// Error logs an error message.
func (s *SlogLogger) Error(msg string, args ...any) {
	s.inner.Error(msg, args...)
}

// With returns a logger with additional attributes.
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{inner: s.inner.With(args...)}
}

// WithGroup returns a logger with a named attribute group.
func (s *SlogLogger) WithGroup(name string) Logger {
	return &SlogLogger{inner: s.inner.WithGroup(name)}
}

var (
	globalMu sync.RWMutex
	global   Logger = NewLogger(false, "text")
)

// SetupLogger configures the global logger.
func SetupLogger(debug bool, format string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = NewLogger(debug, format)
}

// SetGlobalLogger replaces the global logger, typically with a mock in tests.
func SetGlobalLogger(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
}

// GetGlobalLogger returns the global logger.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Debug logs a debug message on the global logger.
func Debug(msg string, args ...any) {
	GetGlobalLogger().Debug(msg, args...)
}

// Info logs an info message on the global logger.
func Info(msg string, args ...any) {
	GetGlobalLogger().Info(msg, args...)
}

// Warn logs a warning message on the global logger.
func Warn(msg string, args ...any) {
	GetGlobalLogger().Warn(msg, args...)
}

// Error logs an error message on the global logger.
func Error(msg string, args ...any) {
	GetGlobalLogger().Error(msg, args...)
}
