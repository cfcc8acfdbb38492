// Package logging provides level-based logging for aslharness, adapted
// from the teacher's global-logger convention onto log/slog (no suitable
// third-party structured logger appeared anywhere in the retrieved
// corpus; see DESIGN.md).
package logging

import (
	"context"
	"log/slog"
	"os"
)

var globalLogger *slog.Logger

// Initialize sets up the global logger with debug mode setting. All
// logging goes to stderr so it never interleaves with a CLI run's JSON
// result on stdout.
func Initialize(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	globalLogger = slog.New(handler)
}

func logger() *slog.Logger {
	if globalLogger == nil {
		Initialize(false)
	}
	return globalLogger
}

// Info logs informational messages (always shown).
func Info(msg string, args ...any) { logger().Info(msg, args...) }

// Debug logs debug messages (only shown when debug mode is enabled).
func Debug(msg string, args ...any) { logger().Debug(msg, args...) }

// Error logs error messages (always shown).
func Error(msg string, args ...any) { logger().Error(msg, args...) }

// IsDebugEnabled returns true if debug logging is enabled.
func IsDebugEnabled() bool {
	return logger().Enabled(context.Background(), slog.LevelDebug)
}
