// Package logger provides component-tagged leveled logging for nomiclaw.
// Every log line carries a short component tag ("discord", "relay", ...)
// so a single gateway process stays greppable.
package logger

import (
	"context"
	"log/slog"
	"os"
)

// Level aliases keep call sites short: logger.SetLevel(logger.DEBUG).
const (
	DEBUG = slog.LevelDebug
	INFO  = slog.LevelInfo
	WARN  = slog.LevelWarn
	ERROR = slog.LevelError
)

var (
	levelVar slog.LevelVar
	base     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &levelVar}))
)

// SetLevel adjusts the global log level.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// SetOutput replaces the global handler, mainly for tests.
func SetOutput(l *slog.Logger) {
	base = l
}

func logC(level slog.Level, component, msg string, fields map[string]any) {
	attrs := make([]any, 0, 2+2*len(fields))
	attrs = append(attrs, "component", component)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	base.Log(context.Background(), level, msg, attrs...)
}

// DebugC logs a debug message for a component.
func DebugC(component, msg string) { logC(DEBUG, component, msg, nil) }

// DebugCF logs a debug message with structured fields.
func DebugCF(component, msg string, fields map[string]any) { logC(DEBUG, component, msg, fields) }

// InfoC logs an info message for a component.
func InfoC(component, msg string) { logC(INFO, component, msg, nil) }

// InfoCF logs an info message with structured fields.
func InfoCF(component, msg string, fields map[string]any) { logC(INFO, component, msg, fields) }

// WarnC logs a warning for a component.
func WarnC(component, msg string) { logC(WARN, component, msg, nil) }

// WarnCF logs a warning with structured fields.
func WarnCF(component, msg string, fields map[string]any) { logC(WARN, component, msg, fields) }

// ErrorC logs an error for a component.
func ErrorC(component, msg string) { logC(ERROR, component, msg, nil) }

// ErrorCF logs an error with structured fields.
func ErrorCF(component, msg string, fields map[string]any) { logC(ERROR, component, msg, fields) }
