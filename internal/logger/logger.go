// Package logger provides the structured logger used across the exchange.
//
// Messages carry key/value pairs. Driver failures are logged with "code" and "desc" keys
// so that every report shows the numeric code together with the driver's description.
//
// Log Levels:
//
//   - DebugLevel: per-cycle details, disabled by default.
//   - InfoLevel:  lifecycle and successful writes.
//   - WarnLevel:  recoverable cycle failures.
//   - ErrorLevel: session failures.
//   - FatalLevel: startup failures; the process exits.
package logger

import (
	"fmt"
	"strings"
)

// Level indicates the logging severity level.
type Level = int8

const (
	// DebugLevel logs are voluminous and usually disabled.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs recoverable problems.
	WarnLevel
	// ErrorLevel logs failures that stop a session.
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

// Logger defines the logging contract used by every package.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// Fatal logs at ErrorLevel and exits with status 1.
	Fatal(msg string, keysAndValues ...any)
	// With creates a child logger with structured context.
	With(keyValues ...any) Logger
	Level() Level
	SetLevel(level Level)
}

// ParseLevel maps a config string onto a Level.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("logger: unknown level %q", raw)
	}
}
