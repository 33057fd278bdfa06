// Package log provides structured logging for the tuning pipeline.
//
// It defines a minimal, slog-style Logger interface with key-value fields so
// the backend can be swapped, plus a zerolog-based default provider. Tuning
// code logs per-fold progress, eliminations, and metric values through this
// interface rather than writing to stdout directly.
package log

// Logger is a structured logger with slog-style variadic key-value fields.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs recoverable anomalies (e.g. convergence warnings, failed
	// per-fold fits that were recorded as missing cells).
	Warn(msg string, fields ...any)

	// Error logs failures that abort an operation.
	Error(msg string, fields ...any)

	// With returns a child logger with the given fields pre-populated.
	With(fields ...any) Logger
}

// Level is the minimum severity a provider emits.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// ToLogLevel parses a level name, defaulting to info.
func ToLogLevel(level string) Level {
	switch level {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LoggerProvider creates named loggers.
type LoggerProvider interface {
	GetLogger(name string) Logger
}
