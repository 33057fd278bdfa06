package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...any) { z.emit(z.logger.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...any)  { z.emit(z.logger.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...any)  { z.emit(z.logger.Warn(), msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...any) { z.emit(z.logger.Error(), msg, fields) }

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

func (z *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

// ZerologProvider creates named zerolog-backed loggers.
type ZerologProvider struct {
	root zerolog.Logger
}

// NewZerologProvider builds a provider writing console output at the given
// minimum level.
func NewZerologProvider(level Level) *ZerologProvider {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(toZerologLevel(level)).
		With().Timestamp().Logger()
	return &ZerologProvider{root: zl}
}

// GetLogger returns a logger tagged with the component name.
func (p *ZerologProvider) GetLogger(name string) Logger {
	return &zerologLogger{logger: p.root.With().Str(ComponentKey, name).Logger()}
}

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = NewZerologProvider(InfoLevel)
)

// SetProvider replaces the process-wide provider (e.g. with a test provider).
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns a named logger from the current provider.
func GetLogger(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger(name)
}

func init() {
	// Route pkg/errors warnings (ConvergenceWarning etc.) through zerolog.
	errors.SetZerologWarnFunc(func(warning error) {
		GetLogger("warnings").Warn("warning raised", "warning", warning)
	})
}
