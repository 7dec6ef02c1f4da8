// Package logger wraps zerolog for the ingestion jobs and the CLI.
//
// Logger embeds zerolog.Logger, so the full zerolog API (Info, Warn, Err,
// ...) is available directly. Jobs receive a *Logger and derive a child per
// run with Component.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Logger struct {
	zerolog.Logger
}

// Options controls how New builds a logger.
type Options struct {
	Level   string // debug|info|warn|error
	Console bool   // human readable output instead of JSON
	NoColor bool
	Out     io.Writer
}

// New returns a logger writing to opts.Out (stderr when nil).
func New(role string, opts Options) *Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, NoColor: opts.NoColor, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Str("role", role).
		Timestamp().
		Logger()

	return &Logger{l}
}

// Nop returns a logger that discards everything; used by tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Component returns a child logger tagged with name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{l.With().Str("component", name).Logger()}
}

// WithContext stores l in ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*zerolog.Ctx(ctx)}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
