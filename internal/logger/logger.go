// Package logger builds the zerolog loggers used across the analyzer and
// carries a request-scoped logger through a context.
package logger

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a console logger on stderr at info level.
func New() zerolog.Logger {
	return NewWithOptions(os.Stderr, "info", FormatConsole)
}

// NewWithWriter returns a JSON logger on w at the global level.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Caller().Logger()
}

// NewWithOptions builds a logger for the given level name and format.
// Unknown levels fall back to info; unknown formats fall back to console.
func NewWithOptions(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if !strings.EqualFold(format, FormatJSON) {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Caller().Logger()
}

// WithContext stores log in ctx.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger stored by WithContext, or New() when ctx
// carries none. Bind the result before logging: the event methods have
// pointer receivers.
func FromContext(ctx context.Context) zerolog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return log
	}
	return New()
}

// WithFields returns a child of log carrying fields, added in key order.
func WithFields(log zerolog.Logger, fields map[string]interface{}) zerolog.Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lc := log.With()
	for _, k := range keys {
		lc = lc.Interface(k, fields[k])
	}
	return lc.Logger()
}
