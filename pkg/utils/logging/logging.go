package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
)

// Format selects the log output encoding
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var (
	defaultLogger = slog.Default()
	defaultMutex  sync.RWMutex
)

// Default returns the process-wide logger
func Default() *slog.Logger {
	defaultMutex.RLock()
	defer defaultMutex.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *slog.Logger) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultLogger = logger
}

type ctxLoggerKey struct{}

// With returns a context carrying logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger carried by ctx, or the default logger
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// New builds a logger writing to w. Values tagged `masq:"secret"` and known
// credential fields are redacted in both formats.
func New(w io.Writer, level slog.Level, format Format) (*slog.Logger, error) {
	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("APIKey"),
		masq.WithFieldName("Token"),
		masq.WithFieldName("DSN"),
	)

	switch format {
	case FormatConsole:
		handler := clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(isTerminal(w)),
			clog.WithSource(level <= slog.LevelDebug),
			clog.WithReplaceAttr(filter),
		)
		return slog.New(handler), nil

	case FormatJSON:
		handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			AddSource:   level <= slog.LevelDebug,
			ReplaceAttr: filter,
		})
		return slog.New(handler), nil

	default:
		return nil, goerr.New("invalid log format", goerr.V("format", format))
	}
}
