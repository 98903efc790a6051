package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

// Format specifies the log output format
type Format int

const (
	FormatConsole Format = iota
	FormatJSON
)

var (
	defaultLogger = New(os.Stdout, slog.LevelInfo, FormatConsole)
	defaultMutex  sync.Mutex
)

// Default returns the process-wide logger
func Default() *slog.Logger {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *slog.Logger) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultLogger = logger
	slog.SetDefault(logger)
}

// New creates a logger writing to w. Console format uses clog with colored
// levels; JSON format uses the standard slog JSON handler. Secret-bearing
// fields (tokens, secrets) are redacted by masq in both formats.
func New(w io.Writer, level slog.Leveler, format Format) *slog.Logger {
	filter := masq.New(
		masq.WithFieldName("Token"),
		masq.WithFieldName("token"),
		masq.WithFieldPrefix("secret"),
		masq.WithFieldName("clientSecret"),
		masq.WithFieldName("signingSecret"),
	)

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		})

	default:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithSource(true),
			clog.WithTimeFmt("2006-01-02 15:04:05"),
			clog.WithColorMap(&clog.ColorMap{
				Level: map[slog.Level]*color.Color{
					slog.LevelDebug: color.New(color.FgGreen, color.Bold),
					slog.LevelInfo:  color.New(color.FgCyan, color.Bold),
					slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
					slog.LevelError: color.New(color.FgRed, color.Bold),
				},
				LevelDefault: color.New(color.FgBlue, color.Bold),
				Time:         color.New(color.FgWhite),
				Message:      color.New(color.FgHiWhite),
				AttrKey:      color.New(color.FgHiCyan),
				AttrValue:    color.New(color.FgHiWhite),
			}),
			clog.WithReplaceAttr(filter),
		)
	}

	return slog.New(handler)
}

type ctxLoggerKey struct{}

// With returns a new context carrying the given logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger bound to ctx, or the default logger
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
