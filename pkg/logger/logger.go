package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/petrescue/admin-notifier/pkg/env"
	pkgerrors "github.com/petrescue/admin-notifier/pkg/errors"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	envFormat  = "PETRESCUE_LOG_FORMAT"
	envNoColor = "PETRESCUE_LOG_NO_COLOR"
)

// Options configures the structured logger. Level is a zerolog level name;
// empty or unknown names mean info. An empty Format falls back to
// PETRESCUE_LOG_FORMAT and then to JSON.
type Options struct {
	ServiceName string
	Level       string
	WarnStack   bool
	Output      io.Writer
	Format      string
}

// Logger writes zerolog events enriched with fields carried on the context.
type Logger struct {
	base      zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

func New(opts Options) *Logger {
	level := ParseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = env.Get(envFormat, FormatJSON)
	}
	if format == FormatConsole {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    env.GetBool(envNoColor, false),
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	return &Logger{
		base: zerolog.New(out).
			Level(level).
			With().
			Timestamp().
			Str("service", opts.ServiceName).
			Logger(),
		warnStack: opts.WarnStack,
	}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return entry
		}
	}
	return &l.base
}

func (l *Logger) with(ctx context.Context, build func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	child := build(l.entry(ctx).With()).Logger()
	return context.WithValue(ctx, ctxKey{}, &child)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("request_id", requestID) })
}

// WithPresentation tags entries with the dropdown (desktop or mobile) they concern.
func (l *Logger) WithPresentation(ctx context.Context, presentation string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("presentation", presentation) })
}

func (l *Logger) WithNotificationID(ctx context.Context, notificationID string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("notification_id", notificationID) })
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	l.warnEvent(ctx).Msg(msg)
}

// WarnErr logs a swallowed failure with its error code, so dropped refreshes
// stay visible without escalating to error level.
func (l *Logger) WarnErr(ctx context.Context, msg string, err error) {
	event := l.warnEvent(ctx)
	if err != nil {
		event = event.Err(err).Str("error_code", string(pkgerrors.CodeOf(err)))
	}
	event.Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.entry(ctx).Error()
	if err != nil {
		event = event.Err(err).Str("error_code", string(pkgerrors.CodeOf(err)))
	}
	event.Str("stack", stackTrace()).Msg(msg)
}

func (l *Logger) warnEvent(ctx context.Context) *zerolog.Event {
	event := l.entry(ctx).Warn()
	if l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	return event
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}
