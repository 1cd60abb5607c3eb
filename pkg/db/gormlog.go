package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/petrescue/admin-notifier/pkg/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger forwards GORM diagnostics to the service logger. Only failed and
// slow statements are reported; record-not-found is an expected outcome.
type gormLogger struct {
	logg  *logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(logg *logger.Logger) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &gormLogger{logg: logg, level: gormlogger.Warn, slow: slowQueryThreshold}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.logg.Info(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.logg.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.logg.Error(ctx, fmt.Sprintf(msg, args...), nil)
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		g.logg.WarnErr(g.statementCtx(ctx, fc, elapsed), "db.query_failed", err)
	case g.slow > 0 && elapsed > g.slow && g.level >= gormlogger.Warn:
		g.logg.Warn(g.statementCtx(ctx, fc, elapsed), "db.slow_query")
	}
}

func (g *gormLogger) statementCtx(ctx context.Context, fc func() (string, int64), elapsed time.Duration) context.Context {
	sql, rows := fc()
	return g.logg.WithFields(ctx, map[string]any{
		"sql":         sql,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	})
}
