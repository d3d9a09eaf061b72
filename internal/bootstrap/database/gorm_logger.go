package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pqms/internal/bootstrap/logging"
)

const slowQueryThreshold = 200 * time.Millisecond

// slogLogger sends gorm output through the context logger. Missing-record
// lookups are expected 404s and are never logged.
type slogLogger struct {
	level logger.LogLevel
	slow  time.Duration
}

var _ logger.Interface = (*slogLogger)(nil)

func newGormLogger(level string) (logger.Interface, error) {
	lvl, err := parseGormLevel(level)
	if err != nil {
		return nil, err
	}
	return &slogLogger{level: lvl, slow: slowQueryThreshold}, nil
}

func parseGormLevel(raw string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "warn":
		return logger.Warn, nil
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "info":
		return logger.Info, nil
	default:
		return logger.Silent, fmt.Errorf("unsupported database log level %q", raw)
	}
}

func (l *slogLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		logging.Info(scope(ctx), fmt.Sprintf(msg, args...))
	}
}

func (l *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		logging.Warn(scope(ctx), fmt.Sprintf(msg, args...))
	}
}

func (l *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		logging.Error(scope(ctx), fmt.Sprintf(msg, args...))
	}
}

func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		logging.Error(scope(ctx), "sql failed",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("err", err.Error()),
		)
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		sql, rows := fc()
		logging.Warn(scope(ctx), "slow sql",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.level >= logger.Info:
		sql, rows := fc()
		logging.Info(scope(ctx), "sql",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

func scope(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithAttrs(ctx, slog.String("component", "gorm"))
}
