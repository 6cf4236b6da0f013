package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// QueryLogger routes gorm's query tracing through the application
// slog logger, so database output shares one format with the rest of
// the service. Record-not-found is not logged; services translate it
// into a domain error and it would only add noise here.
type QueryLogger struct {
	Level         logger.LogLevel
	SlowThreshold time.Duration
}

func NewQueryLogger(level logger.LogLevel, slowThreshold time.Duration) *QueryLogger {
	return &QueryLogger{Level: level, SlowThreshold: slowThreshold}
}

func (l *QueryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.Level = level
	return &clone
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Level >= logger.Info {
		Info(fmt.Sprintf(msg, data...))
	}
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Level >= logger.Warn {
		Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Level >= logger.Error {
		Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement. Failures log at error level,
// statements beyond SlowThreshold at warn, everything else at debug
// when the level allows it.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.Level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	query, rows := fc()
	attrs := []any{
		slog.String("query", query),
		slog.Int64("rows", rows),
		slog.Duration("duration", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.Level >= logger.Error:
		Error("database query failed", append(attrs, slog.String("error", err.Error()))...)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.Level >= logger.Warn:
		Warn("slow database query", attrs...)
	case l.Level >= logger.Info:
		Debug("database query", attrs...)
	}
}
