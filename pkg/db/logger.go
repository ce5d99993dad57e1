package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// zapGormLogger adapts gorm's logging onto the process-wide zap logger. The
// slow-query threshold comes from DATABASE.SLOW_QUERY_THRESHOLD; a threshold
// of zero disables slow-query reporting.
type zapGormLogger struct {
	zl            *zap.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
	logQueries    bool
}

func NewZapGormLogger(zl *zap.Logger, level logger.LogLevel, slowThreshold time.Duration, logQueries bool) logger.Interface {
	return &zapGormLogger{
		zl:            zl,
		level:         level,
		slowThreshold: slowThreshold,
		logQueries:    logQueries,
	}
}

func (l *zapGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *zapGormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.zl.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *zapGormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.zl.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *zapGormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.zl.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	fields := func(sql string, rows int64) []zap.Field {
		return []zap.Field{
			zap.String("file", utils.FileWithLineNum()),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed),
		}
	}

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, logger.ErrRecordNotFound):
		sql, rows := fc()
		l.zl.Error("db.query_failed", append(fields(sql, rows), zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.zl.Warn("db.slow_query", append(fields(sql, rows), zap.Duration("threshold", l.slowThreshold))...)
	case l.logQueries && l.level >= logger.Info:
		sql, rows := fc()
		l.zl.Debug("db.query", fields(sql, rows)...)
	}
}
