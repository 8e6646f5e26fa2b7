package logging

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm/logger"
)

// DatabaseLogger sends gorm logs to the package logger. Queries are logged at
// debug, slow queries at warn and failed queries at error.
type DatabaseLogger struct {
	SlowThreshold time.Duration
}

func NewDatabaseLogger(slow time.Duration) *DatabaseLogger {
	return &DatabaseLogger{
		SlowThreshold: slow,
	}
}

func (l *DatabaseLogger) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (*DatabaseLogger) Info(_ context.Context, format string, args ...interface{}) {
	S.Infof(format, args...)
}

func (*DatabaseLogger) Warn(_ context.Context, format string, args ...interface{}) {
	S.Warnf(format, args...)
}

func (*DatabaseLogger) Error(_ context.Context, format string, args ...interface{}) {
	S.Errorf(format, args...)
}

func (l *DatabaseLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	lvl := zapcore.DebugLevel
	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		lvl = zapcore.ErrorLevel
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold:
		lvl = zapcore.WarnLevel
	}

	if !L.Core().Enabled(lvl) {
		return
	}

	sql, rows := fc()
	if ce := L.Check(lvl, "query"); ce != nil {
		ce.Write(
			zap.String("query", sql),
			zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
}
