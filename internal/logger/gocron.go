package logger

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// gocronLogger forwards scheduler log lines to zap.
type gocronLogger struct {
	log *zap.SugaredLogger
}

// NewGocronLogger returns a gocron.Logger backed by the global zap logger.
//
//nolint:ireturn // gocron expects its own interface
func NewGocronLogger() gocron.Logger {
	return &gocronLogger{log: Named("scheduler")}
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.log.Debugw(msg, args...) }
func (l *gocronLogger) Info(msg string, args ...any)  { l.log.Infow(msg, args...) }
func (l *gocronLogger) Warn(msg string, args ...any)  { l.log.Warnw(msg, args...) }
func (l *gocronLogger) Error(msg string, args ...any) { l.log.Errorw(msg, args...) }
