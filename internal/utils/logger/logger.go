package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var log *zap.Logger

func Init(mode string) error {
	var (
		l   *zap.Logger
		err error
	)

	switch mode {
	case "dev", "debug":
		l, err = zap.NewDevelopment()
	case "prod", "production":
		l, err = zap.NewProduction()
	default:
		return fmt.Errorf("unknown log mode: %q", mode)
	}
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	log = l
	return nil
}

// InitTestLogger installs a no-op logger for unit tests.
func InitTestLogger() {
	log = zap.NewNop()
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}
