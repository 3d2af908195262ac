package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"parcel-shipping-service/config"
)

// NewLogger writes to stdout and, when a logs directory is configured, to a rotating file per run.
func NewLogger(cfg *config.Config, service string) (*zap.Logger, error) {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	})

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.InfoLevel),
	}

	if cfg.LogsDirectory != "" {
		if err := os.MkdirAll(cfg.LogsDirectory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}

		// Get the current UTC date to create a new file per run
		runTimestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
		logFile := filepath.Join(cfg.LogsDirectory, fmt.Sprintf("%s-%s.log", service, runTimestamp))

		lumberjackLogger := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // MB before it rolls
			MaxBackups: 7,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lumberjackLogger), zap.InfoLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger.With(zap.String("service", service)), nil
}
