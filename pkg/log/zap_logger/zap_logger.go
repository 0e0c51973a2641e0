package zap_logger

import (
	"fmt"
	"log/slog"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	motmedelLog "github.com/Motmedel/http_response/pkg/log"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// NewLogger makes a slog logger whose records are encoded by zap's production JSON core. The returned zap logger
// must be synced by the caller before exiting.
func NewLogger(level slog.Level) (*slog.Logger, *zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel(level))

	zapLogger, err := config.Build()
	if err != nil {
		return nil, nil, motmedelErrors.NewWithTrace(fmt.Errorf("zap config build: %w", err), level)
	}

	return motmedelLog.New(zapslog.NewHandler(zapLogger.Core(), nil)), zapLogger, nil
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
