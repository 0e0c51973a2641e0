package error

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	motmedelContext "github.com/Motmedel/http_response/pkg/context"
)

func LogError(message string, err error, logger *slog.Logger, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(motmedelContext.WithErrorContextValue(context.Background(), err), message, args...)
}

func LogWarning(message string, err error, logger *slog.Logger, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(motmedelContext.WithErrorContextValue(context.Background(), err), message, args...)
}

func LogDebug(message string, err error, logger *slog.Logger, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(motmedelContext.WithErrorContextValue(context.Background(), err), message, args...)
}

func LogFatalWithExitingMessage(message string, err error, logger *slog.Logger, args ...any) {
	LogError(fmt.Sprintf("%s Exiting.", message), err, logger, args...)
	os.Exit(1)
}
