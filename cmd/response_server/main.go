package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	motmedelEnv "github.com/Motmedel/http_response/pkg/env"
	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	"github.com/Motmedel/http_response/pkg/http/file_server"
	"github.com/Motmedel/http_response/pkg/http/response/types/response_config"
	motmedelLog "github.com/Motmedel/http_response/pkg/log"
	motmedelLogError "github.com/Motmedel/http_response/pkg/log/error"
	"github.com/Motmedel/http_response/pkg/log/zap_logger"
)

func makeLogger(backend string, level slog.Level) (*slog.Logger, func(), error) {
	switch backend {
	case "zap":
		logger, zapLogger, err := zap_logger.NewLogger(level)
		if err != nil {
			return nil, nil, fmt.Errorf("zap logger new logger: %w", err)
		}
		return logger, func() { _ = zapLogger.Sync() }, nil
	case "slog":
		return motmedelLog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})), func() {}, nil
	default:
		return nil, nil, motmedelErrors.NewWithTrace(fmt.Errorf("unsupported log backend: %q", backend), backend)
	}
}

func main() {
	level, err := motmedelEnv.GetEnvLevelWithDefault("LOG_LEVEL", slog.LevelInfo)
	if err != nil {
		motmedelLogError.LogFatalWithExitingMessage("The log level could not be parsed.", err, nil)
	}

	logger, syncLogger, err := makeLogger(motmedelEnv.GetEnvWithDefault("LOG_BACKEND", "zap"), level)
	if err != nil {
		motmedelLogError.LogFatalWithExitingMessage("The logger could not be created.", err, nil)
	}
	defer syncLogger()
	slog.SetDefault(logger)

	root := motmedelEnv.ReadEnvFatal("ROOT", logger)
	addr := motmedelEnv.GetEnvWithDefault("ADDR", ":8080")

	chunkSize, err := motmedelEnv.GetEnvInt64WithDefault("CHUNK_SIZE", response_config.DefaultChunkSize)
	if err != nil {
		motmedelLogError.LogFatalWithExitingMessage("The chunk size could not be parsed.", err, logger)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		motmedelLogError.LogFatalWithExitingMessage(
			"The listener could not be created.",
			motmedelErrors.NewWithTrace(fmt.Errorf("net listen: %w", err), addr),
			logger,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &file_server.Server{
		Root:            root,
		Logger:          logger,
		ResponseOptions: []response_config.Option{response_config.WithChunkSize(int(chunkSize))},
	}

	logger.Info("Serving files.", slog.String("root", root), slog.String("address", listener.Addr().String()))

	if err := server.Serve(ctx, listener); err != nil {
		motmedelLogError.LogError("The server stopped unexpectedly.", fmt.Errorf("serve: %w", err), logger)
	}
}
