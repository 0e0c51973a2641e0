package env

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	motmedelEnvErrors "github.com/Motmedel/http_response/pkg/env/errors"
	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	motmedelLogError "github.com/Motmedel/http_response/pkg/log/error"
)

func GetEnvWithDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func ReadEnv(name string) (string, error) {
	value, found := os.LookupEnv(name)
	if !found {
		return "", motmedelErrors.NewWithTrace(fmt.Errorf("%w: %q", motmedelEnvErrors.ErrNotPresent, name), name)
	}
	if value == "" {
		return "", motmedelErrors.NewWithTrace(fmt.Errorf("%w: %q", motmedelEnvErrors.ErrEmpty, name), name)
	}

	return value, nil
}

func ReadEnvFatal(name string, logger *slog.Logger) string {
	value, err := ReadEnv(name)
	if err != nil {
		motmedelLogError.LogFatalWithExitingMessage("An environment variable could not be read.", err, logger)
	}

	return value
}

// GetEnvInt64WithDefault parses the variable key as a base-10 integer, returning defaultValue if it is unset.
func GetEnvInt64WithDefault(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, motmedelErrors.NewWithTrace(fmt.Errorf("strconv parse int: %w", err), value)
	}

	return parsed, nil
}

// GetEnvLevelWithDefault parses the variable key as a slog level name, such as "DEBUG" or "warn".
func GetEnvLevelWithDefault(key string, defaultValue slog.Level) (slog.Level, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, motmedelErrors.NewWithTrace(fmt.Errorf("slog level unmarshal text: %w", err), value)
	}

	return level, nil
}
