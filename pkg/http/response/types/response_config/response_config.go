package response_config

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Motmedel/http_response/pkg/http/content_type"
	"github.com/Motmedel/http_response/pkg/http/response/types/content_item"
	motmedelLog "github.com/Motmedel/http_response/pkg/log"
)

const (
	DefaultChunkSize      = content_item.DefaultChunkSize
	DefaultMaxRemoteBytes = 64 << 20
)

type Option func(*Config)

type Config struct {
	Logger           *slog.Logger
	Now              func() time.Time
	ChunkSize        int
	HttpClient       *http.Client
	MaxRemoteBytes   int64
	ContentTypeTable content_type.Table
}

func New(options ...Option) *Config {
	config := &Config{
		Logger:         motmedelLog.Ensure(nil),
		Now:            time.Now,
		ChunkSize:      DefaultChunkSize,
		HttpClient:     http.DefaultClient,
		MaxRemoteBytes: DefaultMaxRemoteBytes,
	}

	for _, option := range options {
		if option != nil {
			option(config)
		}
	}

	return config
}

// WithLogger sets the logger for dropped writes and channel faults. A logger without the error context handler is
// wrapped in one.
func WithLogger(logger *slog.Logger) Option {
	return func(config *Config) {
		if logger != nil {
			config.Logger = motmedelLog.Ensure(logger)
		}
	}
}

// WithNow replaces the clock used for the Date and Expires headers.
func WithNow(now func() time.Time) Option {
	return func(config *Config) {
		if now != nil {
			config.Now = now
		}
	}
}

func WithChunkSize(chunkSize int) Option {
	return func(config *Config) {
		if chunkSize > 0 {
			config.ChunkSize = chunkSize
		}
	}
}

func WithHttpClient(httpClient *http.Client) Option {
	return func(config *Config) {
		config.HttpClient = httpClient
	}
}

// WithMaxRemoteBytes bounds how much a single fetched resource may add to the response. Zero or less means no
// bound.
func WithMaxRemoteBytes(maxRemoteBytes int64) Option {
	return func(config *Config) {
		config.MaxRemoteBytes = maxRemoteBytes
	}
}

func WithContentTypeTable(table content_type.Table) Option {
	return func(config *Config) {
		config.ContentTypeTable = table
	}
}
