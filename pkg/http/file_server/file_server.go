// Package file_server serves the files under a root directory over plain TCP, one request per connection, with
// every response assembled by a response.Builder.
package file_server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	"github.com/Motmedel/http_response/pkg/errors/types/nil_error"
	"github.com/Motmedel/http_response/pkg/http/caching"
	"github.com/Motmedel/http_response/pkg/http/content_type"
	"github.com/Motmedel/http_response/pkg/http/date"
	"github.com/Motmedel/http_response/pkg/http/response"
	"github.com/Motmedel/http_response/pkg/http/response/types/response_config"
	"github.com/Motmedel/http_response/pkg/http/status"
	motmedelLogError "github.com/Motmedel/http_response/pkg/log/error"
	"github.com/google/uuid"
)

const DefaultReadTimeout = 30 * time.Second

type Server struct {
	Root   string
	Logger *slog.Logger
	// ReadTimeout bounds how long a connection may take to deliver its request. Zero means DefaultReadTimeout.
	ReadTimeout     time.Duration
	ResponseOptions []response_config.Option
}

func (server *Server) logger() *slog.Logger {
	if server.Logger == nil {
		return slog.Default()
	}
	return server.Logger
}

func (server *Server) readTimeout() time.Duration {
	if server.ReadTimeout <= 0 {
		return DefaultReadTimeout
	}
	return server.ReadTimeout
}

// Serve accepts connections on listener until ctx is done, handling each in its own goroutine. It returns once
// every accepted connection has been answered.
func (server *Server) Serve(ctx context.Context, listener net.Listener) error {
	if listener == nil {
		return motmedelErrors.NewWithTrace(nil_error.New("listener"))
	}

	var waitGroup sync.WaitGroup
	defer waitGroup.Wait()

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			motmedelLogError.LogWarning(
				"An error occurred when closing the listener.",
				motmedelErrors.New(fmt.Errorf("listener close: %w", err)),
				server.logger(),
			)
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return motmedelErrors.New(fmt.Errorf("listener accept: %w", err))
		}

		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			server.ServeConn(conn)
		}()
	}
}

// resolve maps a request path onto a file under the root. The path is cleaned as an absolute path first so that
// ".." segments cannot leave the root.
func (server *Server) resolve(requestPath string) string {
	return filepath.Join(server.Root, filepath.FromSlash(path.Clean("/"+requestPath)))
}

// ServeConn reads one request from conn, answers it, and closes conn.
func (server *Server) ServeConn(conn net.Conn) {
	logger := server.logger().With(
		slog.String("request_id", uuid.NewString()),
		slog.String("remote_address", conn.RemoteAddr().String()),
	)

	options := append([]response_config.Option{response_config.WithLogger(logger)}, server.ResponseOptions...)
	builder, err := response.New(conn, options...)
	if err != nil {
		motmedelLogError.LogError("A response builder could not be created.", fmt.Errorf("response new: %w", err), logger)
		_ = conn.Close()
		return
	}
	defer builder.Close()

	if err := conn.SetReadDeadline(time.Now().Add(server.readTimeout())); err != nil {
		motmedelLogError.LogWarning(
			"The read deadline could not be set.",
			motmedelErrors.New(fmt.Errorf("conn set read deadline: %w", err)),
			logger,
		)
	}

	request, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		motmedelLogError.LogWarning(
			"A request could not be read.",
			motmedelErrors.New(fmt.Errorf("http read request: %w", err)),
			logger,
		)
		builder.SetStatus(status.BadRequest)
	} else {
		logger = logger.With(slog.String("method", request.Method), slog.String("path", request.URL.Path))
		server.respond(builder, request, logger)
	}

	if err := builder.Send(); err != nil {
		motmedelLogError.LogWarning("A response could not be sent.", fmt.Errorf("send: %w", err), logger)
		return
	}

	logger.Info(
		"A response was sent.",
		slog.Int("status", builder.Status()),
		slog.Int64("content_length", builder.TotalLength()),
	)
}

func (server *Server) respond(builder *response.Builder, request *http.Request, logger *slog.Logger) {
	if request.Method != http.MethodGet {
		builder.SetStatus(status.NotImplemented)
		return
	}

	filePath := server.resolve(request.URL.Path)

	fileInfo, err := os.Stat(filePath)
	if err != nil || fileInfo.IsDir() {
		builder.SetStatus(status.NotFound)
		builder.SetContentType("txt")
		_, _ = builder.WriteString("Not found.\n")
		return
	}

	modTime := fileInfo.ModTime()
	etag := response.FormatETag(modTime.UnixNano())
	lastModified := date.Format(modTime)

	notModified := caching.IfNoneMatchCacheHit(request.Header.Get("If-None-Match"), etag)
	if !notModified {
		cacheHit, err := caching.IfModifiedSinceCacheHit(request.Header.Get("If-Modified-Since"), lastModified)
		if err != nil {
			motmedelLogError.LogDebug("A malformed If-Modified-Since header was ignored.", err, logger)
		}
		notModified = cacheHit
	}

	if notModified {
		builder.SetStatus(status.NotModified)
	} else if err := builder.WriteFile(filePath); err != nil {
		builder.SetStatus(status.ServerError)
		return
	} else if _, err := builder.SetContentTypeFromFile(filePath); err != nil && !errors.Is(err, content_type.ErrNoExtension) {
		motmedelLogError.LogDebug("The content type could not be determined.", err, logger)
	}

	builder.SetLastModified(modTime)
	builder.SetETag(modTime.UnixNano())
}
