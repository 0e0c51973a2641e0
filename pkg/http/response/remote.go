package response

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	"github.com/Motmedel/http_response/pkg/errors/types/empty_error"
	"github.com/Motmedel/http_response/pkg/errors/types/nil_error"
	motmedelHttpErrors "github.com/Motmedel/http_response/pkg/http/errors"
	responseErrors "github.com/Motmedel/http_response/pkg/http/response/errors"
	"github.com/Motmedel/http_response/pkg/http/response/types/content_item"
	motmedelLogError "github.com/Motmedel/http_response/pkg/log/error"
)

func (builder *Builder) readAll(reader io.Reader, input any) ([]byte, error) {
	maxRemoteBytes := builder.config.MaxRemoteBytes
	if maxRemoteBytes <= 0 {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, motmedelErrors.New(fmt.Errorf("io read all: %w", err), input)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxRemoteBytes+1))
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("io read all: %w", err), input)
	}
	if int64(len(data)) > maxRemoteBytes {
		return nil, motmedelErrors.NewWithTrace(responseErrors.ErrRemoteTooLarge, input)
	}

	return data, nil
}

func (builder *Builder) fetchHttp(ctx context.Context, resourceUrl *url.URL) ([]byte, error) {
	httpClient := builder.config.HttpClient
	if httpClient == nil {
		return nil, motmedelErrors.NewWithTrace(motmedelHttpErrors.ErrNilHttpClient)
	}

	urlString := resourceUrl.String()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, urlString, nil)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("http new request with context: %w", err), urlString)
	}
	if request == nil {
		return nil, motmedelErrors.NewWithTrace(motmedelHttpErrors.ErrNilHttpRequest)
	}

	httpResponse, err := httpClient.Do(request)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("http client do: %w", err), urlString)
	}
	if httpResponse == nil {
		return nil, motmedelErrors.NewWithTrace(motmedelHttpErrors.ErrNilHttpResponse)
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			motmedelLogError.LogWarning(
				"An error occurred when closing a response body.",
				motmedelErrors.New(fmt.Errorf("http response body close: %w", err), urlString),
				builder.config.Logger,
			)
		}
	}()

	if statusCode := httpResponse.StatusCode; statusCode < 200 || statusCode > 299 {
		return nil, motmedelErrors.NewWithTrace(
			&motmedelHttpErrors.Non2xxStatusCodeError{StatusCode: statusCode},
			urlString,
		)
	}

	return builder.readAll(httpResponse.Body, urlString)
}

func (builder *Builder) fetchFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("os open: %w", err), path)
	}
	defer file.Close()

	return builder.readAll(file, path)
}

func (builder *Builder) fetch(ctx context.Context, rawUrl string) ([]byte, error) {
	if rawUrl == "" {
		return nil, motmedelErrors.NewWithTrace(empty_error.New("url"))
	}

	resourceUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("url parse: %w", err), rawUrl)
	}

	switch scheme := strings.ToLower(resourceUrl.Scheme); scheme {
	case "http", "https":
		return builder.fetchHttp(ctx, resourceUrl)
	case "file":
		return builder.fetchFile(resourceUrl.Path)
	default:
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %q", motmedelHttpErrors.ErrUnsupportedScheme, scheme),
			rawUrl,
		)
	}
}

// WriteUrl fetches the resource at rawUrl in full right away and adds it to the response as bytes. http and https
// URLs are fetched with the configured client; file URLs are read from disk. Non-2xx responses are dropped.
func (builder *Builder) WriteUrl(ctx context.Context, rawUrl string) error {
	if builder.sent {
		return builder.drop(
			"A resource could not be added to the response.",
			motmedelErrors.NewWithTrace(responseErrors.ErrAlreadySent, rawUrl),
		)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	data, err := builder.fetch(ctx, rawUrl)
	if err != nil {
		return builder.drop("A resource could not be added to the response.", fmt.Errorf("fetch: %w", err))
	}

	builder.add(content_item.NewOwnedBytes(data))
	return nil
}

// WriteResource reads the named file of fsys, such as an embed.FS, in full and adds it to the response as bytes.
func (builder *Builder) WriteResource(fsys fs.FS, name string) error {
	if builder.sent {
		return builder.drop(
			"A resource could not be added to the response.",
			motmedelErrors.NewWithTrace(responseErrors.ErrAlreadySent, name),
		)
	}

	if fsys == nil {
		return builder.drop(
			"A resource could not be added to the response.",
			motmedelErrors.NewWithTrace(nil_error.New("file system")),
		)
	}

	file, err := fsys.Open(name)
	if err != nil {
		return builder.drop(
			"A resource could not be added to the response.",
			motmedelErrors.NewWithTrace(fmt.Errorf("fs open: %w", err), name),
		)
	}
	defer file.Close()

	data, err := builder.readAll(file, name)
	if err != nil {
		return builder.drop("A resource could not be added to the response.", fmt.Errorf("read all: %w", err))
	}

	builder.add(content_item.NewOwnedBytes(data))
	return nil
}
