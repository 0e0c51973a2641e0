// Package response assembles an HTTP/1.1 response from pieces added over time and transmits it in one pass with
// an exact Content-Length.
//
// A Builder is bound to one output channel. Callers set the status and headers and add content items from as many
// call sites as they like, then call Send (or Redirect) exactly once and finally Close. A Builder must not be used
// from more than one goroutine at a time.
package response

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	"github.com/Motmedel/http_response/pkg/errors/types/empty_error"
	"github.com/Motmedel/http_response/pkg/errors/types/nil_error"
	"github.com/Motmedel/http_response/pkg/http/content_type"
	"github.com/Motmedel/http_response/pkg/http/date"
	responseErrors "github.com/Motmedel/http_response/pkg/http/response/errors"
	"github.com/Motmedel/http_response/pkg/http/response/types/content_item"
	"github.com/Motmedel/http_response/pkg/http/response/types/response_config"
	"github.com/Motmedel/http_response/pkg/http/status"
	motmedelLogError "github.com/Motmedel/http_response/pkg/log/error"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	httpVersion             = "HTTP/1.1"
	contentLengthHeaderName = "Content-Length"
)

// Flusher is implemented by output channels that buffer, such as *bufio.Writer.
type Flusher interface {
	Flush() error
}

type Builder struct {
	config *response_config.Config

	status      int
	headers     map[string]string
	headerNames []string
	items       []*content_item.ContentItem
	totalLength int64

	channel io.Writer
	sent    bool
}

func New(channel io.Writer, options ...response_config.Option) (*Builder, error) {
	if channel == nil {
		return nil, motmedelErrors.NewWithTrace(
			fmt.Errorf("%w: %w", responseErrors.ErrNilChannel, nil_error.New("channel")),
		)
	}

	builder := &Builder{
		config:  response_config.New(options...),
		status:  status.Ok,
		headers: make(map[string]string),
		channel: channel,
	}
	builder.SetHeader("Date", date.Format(builder.config.Now()))

	return builder, nil
}

func (builder *Builder) mutable(operation string) bool {
	if !builder.sent {
		return true
	}

	motmedelLogError.LogDebug(
		"A response was modified after it was sent. Ignoring.",
		motmedelErrors.NewWithTrace(responseErrors.ErrAlreadySent, operation),
		builder.config.Logger,
	)
	return false
}

func (builder *Builder) Status() int {
	return builder.status
}

// SetStatus stores code as-is; its range is not validated.
func (builder *Builder) SetStatus(code int) {
	if !builder.mutable("set status") {
		return
	}
	builder.status = code
}

func (builder *Builder) Header(name string) (string, bool) {
	value, ok := builder.headers[name]
	return value, ok
}

// HeaderNames returns the header names in the order they were first set, which is the order they are sent in.
func (builder *Builder) HeaderNames() []string {
	return slices.Clone(builder.headerNames)
}

// SetHeader inserts or replaces a header. Names are case-sensitive. A Content-Length header set here is never
// sent; Send always emits the computed length.
func (builder *Builder) SetHeader(name string, value string) {
	if !builder.mutable("set header") {
		return
	}

	if _, ok := builder.headers[name]; !ok {
		builder.headerNames = append(builder.headerNames, name)
	}
	builder.headers[name] = value
}

func (builder *Builder) DisableCaching() {
	builder.SetHeader("Expires", date.Format(builder.config.Now()))
	builder.SetHeader("Pragma", "no-cache")
	builder.SetHeader("Cache-Control", "no-cache")
}

// SetContentType sets Content-Type from a file extension and returns it. An unknown extension leaves the headers
// unchanged and returns "".
func (builder *Builder) SetContentType(extension string) string {
	contentType := builder.config.ContentTypeTable.Lookup(extension)
	if contentType != "" {
		builder.SetHeader("Content-Type", contentType)
	}
	return contentType
}

// SetContentTypeFromFile is SetContentType with the extension of path. A file name without a '.' yields
// content_type.ErrNoExtension.
func (builder *Builder) SetContentTypeFromFile(path string) (string, error) {
	extension, err := content_type.ExtensionFromFileName(path)
	if err != nil {
		return "", fmt.Errorf("extension from file name: %w", err)
	}

	return builder.SetContentType(extension), nil
}

// SetContentDisposition marks the response as an attachment named after the base name of path. Quotes in the
// name are not escaped.
func (builder *Builder) SetContentDisposition(path string) string {
	disposition := fmt.Sprintf("attachment; filename=\"%s\"", filepath.Base(path))
	builder.SetHeader("Content-Disposition", disposition)
	return disposition
}

func (builder *Builder) SetLastModified(modTime time.Time) {
	builder.SetHeader("Last-Modified", date.Format(modTime))
}

// SetLastModifiedUnixMilli is SetLastModified for a time in milliseconds since the Unix epoch.
func (builder *Builder) SetLastModifiedUnixMilli(milliseconds int64) {
	builder.SetHeader("Last-Modified", date.FormatUnixMilli(milliseconds))
}

// FormatETag renders value as the quoted entity tag that SetETag sends.
func FormatETag(value int64) string {
	return strconv.Quote(strconv.FormatInt(value, 10))
}

func (builder *Builder) SetETag(value int64) {
	builder.SetHeader("ETag", FormatETag(value))
}

func (builder *Builder) Items() []*content_item.ContentItem {
	return slices.Clone(builder.items)
}

// TotalLength is the sum of the lengths of all added items.
func (builder *Builder) TotalLength() int64 {
	return builder.totalLength
}

func (builder *Builder) Sent() bool {
	return builder.sent
}

func (builder *Builder) add(item *content_item.ContentItem) {
	builder.items = append(builder.items, item)
	builder.totalLength += item.Length
}

func (builder *Builder) drop(message string, err error) error {
	motmedelLogError.LogWarning(fmt.Sprintf("%s Skipping.", message), err, builder.config.Logger)
	return err
}

// Write adds a copy of p to the response. It only fails once the response has been sent.
func (builder *Builder) Write(p []byte) (int, error) {
	if builder.sent {
		return 0, builder.drop(
			"A byte slice could not be added to the response.",
			motmedelErrors.NewWithTrace(responseErrors.ErrAlreadySent, p),
		)
	}

	builder.add(content_item.NewBytes(p))
	return len(p), nil
}

// WriteString adds s to the response. A string that is not valid UTF-8 is dropped.
func (builder *Builder) WriteString(s string) (int, error) {
	if builder.sent {
		return 0, builder.drop(
			"A string could not be added to the response.",
			motmedelErrors.NewWithTrace(responseErrors.ErrAlreadySent, s),
		)
	}

	item, err := content_item.NewString(s)
	if err != nil {
		return 0, builder.drop(
			"A string could not be added to the response.",
			fmt.Errorf("content item new string: %w", err),
		)
	}

	builder.add(item)
	return len(s), nil
}

// WriteFile adds a reference to the file at path. Its size is counted now; its contents are read by Send.
func (builder *Builder) WriteFile(path string) error {
	if builder.sent {
		return builder.drop(
			"A file could not be added to the response.",
			motmedelErrors.NewWithTrace(responseErrors.ErrAlreadySent, path),
		)
	}

	item, err := content_item.NewFile(path)
	if err != nil {
		return builder.drop("A file could not be added to the response.", fmt.Errorf("content item new file: %w", err))
	}

	builder.add(item)
	return nil
}

// Redirect sets status 302 and the Location header, then sends the response.
func (builder *Builder) Redirect(location string) error {
	builder.SetStatus(status.Found)
	builder.SetHeader("Location", location)

	if err := builder.Send(); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	return nil
}

// Preamble renders the status line and headers, ending with the computed Content-Length and the blank line.
func (builder *Builder) Preamble() string {
	var stringBuilder strings.Builder

	stringBuilder.WriteString(httpVersion)
	stringBuilder.WriteByte(' ')
	stringBuilder.WriteString(strconv.Itoa(builder.status))
	stringBuilder.WriteString("\r\n")

	for _, name := range builder.headerNames {
		if strings.EqualFold(name, contentLengthHeaderName) {
			continue
		}
		stringBuilder.WriteString(name)
		stringBuilder.WriteString(": ")
		stringBuilder.WriteString(builder.headers[name])
		stringBuilder.WriteString("\r\n")
	}

	stringBuilder.WriteString(contentLengthHeaderName)
	stringBuilder.WriteString(": ")
	stringBuilder.WriteString(strconv.FormatInt(builder.totalLength, 10))
	stringBuilder.WriteString("\r\n\r\n")

	return stringBuilder.String()
}

// Send writes the preamble and every item, in the order they were added, to the output channel and flushes it.
// The first failure aborts the transmission and is returned; the channel should then be closed. A Builder can be
// sent only once.
func (builder *Builder) Send() error {
	if builder.sent {
		return motmedelErrors.NewWithTrace(responseErrors.ErrAlreadySent)
	}
	builder.sent = true

	return builder.transmit(builder.channel)
}

func (builder *Builder) transmit(channel io.Writer) error {
	// File items are checked before anything is written, so a stale Content-Length is never put on the wire.
	for _, item := range builder.items {
		if err := item.Verify(); err != nil {
			return fmt.Errorf("content item verify: %w", err)
		}
	}

	chunkSize := builder.config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = content_item.DefaultChunkSize
	}

	bufferedWriter := bufio.NewWriterSize(channel, chunkSize)

	preamble := builder.Preamble()
	if _, err := bufferedWriter.WriteString(preamble); err != nil {
		return motmedelErrors.New(fmt.Errorf("buffered writer write string (preamble): %w", err), preamble)
	}

	buffer := make([]byte, chunkSize)
	for i, item := range builder.items {
		if _, err := item.Emit(bufferedWriter, buffer); err != nil {
			return motmedelErrors.New(fmt.Errorf("content item emit: %w", err), i)
		}
	}

	if err := bufferedWriter.Flush(); err != nil {
		return motmedelErrors.New(fmt.Errorf("buffered writer flush: %w", err))
	}

	if flusher, ok := channel.(Flusher); ok {
		if err := flusher.Flush(); err != nil {
			return motmedelErrors.New(fmt.Errorf("channel flush: %w", err))
		}
	}

	return nil
}

// Save writes the complete response, preamble included, to the file at path instead of the output channel. The
// file is written under a temporary name and renamed into place. Save does not consume the Builder.
func (builder *Builder) Save(path string) (err error) {
	if path == "" {
		return motmedelErrors.NewWithTrace(empty_error.New("path"))
	}

	temporaryPath := filepath.Join(
		filepath.Dir(path),
		fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()),
	)

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return motmedelErrors.NewWithTrace(fmt.Errorf("os open file: %w", err), temporaryPath)
	}
	defer func() {
		if err != nil {
			if removeErr := os.Remove(temporaryPath); removeErr != nil {
				err = multierr.Append(err, motmedelErrors.New(fmt.Errorf("os remove: %w", removeErr), temporaryPath))
			}
		}
	}()

	transmitErr := builder.transmit(file)
	if transmitErr != nil {
		transmitErr = fmt.Errorf("transmit: %w", transmitErr)
	}
	if closeErr := file.Close(); closeErr != nil {
		transmitErr = multierr.Append(transmitErr, motmedelErrors.New(fmt.Errorf("file close: %w", closeErr), temporaryPath))
	}
	if transmitErr != nil {
		return transmitErr
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		return motmedelErrors.NewWithTrace(fmt.Errorf("os rename: %w", err), temporaryPath, path)
	}

	return nil
}

// Close flushes and closes the output channel if it supports it. Failures are logged; the channel is unusable
// afterwards either way.
func (builder *Builder) Close() {
	var err error

	if flusher, ok := builder.channel.(Flusher); ok {
		if flushErr := flusher.Flush(); flushErr != nil {
			err = multierr.Append(err, fmt.Errorf("channel flush: %w", flushErr))
		}
	}

	if closer, ok := builder.channel.(io.Closer); ok {
		if closeErr := closer.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("channel close: %w", closeErr))
		}
	}

	if err != nil {
		motmedelLogError.LogWarning(
			"An error occurred when closing the output channel.",
			motmedelErrors.New(err),
			builder.config.Logger,
		)
	}
}
