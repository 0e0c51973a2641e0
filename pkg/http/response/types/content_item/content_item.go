package content_item

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
	"github.com/Motmedel/http_response/pkg/errors/types/empty_error"
	responseErrors "github.com/Motmedel/http_response/pkg/http/response/errors"
	"go.uber.org/multierr"
)

const DefaultChunkSize = 2048

type Kind int

const (
	KindBytes Kind = iota + 1
	KindFile
)

func (kind Kind) String() string {
	switch kind {
	case KindBytes:
		return "bytes"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}

// ContentItem is one ordered piece of a response body: either bytes held in memory or a reference to a file
// that is read when the response is sent.
type ContentItem struct {
	Kind    Kind
	Data    []byte
	Path    string
	ModTime time.Time
	Length  int64
}

func NewBytes(data []byte) *ContentItem {
	return &ContentItem{Kind: KindBytes, Data: append([]byte(nil), data...), Length: int64(len(data))}
}

// NewOwnedBytes is NewBytes without the copy; the caller must not modify data afterwards.
func NewOwnedBytes(data []byte) *ContentItem {
	return &ContentItem{Kind: KindBytes, Data: data, Length: int64(len(data))}
}

func NewString(s string) (*ContentItem, error) {
	if !utf8.ValidString(s) {
		return nil, motmedelErrors.NewWithTrace(responseErrors.ErrInvalidUtf8, s)
	}

	return &ContentItem{Kind: KindBytes, Data: []byte(s), Length: int64(len(s))}, nil
}

// NewFile captures the size of the file at path. The file is opened once to make sure it is readable; its
// contents are not read until Emit.
func NewFile(path string) (*ContentItem, error) {
	if path == "" {
		return nil, motmedelErrors.NewWithTrace(empty_error.New("path"))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("os open: %w", err), path)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, motmedelErrors.NewWithTrace(fmt.Errorf("file stat: %w", err), path)
	}
	if fileInfo.IsDir() {
		return nil, motmedelErrors.NewWithTrace(responseErrors.ErrIsDirectory, path)
	}

	return &ContentItem{Kind: KindFile, Path: path, ModTime: fileInfo.ModTime(), Length: fileInfo.Size()}, nil
}

// Verify checks that a file-backed item still has the size and modification time it had when it was created.
// Bytes items always verify.
func (item *ContentItem) Verify() error {
	if item == nil {
		return motmedelErrors.NewWithTrace(responseErrors.ErrNilContentItem)
	}

	if item.Kind != KindFile {
		return nil
	}

	fileInfo, err := os.Stat(item.Path)
	if err != nil {
		return motmedelErrors.NewWithTrace(fmt.Errorf("os stat: %w", err), item.Path)
	}

	if size := fileInfo.Size(); size != item.Length {
		return motmedelErrors.NewWithTrace(
			&responseErrors.SizeMismatchError{Path: item.Path, Expected: item.Length, Actual: size},
		)
	}

	if modTime := fileInfo.ModTime(); !modTime.Equal(item.ModTime) {
		return motmedelErrors.NewWithTrace(
			&responseErrors.FileModifiedError{Path: item.Path, Expected: item.ModTime, Actual: modTime},
		)
	}

	return nil
}

// Emit writes the item to writer. A file-backed item is streamed through buffer, which bounds the memory used
// per read; exactly Length bytes are written or an error is returned.
func (item *ContentItem) Emit(writer io.Writer, buffer []byte) (int64, error) {
	if item == nil {
		return 0, motmedelErrors.NewWithTrace(responseErrors.ErrNilContentItem)
	}

	switch item.Kind {
	case KindBytes:
		n, err := writer.Write(item.Data)
		if err != nil {
			return int64(n), motmedelErrors.New(fmt.Errorf("writer write: %w", err))
		}
		return int64(n), nil
	case KindFile:
		return item.emitFile(writer, buffer)
	default:
		return 0, motmedelErrors.NewWithTrace(responseErrors.ErrUnknownItemKind, item.Kind)
	}
}

func (item *ContentItem) emitFile(writer io.Writer, buffer []byte) (written int64, err error) {
	if len(buffer) == 0 {
		buffer = make([]byte, DefaultChunkSize)
	}

	file, err := os.Open(item.Path)
	if err != nil {
		return 0, motmedelErrors.NewWithTrace(fmt.Errorf("os open: %w", err), item.Path)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = multierr.Append(err, motmedelErrors.New(fmt.Errorf("file close: %w", closeErr), item.Path))
		}
	}()

	remaining := item.Length
	for remaining > 0 {
		chunk := buffer[:min(int64(len(buffer)), remaining)]

		if _, err := io.ReadFull(file, chunk); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return written, motmedelErrors.New(fmt.Errorf("io read full: %w", err), item.Path)
		}

		n, err := writer.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, motmedelErrors.New(fmt.Errorf("writer write: %w", err), item.Path)
		}

		remaining -= int64(n)
	}

	return written, nil
}
