package errors

import (
	"errors"
	"time"
)

var (
	ErrNilChannel      = errors.New("nil output channel")
	ErrAlreadySent     = errors.New("response already sent")
	ErrInvalidUtf8     = errors.New("invalid utf-8")
	ErrIsDirectory     = errors.New("is a directory")
	ErrSizeMismatch    = errors.New("file size changed since it was added")
	ErrFileModified    = errors.New("file modified since it was added")
	ErrNilContentItem  = errors.New("nil content item")
	ErrUnknownItemKind = errors.New("unknown content item kind")
	ErrRemoteTooLarge  = errors.New("remote resource exceeds the size limit")
)

// SizeMismatchError reports a file-backed item whose size no longer matches the length counted into
// Content-Length.
type SizeMismatchError struct {
	Path     string
	Expected int64
	Actual   int64
}

func (sizeMismatchError *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}

func (sizeMismatchError *SizeMismatchError) Error() string {
	return ErrSizeMismatch.Error()
}

func (sizeMismatchError *SizeMismatchError) GetInput() any {
	return sizeMismatchError.Path
}

// FileModifiedError reports a file-backed item that kept its size but was rewritten after it was added.
type FileModifiedError struct {
	Path     string
	Expected time.Time
	Actual   time.Time
}

func (fileModifiedError *FileModifiedError) Is(target error) bool {
	return target == ErrFileModified
}

func (fileModifiedError *FileModifiedError) Error() string {
	return ErrFileModified.Error()
}

func (fileModifiedError *FileModifiedError) GetInput() any {
	return fileModifiedError.Path
}
