package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/reader"
)

// Kind classifies why a file failed.
type Kind string

const (
	KindCorrupt         Kind = "corrupt"
	KindTimeout         Kind = "timeout"
	KindUnknownLanguage Kind = "unknown-language"
	KindIO              Kind = "io"
	KindInternal        Kind = "internal"
)

// ExtractionError is the failure of one file. The rest of the batch is
// unaffected.
type ExtractionError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", filepath.Base(e.Path), e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// PanicError carries a panic recovered while processing a file.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Classify wraps err in an ExtractionError with the matching kind.
func Classify(path string, err error) *ExtractionError {
	if err == nil {
		return nil
	}
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee
	}

	kind := KindInternal
	var (
		corrupt *reader.CorruptDocumentError
		unknown *lang.UnknownLanguageError
		pathErr *fs.PathError
	)
	switch {
	case errors.As(err, &corrupt):
		kind = KindCorrupt
	case errors.As(err, &unknown):
		kind = KindUnknownLanguage
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindTimeout
	case errors.As(err, &pathErr), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		kind = KindIO
	}
	return &ExtractionError{Path: path, Kind: kind, Err: err}
}
