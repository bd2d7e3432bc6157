package reader

import (
	"errors"
	"fmt"
)

// ErrPageOutOfRange is returned for page numbers outside 1..NumPages.
var ErrPageOutOfRange = errors.New("page out of range")

// CorruptDocumentError reports a file that neither the text parser nor the
// structural parser could read. It is fatal for that file only.
type CorruptDocumentError struct {
	Path string
	Err  error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("corrupt PDF %s: %v", e.Path, e.Err)
}

func (e *CorruptDocumentError) Unwrap() error {
	return e.Err
}
