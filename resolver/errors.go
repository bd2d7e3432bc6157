package resolver

import (
	"errors"
	"fmt"
	"time"

	"github.com/tsawler/pdfoutline/model"
)

// ErrNoText is recorded when OCR ran but recognized nothing.
var ErrNoText = errors.New("no text recognized")

// PageExtractionError records a page whose text could not be obtained from
// the given source. The page is kept, possibly empty.
type PageExtractionError struct {
	Page   int
	Source model.Source
	Err    error
}

func (e *PageExtractionError) Error() string {
	return fmt.Sprintf("page %d (%s): %v", e.Page, e.Source, e.Err)
}

func (e *PageExtractionError) Unwrap() error {
	return e.Err
}

// OCRTimeoutError records a page whose recognition exceeded its budget.
type OCRTimeoutError struct {
	Page   int
	Budget time.Duration
}

func (e *OCRTimeoutError) Error() string {
	return fmt.Sprintf("page %d: OCR exceeded %s", e.Page, e.Budget)
}
