package pdfoutline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/pdfoutline/resolver"
)

// WarningKind classifies a non-fatal issue.
type WarningKind int

const (
	// WarningPageExtraction marks a page whose text could not be read.
	WarningPageExtraction WarningKind = iota
	// WarningOCRTimeout marks a page whose recognition ran out of time.
	WarningOCRTimeout
	// WarningNoHeadings marks a document with an empty outline.
	WarningNoHeadings
	// WarningLanguage marks a language detection with low confidence.
	WarningLanguage
)

func (k WarningKind) String() string {
	switch k {
	case WarningPageExtraction:
		return "page-extraction"
	case WarningOCRTimeout:
		return "ocr-timeout"
	case WarningNoHeadings:
		return "no-headings"
	case WarningLanguage:
		return "language"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal issue found while extracting an outline. The
// outline is still valid but may be incomplete.
type Warning struct {
	Kind    WarningKind
	Page    int // 0 when the warning concerns the whole document
	Message string
	Err     error
}

// String returns the warning message, prefixed with its page.
func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s", w.Page, w.Message)
	}
	return w.Message
}

// FormatWarnings joins warnings into a single line.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

// NoHeadingsFoundWarning reports a document without headings. It is not a
// failure: an empty outline is a valid result.
type NoHeadingsFoundWarning struct {
	File string
}

func (w *NoHeadingsFoundWarning) Error() string {
	return fmt.Sprintf("no headings found in %s", w.File)
}

// pageWarning converts a recovered page failure into a Warning.
func pageWarning(res resolver.PageResult) (Warning, bool) {
	if res.Warning == nil {
		return Warning{}, false
	}
	w := Warning{Kind: WarningPageExtraction, Page: res.Page, Err: res.Warning}
	var (
		te *resolver.OCRTimeoutError
		pe *resolver.PageExtractionError
	)
	switch {
	case errors.As(res.Warning, &te):
		w.Kind = WarningOCRTimeout
		w.Message = fmt.Sprintf("OCR exceeded %s", te.Budget)
	case errors.As(res.Warning, &pe):
		w.Message = fmt.Sprintf("%s extraction failed: %v", pe.Source, pe.Err)
	default:
		w.Message = res.Warning.Error()
	}
	return w, true
}
