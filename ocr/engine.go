package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrOCRNotEnabled is returned by NewLibraryEngine when the Tesseract
// library binding was not compiled in. Rebuild with -tags ocr, or use the
// command line engine.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// ErrUnavailable is returned when no OCR engine can be constructed.
var ErrUnavailable = errors.New("no OCR engine available")

// Word is one recognized word. Box is in image pixels; Confidence is
// Tesseract's 0-100 score.
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Request describes one recognition call.
type Request struct {
	// Image is an encoded (PNG) page image.
	Image []byte

	// Languages are Tesseract language codes joined by '+', e.g. "jpn+eng".
	Languages string

	// Whitelist restricts the characters that may be recognized.
	Whitelist string
}

// Result is the output of one recognition call. Text is only set when the
// engine returned no word boxes.
type Result struct {
	Words []Word
	Text  string
}

// Engine recognizes text in page images. An engine is used by one
// goroutine at a time; the Pool enforces this.
type Engine interface {
	Recognize(ctx context.Context, req Request) (Result, error)
	Close() error
}

// Factory creates a new engine.
type Factory func() (Engine, error)
