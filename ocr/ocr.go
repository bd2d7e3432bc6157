//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// LibraryEnabled reports whether the Tesseract library binding is compiled in.
const LibraryEnabled = true

// libraryEngine wraps a gosseract client. It requires Tesseract and its
// language data to be installed. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
type libraryEngine struct {
	client *gosseract.Client
}

// NewLibraryEngine creates an engine backed by the Tesseract C API.
// The engine should be closed when no longer needed to release resources.
func NewLibraryEngine() (Engine, error) {
	return &libraryEngine{client: gosseract.NewClient()}, nil
}

// Recognize implements Engine. The underlying call cannot be interrupted;
// ctx is only checked before it starts.
func (e *libraryEngine) Recognize(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := e.client.SetImageFromBytes(req.Image); err != nil {
		return Result{}, fmt.Errorf("failed to set image: %w", err)
	}
	if err := e.client.SetLanguage(strings.Split(req.Languages, "+")...); err != nil {
		return Result{}, fmt.Errorf("failed to set language %q: %w", req.Languages, err)
	}
	if err := e.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return Result{}, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := e.client.SetWhitelist(req.Whitelist); err != nil {
		return Result{}, fmt.Errorf("failed to set whitelist: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, fmt.Errorf("OCR failed: %w", err)
	}
	var res Result
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" {
			continue
		}
		res.Words = append(res.Words, Word{Text: b.Word, Box: b.Box, Confidence: b.Confidence})
	}
	if len(res.Words) > 0 {
		return res, nil
	}

	text, err := e.client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("OCR failed: %w", err)
	}
	res.Text = strings.TrimSpace(text)
	return res, nil
}

// Close releases OCR resources.
func (e *libraryEngine) Close() error {
	if e.client != nil {
		err := e.client.Close()
		e.client = nil
		return err
	}
	return nil
}
