// Package pdfoutline extracts a title and a heading outline from PDF
// files, using the text layer where it is usable and OCR where it is not.
//
// Basic usage:
//
//	outline, warnings, err := pdfoutline.Open("document.pdf").Outline(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfoutline.FormatWarnings(warnings))
//	}
//
// With options:
//
//	outline, _, err := pdfoutline.Open("scan.pdf").
//	    AutoDetect().
//	    Resolver(ocrResolver).
//	    Outline(ctx)
//
// For batches of files see package batch; the lower-level packages (reader,
// resolver, layout, outline) are available for custom pipelines.
package pdfoutline

import (
	"github.com/tsawler/pdfoutline/reader"
)

// Open returns an Extractor for the PDF at filename. The file is opened by
// the first terminal operation, which also closes it.
//
// Example:
//
//	outline, warnings, err := pdfoutline.Open("document.pdf").Outline(ctx)
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an already-opened reader.Reader.
// The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	outline, warnings, err := pdfoutline.FromReader(r).Outline(ctx)
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		filename:     r.Path(),
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdfoutline.Must(pdfoutline.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustOutline wraps a call to Outline() or Lines() and panics if the error
// is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	o := pdfoutline.MustOutline(pdfoutline.Open("document.pdf").Outline(ctx))
func MustOutline[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
