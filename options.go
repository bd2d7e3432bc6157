package pdfoutline

import (
	"log/slog"

	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/outline"
	"github.com/tsawler/pdfoutline/resolver"
)

// defaultSampleLanguages are the Tesseract codes used to OCR a sample page
// of a scanned document whose language is being detected.
const defaultSampleLanguages = "eng+jpn+chi_sim+kor+ara+hin+rus"

// defaultSampleRunes bounds the text handed to the language detector.
const defaultSampleRunes = 20000

// ExtractOptions holds configuration for outline extraction.
type ExtractOptions struct {
	// Language selection; an empty language means the registry default
	language   string
	autoDetect bool
	registry   *lang.Registry

	// Pipeline stages; nil uses the defaults
	resolver   *resolver.Resolver
	classifier *layout.Classifier
	assembler  *outline.Assembler

	// Running headers and footers are removed unless keepRunning is set
	headerFooter *layout.HeaderFooterDetector
	keepRunning  bool

	sampleLanguages string
	sampleRunes     int

	logger *slog.Logger
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		language:        "",
		autoDetect:      false,
		registry:        lang.Default(),
		headerFooter:    layout.NewHeaderFooterDetector(),
		sampleLanguages: defaultSampleLanguages,
		sampleRunes:     defaultSampleRunes,
	}
}

// clone creates a copy of ExtractOptions. The pipeline stages are
// immutable and safe to share.
func (o ExtractOptions) clone() ExtractOptions {
	return o
}

func (o ExtractOptions) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

func (o ExtractOptions) resolverOrDefault() *resolver.Resolver {
	if o.resolver != nil {
		return o.resolver
	}
	return resolver.New(resolver.WithLogger(o.log()))
}

func (o ExtractOptions) classifierOrDefault() *layout.Classifier {
	if o.classifier != nil {
		return o.classifier
	}
	return layout.NewClassifier()
}

func (o ExtractOptions) assemblerOrDefault() *outline.Assembler {
	if o.assembler != nil {
		return o.assembler
	}
	return outline.New()
}
