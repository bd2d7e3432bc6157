package pdfoutline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/outline"
	"github.com/tsawler/pdfoutline/reader"
	"github.com/tsawler/pdfoutline/resolver"
	"github.com/tsawler/pdfoutline/text"
)

// Extractor provides a fluent interface for extracting outlines from PDFs.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string

	// Reader
	reader *reader.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool // true if reader has been opened

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// analysis is the per-document state shared by the terminal operations.
type analysis struct {
	profile   *lang.Profile
	detection lang.Detection
	lines     []model.LineRecord
	removed   int
	warnings  []Warning
}

// clone creates a shallow copy of the Extractor with a copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		reader:       e.reader,
		ownsReader:   e.ownsReader,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
		err:          e.err,
	}
}

// ensureReader opens the reader if not already open.
func (e *Extractor) ensureReader() error {
	if e.readerOpened {
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	r, err := reader.Open(e.filename)
	if err != nil {
		return err
	}
	e.reader = r
	e.ownsReader = true
	e.readerOpened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsReader && e.reader != nil {
		err := e.reader.Close()
		e.reader = nil
		e.ownsReader = false
		e.readerOpened = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Language selects the language profile by id or alias ("english", "ja").
// An unknown id fails the terminal operation with *lang.UnknownLanguageError.
//
// Example:
//
//	o, _, err := pdfoutline.Open("doc.pdf").Language("japanese").Outline(ctx)
func (e *Extractor) Language(id string) *Extractor {
	newExt := e.clone()
	newExt.options.language = id
	return newExt
}

// AutoDetect detects the document language from its text, or from an OCR
// pass over one page when the document has no text layer. The detected
// profile replaces the configured language.
//
// Example:
//
//	o, _, err := pdfoutline.Open("doc.pdf").AutoDetect().Outline(ctx)
func (e *Extractor) AutoDetect() *Extractor {
	newExt := e.clone()
	newExt.options.autoDetect = true
	return newExt
}

// Registry replaces the built-in language profiles.
func (e *Extractor) Registry(r *lang.Registry) *Extractor {
	newExt := e.clone()
	if r == nil {
		newExt.err = fmt.Errorf("nil language registry")
		return newExt
	}
	newExt.options.registry = r
	return newExt
}

// Resolver sets the page resolver, typically one configured with OCR.
// Without it pages are extracted from the text layer only.
func (e *Extractor) Resolver(r *resolver.Resolver) *Extractor {
	newExt := e.clone()
	newExt.options.resolver = r
	return newExt
}

// Classifier replaces the heading classifier.
func (e *Extractor) Classifier(c *layout.Classifier) *Extractor {
	newExt := e.clone()
	newExt.options.classifier = c
	return newExt
}

// Assembler replaces the outline assembler.
func (e *Extractor) Assembler(a *outline.Assembler) *Extractor {
	newExt := e.clone()
	newExt.options.assembler = a
	return newExt
}

// KeepRunningHeaders disables the removal of text repeated at the top or
// bottom of most pages.
func (e *Extractor) KeepRunningHeaders() *Extractor {
	newExt := e.clone()
	newExt.options.keepRunning = true
	return newExt
}

// SampleLanguages sets the Tesseract language codes ("eng+jpn") used for
// the detection OCR pass over a scanned document.
func (e *Extractor) SampleLanguages(codes string) *Extractor {
	newExt := e.clone()
	newExt.options.sampleLanguages = codes
	return newExt
}

// Logger sets the logger (default: slog.Default()).
func (e *Extractor) Logger(l *slog.Logger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// ============================================================================
// Terminal Operations (execute extraction and return results)
// ============================================================================

// Outline extracts the document outline. This is a terminal operation that
// closes the underlying reader.
//
// The error is non-nil only when the document cannot be processed at all:
// it cannot be opened (*reader.CorruptDocumentError), the language is
// unknown (*lang.UnknownLanguageError) or ctx ended. Page failures and an
// empty outline are reported as warnings.
//
// Example:
//
//	o, warnings, err := pdfoutline.Open("document.pdf").Outline(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, e := range o.Entries {
//	    fmt.Printf("%s %s (page %d)\n", e.Level, e.Text, e.Page)
//	}
func (e *Extractor) Outline(ctx context.Context) (*model.DocumentOutline, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	start := time.Now()

	if err := e.ensureReader(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	a, err := e.analyze(ctx)
	if err != nil {
		return nil, nil, err
	}

	stats := layout.ComputeFontStats(a.lines)
	candidates := e.options.classifierOrDefault().ClassifyAll(a.lines, a.profile, stats)

	out := e.options.assemblerOrDefault().Assemble(candidates, outline.Source{
		FileName:         e.reader.Path(),
		MetadataTitle:    e.reader.Title(),
		Language:         a.profile.ID,
		DetectedLanguage: a.detection.Language,
		Lines:            len(a.lines),
		FileSize:         e.reader.Size(),
	})
	out.Metadata.ProcessingTime = model.Round(time.Since(start).Seconds(), 3)

	warnings := a.warnings
	if len(out.Entries) == 0 {
		nh := &NoHeadingsFoundWarning{File: out.Metadata.SourceFile}
		warnings = append(warnings, Warning{Kind: WarningNoHeadings, Message: nh.Error(), Err: nh})
	}

	e.options.log().Debug("outline extracted",
		"file", e.reader.Path(),
		"language", a.profile.ID,
		"detected", a.detection.Language,
		"lines", len(a.lines),
		"candidates", len(candidates),
		"headings", len(out.Entries),
		"running_removed", a.removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, warnings, nil
}

// Lines returns the document's line records in reading order, after
// running header removal. This is a terminal operation that closes the
// underlying reader.
func (e *Extractor) Lines(ctx context.Context) ([]model.LineRecord, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureReader(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	a, err := e.analyze(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a.lines, a.warnings, nil
}

// PageCount returns the number of pages. This is a terminal operation that
// closes the underlying reader.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureReader(); err != nil {
		return 0, err
	}
	defer e.Close()
	return e.reader.NumPages(), nil
}

// analyze resolves every page, settles the language and removes running
// headers. Direct extraction runs first so its text can drive language
// detection; OCR then runs once per remaining page with the chosen
// profile's settings.
func (e *Extractor) analyze(ctx context.Context) (*analysis, error) {
	o := e.options
	res := o.resolverOrDefault()
	doc := e.reader

	results := make([]resolver.PageResult, doc.NumPages())
	for i := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[i] = res.Direct(doc, i+1)
	}

	a := &analysis{}
	if err := e.chooseLanguage(ctx, res, results, a); err != nil {
		return nil, err
	}

	if err := res.CompleteOCR(ctx, doc, results, a.profile.OCRCode, a.profile.OCR); err != nil {
		return nil, err
	}
	for _, r := range results {
		if w, ok := pageWarning(r); ok {
			a.warnings = append(a.warnings, w)
		}
	}

	pages := toPageLines(results)
	if !o.keepRunning && o.headerFooter != nil {
		pages, a.removed = o.headerFooter.Filter(pages)
	}
	a.lines = flatten(pages)
	return a, nil
}

// chooseLanguage sets the profile and detection of a. Detection always
// runs so the detected language can be reported; it selects the profile
// only with AutoDetect. A document without text is sampled with one OCR
// pass whose result is kept as that page's lines.
func (e *Extractor) chooseLanguage(ctx context.Context, res *resolver.Resolver, results []resolver.PageResult, a *analysis) error {
	o := e.options
	reg := o.registry

	id := o.language
	if id == "" {
		id = reg.DefaultID()
	}
	configured, err := reg.Get(id)
	if err != nil {
		return err
	}

	detector := lang.NewDetector(configured.ID)
	sample := sampleText(results, o.sampleRunes)
	a.detection = detector.Detect(sample, reg.List())

	if o.autoDetect && text.LetterCount(sample) == 0 && res.OCRAvailable() {
		for i := range results {
			if !results[i].NeedsOCR {
				continue
			}
			r, err := res.OCR(ctx, e.reader, results[i], o.sampleLanguages, configured.OCR)
			if err != nil {
				return err
			}
			results[i] = r
			if len(r.Lines) > 0 {
				a.detection = detector.Detect(lineText(r.Lines), reg.List())
			}
			o.log().Debug("sampled scanned page for language detection",
				"file", e.reader.Path(), "page", r.Page, "detected", a.detection.Language)
			break
		}
	}

	a.profile = configured
	if o.autoDetect {
		p, err := reg.Get(a.detection.Language)
		if err != nil {
			return err
		}
		a.profile = p
		if a.detection.Confidence <= lang.LowConfidence {
			a.warnings = append(a.warnings, Warning{
				Kind:    WarningLanguage,
				Message: fmt.Sprintf("language not detected, using %s", p.ID),
			})
		}
	}
	return nil
}
