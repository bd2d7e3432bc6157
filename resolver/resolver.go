package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/ocr"
	"github.com/tsawler/pdfoutline/raster"
	"github.com/tsawler/pdfoutline/reader"
	"github.com/tsawler/pdfoutline/text"
)

// plainTextConfidence is assigned to lines from engines that return text
// without word boxes or scores.
const plainTextConfidence = 0.5

// Document is the page access the resolver needs. *reader.Reader
// implements it.
type Document interface {
	Path() string
	NumPages() int
	PageBox(page int) (reader.PageBox, error)
	Fragments(page int) ([]text.Fragment, error)
}

// PageResult is the resolved text of one page.
type PageResult struct {
	Page   int
	Height float64
	Lines  []model.LineRecord
	Source model.Source

	// NeedsOCR is set by Direct when the page's text layer is too sparse or
	// too garbled to trust.
	NeedsOCR bool

	// Density is the direct text density in non-space characters per
	// square inch; Garbled is the share of replacement characters.
	Density float64
	Garbled float64

	// Warning is a recovered *PageExtractionError or *OCRTimeoutError.
	Warning error
}

// Config holds the OCR fallback thresholds and budgets
type Config struct {
	// MinCharDensity is the direct text density, in non-space characters
	// per square inch, below which a page is recognized with OCR.
	// Default: 0.1
	MinCharDensity float64

	// MaxGarbledRatio is the share of U+FFFD runes above which direct
	// text is distrusted.
	// Default: 0.05
	MaxGarbledRatio float64

	// PageTimeout bounds the OCR of one page; 0 means no budget.
	PageTimeout time.Duration

	// PageWorkers is the number of pages recognized in parallel.
	// Default: 2
	PageWorkers int

	// DPI overrides the language profile's raster resolution when > 0.
	DPI float64

	// MaxUpscale and AdaptiveWindow tune image preprocessing.
	MaxUpscale     float64
	AdaptiveWindow int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	o := raster.DefaultOptions()
	return Config{
		MinCharDensity:  0.1,
		MaxGarbledRatio: 0.05,
		PageTimeout:     2 * time.Minute,
		PageWorkers:     2,
		MaxUpscale:      o.MaxUpscale,
		AdaptiveWindow:  o.AdaptiveWindow,
	}
}

// Resolver decides, per page, between direct extraction and OCR and
// produces line records. It is safe for concurrent use.
type Resolver struct {
	config     Config
	lines      *layout.LineBuilder
	rasterizer raster.Rasterizer
	embedded   bool
	minImage   int
	pool       *ocr.Pool
	logger     *slog.Logger
}

// Option configures the resolver
type Option func(*Resolver)

// WithConfig replaces the default configuration.
func WithConfig(c Config) Option {
	return func(r *Resolver) {
		r.config = c
	}
}

// WithOCR enables the OCR path with the given rasterizer and engine pool.
// The rasterizer may be nil when WithEmbeddedImages is set.
func WithOCR(rasterizer raster.Rasterizer, pool *ocr.Pool) Option {
	return func(r *Resolver) {
		r.rasterizer = rasterizer
		r.pool = pool
	}
}

// WithEmbeddedImages falls back to the largest image embedded in a page
// when the document implements raster.ImageSource. Images smaller than
// minArea pixels are ignored.
func WithEmbeddedImages(minArea int) Option {
	return func(r *Resolver) {
		r.embedded = true
		r.minImage = minArea
	}
}

// WithLineBuilder replaces the default line builder.
func WithLineBuilder(b *layout.LineBuilder) Option {
	return func(r *Resolver) {
		r.lines = b
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a resolver. Without WithOCR every page is extracted directly.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		config: DefaultConfig(),
		lines:  layout.NewLineBuilder(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.config.PageWorkers < 1 {
		r.config.PageWorkers = 1
	}
	return r
}

// OCRAvailable reports whether pages can be recognized.
func (r *Resolver) OCRAvailable() bool {
	return r.pool != nil && (r.rasterizer != nil || r.embedded)
}

// rasterizerFor returns the rasterizer chain for doc.
func (r *Resolver) rasterizerFor(doc Document) (raster.Rasterizer, bool) {
	var chain raster.Chain
	if r.rasterizer != nil {
		chain = append(chain, r.rasterizer)
	}
	if src, ok := doc.(raster.ImageSource); ok && r.embedded {
		chain = append(chain, raster.Embedded{Source: src, MinArea: r.minImage})
	}
	switch len(chain) {
	case 0:
		return nil, false
	case 1:
		return chain[0], true
	}
	return chain, true
}

// ResolvePage resolves a single page (1-based): direct extraction first,
// OCR when the text layer is insufficient. Only cancellation of ctx is
// returned as an error; page failures are recorded in the result.
func (r *Resolver) ResolvePage(ctx context.Context, doc Document, page int, p *lang.Profile) (PageResult, error) {
	if err := ctx.Err(); err != nil {
		return PageResult{}, err
	}
	res := r.Direct(doc, page)
	if !res.NeedsOCR {
		return res, nil
	}
	return r.OCR(ctx, doc, res, p.OCRCode, p.OCR)
}

// Resolve resolves every page of doc. Direct extraction runs page by page;
// pages that need OCR are then recognized in parallel.
func (r *Resolver) Resolve(ctx context.Context, doc Document, p *lang.Profile) ([]PageResult, error) {
	results := make([]PageResult, doc.NumPages())
	for i := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[i] = r.Direct(doc, i+1)
	}
	if err := r.CompleteOCR(ctx, doc, results, p.OCRCode, p.OCR); err != nil {
		return nil, err
	}
	return results, nil
}

// Direct extracts a page from its text layer and flags it for OCR when the
// text is too sparse or garbled.
func (r *Resolver) Direct(doc Document, page int) PageResult {
	box, err := doc.PageBox(page)
	if err != nil || box.Width() <= 0 || box.Height() <= 0 {
		box = reader.LetterBox
	}
	res := PageResult{Page: page, Height: box.Height(), Source: model.SourceDirect}

	frags, err := doc.Fragments(page)
	if err != nil {
		r.logger.Warn("direct extraction failed", "file", doc.Path(), "page", page, "err", err)
		res.Warning = &PageExtractionError{Page: page, Source: model.SourceDirect, Err: err}
		res.NeedsOCR = true
		return res
	}

	var chars int
	var sample []rune
	for _, f := range frags {
		for _, c := range f.Text {
			if !unicode.IsSpace(c) {
				chars++
				sample = append(sample, c)
			}
		}
	}
	area := box.Width() * box.Height() / (72 * 72)
	res.Density = float64(chars) / area
	res.Garbled = text.GarbledRatio(string(sample))

	if res.Garbled > r.config.MaxGarbledRatio {
		res.NeedsOCR = true
		r.logger.Debug("garbled text layer", "file", doc.Path(), "page", page, "garbled", res.Garbled)
		return res
	}
	res.Lines = r.lines.Build(page, frags, box.Width(), box.Height())
	if res.Density < r.config.MinCharDensity {
		res.NeedsOCR = true
		r.logger.Debug("sparse text layer", "file", doc.Path(), "page", page, "density", res.Density)
	}
	return res
}

// CompleteOCR recognizes, in parallel, every result flagged NeedsOCR and
// replaces it in place.
func (r *Resolver) CompleteOCR(ctx context.Context, doc Document, results []PageResult, langs string, s lang.OCRSettings) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.PageWorkers)
	for i := range results {
		if !results[i].NeedsOCR {
			continue
		}
		g.Go(func() error {
			res, err := r.OCR(gctx, doc, results[i], langs, s)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// OCR recognizes the page of a direct result with the given Tesseract
// languages. When recognition fails the direct lines, if any, are kept and
// the failure is recorded as the result's warning. Only cancellation of ctx
// is returned as an error.
func (r *Resolver) OCR(ctx context.Context, doc Document, direct PageResult, langs string, s lang.OCRSettings) (PageResult, error) {
	page := direct.Page
	fallback := direct
	fallback.NeedsOCR = false

	rasterizer, ok := r.rasterizerFor(doc)
	if !ok || r.pool == nil {
		fallback.Warning = &PageExtractionError{Page: page, Source: model.SourceOCR, Err: ocr.ErrUnavailable}
		return fallback, nil
	}

	pctx, cancel := ctx, context.CancelFunc(func() {})
	if r.config.PageTimeout > 0 {
		pctx, cancel = context.WithTimeout(ctx, r.config.PageTimeout)
	}
	defer cancel()

	start := time.Now()
	lines, err := r.recognize(pctx, rasterizer, doc, page, direct.Height, langs, s)
	switch {
	case ctx.Err() != nil:
		return PageResult{}, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		r.logger.Warn("OCR timed out", "file", doc.Path(), "page", page, "budget", r.config.PageTimeout)
		fallback.Warning = &OCRTimeoutError{Page: page, Budget: r.config.PageTimeout}
		return fallback, nil
	case err != nil:
		r.logger.Warn("OCR failed", "file", doc.Path(), "page", page, "err", err)
		fallback.Warning = &PageExtractionError{Page: page, Source: model.SourceOCR, Err: err}
		return fallback, nil
	case len(lines) == 0:
		fallback.Warning = &PageExtractionError{Page: page, Source: model.SourceOCR, Err: ErrNoText}
		return fallback, nil
	}

	r.logger.Debug("page recognized", "file", doc.Path(), "page", page, "lines", len(lines),
		"languages", langs, "duration_ms", time.Since(start).Milliseconds())
	return PageResult{
		Page:    page,
		Height:  direct.Height,
		Lines:   lines,
		Source:  model.SourceOCR,
		Density: direct.Density,
		Garbled: direct.Garbled,
	}, nil
}

func (r *Resolver) recognize(ctx context.Context, rasterizer raster.Rasterizer, doc Document, page int, height float64, langs string, s lang.OCRSettings) ([]model.LineRecord, error) {
	box, err := doc.PageBox(page)
	if err != nil || box.Width() <= 0 || box.Height() <= 0 {
		box = reader.LetterBox
	}

	opts := raster.DefaultOptions()
	if s.DPI > 0 {
		opts.DPI = s.DPI
	}
	if r.config.DPI > 0 {
		opts.DPI = r.config.DPI
	}
	if s.Binarize != "" {
		opts.Binarize = s.Binarize
	}
	if r.config.MaxUpscale > 0 {
		opts.MaxUpscale = r.config.MaxUpscale
	}
	if r.config.AdaptiveWindow > 0 {
		opts.AdaptiveWindow = r.config.AdaptiveWindow
	}

	img, err := rasterizer.Rasterize(ctx, raster.Request{Path: doc.Path(), Page: page, Box: box, DPI: opts.DPI})
	if err != nil {
		return nil, err
	}
	defer img.Close()

	raster.Preprocess(img, opts)
	bounds := img.Image.Bounds()

	data, err := raster.EncodePNG(img.Image)
	if err != nil {
		return nil, err
	}
	res, err := r.pool.Recognize(ctx, ocr.Request{Image: data, Languages: langs, Whitelist: s.Whitelist})
	if err != nil {
		return nil, err
	}

	var lines []ocr.Line
	if len(res.Words) > 0 {
		lines = ocr.GroupLines(res.Words, ocr.GroupOptions{
			MinWordConfidence: s.MinWordConfidence,
			Tolerance:         s.LineTolerance,
			NoSpaces:          s.NoSpaces,
		})
	} else if res.Text != "" {
		lines = ocr.TextLines(res.Text, bounds, plainTextConfidence)
	}

	records := make([]model.LineRecord, 0, len(lines))
	for i, l := range lines {
		records = append(records, model.LineRecord{
			Text:       l.Text,
			Page:       page,
			Index:      i,
			BBox:       img.ToPoints(l.Box),
			Source:     model.SourceOCR,
			Confidence: l.Confidence,
			RTL:        text.DetectDirection(l.Text) == text.RTL,
			PageWidth:  box.Width(),
		})
	}
	layout.AssignSpacing(records, height)
	return records, nil
}
