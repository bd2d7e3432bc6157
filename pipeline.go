package pdfoutline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tsawler/pdfoutline/cache"
	"github.com/tsawler/pdfoutline/config"
	"github.com/tsawler/pdfoutline/internal/command"
	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/ocr"
	"github.com/tsawler/pdfoutline/outline"
	"github.com/tsawler/pdfoutline/raster"
	"github.com/tsawler/pdfoutline/resolver"
)

// Version is the module version reported by the CLI and mixed into cache
// fingerprints.
const Version = "0.3.0"

// minEmbeddedImageArea is the pixel area below which embedded images are
// not considered page scans.
const minEmbeddedImageArea = 200 * 200

// Pipeline holds the stages built from a configuration. The stages are
// read-only and shared by every file of a batch.
type Pipeline struct {
	Registry  *lang.Registry
	Resolver  *resolver.Resolver
	Assembler *outline.Assembler

	// OCRError explains why OCR is unavailable; nil when it is available.
	OCRError error

	cfg    *config.Config
	pool   *ocr.Pool
	logger *slog.Logger
}

// NewPipeline builds the language registry, the page resolver (with OCR
// when an engine can run) and the assembler described by cfg. An unknown
// configured language fails with *lang.UnknownLanguageError. A missing OCR
// engine is not an error; scanned pages then yield warnings.
func NewPipeline(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{cfg: cfg, logger: logger}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Language != "" {
		if _, err := reg.Get(cfg.Language); err != nil {
			return nil, err
		}
	}
	p.Registry = reg

	rc := resolver.DefaultConfig()
	rc.MinCharDensity = cfg.OCR.MinCharDensity
	rc.MaxGarbledRatio = cfg.OCR.MaxGarbledRatio
	rc.PageTimeout = cfg.OCR.PageTimeout
	rc.PageWorkers = cfg.PageWorkers
	rc.DPI = cfg.OCR.DPI

	opts := []resolver.Option{resolver.WithConfig(rc), resolver.WithLogger(logger)}
	ocrOpts, err := p.ocrOptions()
	p.OCRError = err
	if err != nil && cfg.OCREngine() != config.Off {
		logger.Warn("OCR unavailable, scanned pages will be skipped", "engine", cfg.OCREngine(), "err", err)
	}
	p.Resolver = resolver.New(append(opts, ocrOpts...)...)

	a := cfg.Assembly
	p.Assembler = outline.NewWithConfig(outline.Config{
		AcceptThreshold:  a.AcceptThreshold,
		RelaxedThreshold: a.RelaxedThreshold,
		AbundantCount:    a.AbundantCount,
		MinSurvivors:     a.MinSurvivors,
		MinScore:         a.MinScore,
		MergeGapRatio:    a.MergeGapRatio,
	})
	return p, nil
}

func loadRegistry(cfg *config.Config) (*lang.Registry, error) {
	reg := lang.Default()
	if cfg.ProfilesFile != "" {
		f, err := os.Open(cfg.ProfilesFile)
		if err != nil {
			return nil, fmt.Errorf("open profiles: %w", err)
		}
		defer f.Close()
		if reg, err = lang.LoadRegistry(f); err != nil {
			return nil, fmt.Errorf("load profiles %s: %w", cfg.ProfilesFile, err)
		}
	}
	if cfg.DefaultLanguage != "" && cfg.DefaultLanguage != reg.DefaultID() {
		return lang.NewRegistry(cfg.DefaultLanguage, reg.List()...)
	}
	return reg, nil
}

// ocrOptions builds the engine pool and rasterizer. The returned error is
// the reason OCR is off; the options are then empty.
func (p *Pipeline) ocrOptions() ([]resolver.Option, error) {
	cfg := p.cfg
	runner := command.Exec{Logger: p.logger}
	mode := ocr.Mode(cfg.OCREngine())

	// NewFactory trusts an injected runner, so look the binary up here
	tesseract := binOr(cfg.OCR.Tesseract, "tesseract")
	usesCLI := mode == ocr.ModeCLI || (!ocr.LibraryEnabled && mode == ocr.ModeAuto)
	if usesCLI && !command.Available(tesseract) {
		return nil, fmt.Errorf("%w: %s not found", ocr.ErrUnavailable, tesseract)
	}
	factory, err := ocr.NewFactory(mode, ocr.CLIEngine{
		Bin:         tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
		Runner:      runner,
	})
	if err != nil {
		return nil, err
	}

	var (
		rasterizer raster.Rasterizer
		opts       []resolver.Option
	)
	bin := binOr(cfg.OCR.Pdftoppm, "pdftoppm")
	pdftoppm := raster.Pdftoppm{Bin: bin, Runner: runner}
	switch cfg.OCR.Rasterizer {
	case config.Pdftoppm:
		if !command.Available(bin) {
			return nil, fmt.Errorf("%w: %s not found", ocr.ErrUnavailable, bin)
		}
		rasterizer = pdftoppm
	case config.Embedded:
		opts = append(opts, resolver.WithEmbeddedImages(minEmbeddedImageArea))
	default:
		if command.Available(bin) {
			rasterizer = pdftoppm
		} else {
			p.logger.Info("pdftoppm not found, OCR limited to embedded page images", "bin", bin)
		}
		opts = append(opts, resolver.WithEmbeddedImages(minEmbeddedImageArea))
	}

	p.pool = ocr.NewPool(factory, cfg.OCR.PoolSize)
	return append(opts, resolver.WithOCR(rasterizer, p.pool)), nil
}

func binOr(bin, fallback string) string {
	if bin == "" {
		return fallback
	}
	return bin
}

// Extractor returns an Extractor for path configured with the pipeline's
// stages and language settings.
func (p *Pipeline) Extractor(path string) *Extractor {
	e := Open(path).
		Registry(p.Registry).
		Resolver(p.Resolver).
		Assembler(p.Assembler).
		SampleLanguages(p.cfg.OCR.SampleLanguages).
		Logger(p.logger)
	if p.cfg.Language != "" {
		e = e.Language(p.cfg.Language)
	}
	if p.cfg.AutoDetect {
		e = e.AutoDetect()
	}
	return e
}

// Extract runs the pipeline on one file.
func (p *Pipeline) Extract(ctx context.Context, path string) (*model.DocumentOutline, []Warning, error) {
	return p.Extractor(path).Outline(ctx)
}

// Fingerprint identifies the settings that change extraction results, for
// use as a cache key.
func (p *Pipeline) Fingerprint() (string, error) {
	c := p.cfg
	return cache.Fingerprint(struct {
		Version         string
		Language        string
		AutoDetect      bool
		DefaultLanguage string
		ProfilesFile    string
		OCR             bool
		DPI             float64
		MinCharDensity  float64
		MaxGarbledRatio float64
		Assembly        config.AssemblyConfig
	}{
		Version:         Version,
		Language:        c.Language,
		AutoDetect:      c.AutoDetect,
		DefaultLanguage: p.Registry.DefaultID(),
		ProfilesFile:    c.ProfilesFile,
		OCR:             p.Resolver.OCRAvailable(),
		DPI:             c.OCR.DPI,
		MinCharDensity:  c.OCR.MinCharDensity,
		MaxGarbledRatio: c.OCR.MaxGarbledRatio,
		Assembly:        c.Assembly,
	})
}

// Close releases the OCR engines.
func (p *Pipeline) Close() error {
	if p.pool != nil {
		return p.pool.Close()
	}
	return nil
}
