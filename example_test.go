package pdfoutline_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/batch"
	"github.com/tsawler/pdfoutline/config"
	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/output"
	"github.com/tsawler/pdfoutline/reader"
)

// These examples show typical usage. They have no Output sections because
// they need real files.

func Example_outline() {
	ctx := context.Background()
	o, warnings, err := pdfoutline.Open("document.pdf").Outline(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(o.Title)
	for _, e := range o.Entries {
		fmt.Printf("%s %s (page %d)\n", e.Level, e.Text, e.Page)
	}
	for _, w := range warnings {
		fmt.Println("Warning:", w)
	}
}

func Example_language() {
	ctx := context.Background()

	// Japanese rules and OCR settings
	o, _, err := pdfoutline.Open("manual.pdf").Language("ja").Outline(ctx)
	_ = o

	var unknown *lang.UnknownLanguageError
	if errors.As(err, &unknown) {
		fmt.Println("supported languages:", unknown.Known)
	}

	// Pick the profile from the document text
	o, _, err = pdfoutline.Open("unknown.pdf").AutoDetect().Outline(ctx)
	if err == nil {
		fmt.Println(o.Metadata.Language, o.Metadata.DetectedLanguage)
	}
}

func Example_writeJSON() {
	o := pdfoutline.MustOutline(pdfoutline.Open("document.pdf").Outline(context.Background()))

	w, err := output.NewWriter("out")
	if err != nil {
		log.Fatal(err)
	}
	path, err := w.Write("document.pdf", o)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("wrote", path)
}

func Example_corruptFile() {
	_, _, err := pdfoutline.Open("broken.pdf").Outline(context.Background())

	var corrupt *reader.CorruptDocumentError
	if errors.As(err, &corrupt) {
		fmt.Println("skipping", corrupt.Path)
	}
}

func Example_pipeline() {
	cfg := config.DefaultConfig()
	cfg.AutoDetect = true
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	p, err := pdfoutline.NewPipeline(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()
	if p.OCRError != nil {
		logger.Warn("scanned pages will be skipped", "err", p.OCRError)
	}

	o, warnings, err := p.Extract(context.Background(), "scan.pdf")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(o.Title, pdfoutline.FormatWarnings(warnings))
}

func Example_batch() {
	p, err := pdfoutline.NewPipeline(config.DefaultConfig(), nil)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	orch, err := batch.New(batch.Options{
		Extract: p.Extract,
		Workers: 4,
		OnResult: func(r batch.Result) {
			fmt.Println(batch.Describe(r))
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	results := orch.Process(context.Background(), []string{"a.pdf", "b.pdf"})
	for _, r := range batch.Failures(results) {
		fmt.Println(r.Err)
	}
}
