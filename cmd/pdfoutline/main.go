// Command pdfoutline writes a JSON outline for every PDF in a directory, or
// for a single file.
//
//	pdfoutline -input ./pdfs -output ./out -auto-detect
//	pdfoutline -file report.pdf -language japanese -output ./out
//
// Settings come from defaults, then the -config YAML file, then
// PDFOUTLINE_* environment variables, then flags. The exit status is 0
// when every file succeeded, 2 when some failed and 1 when the run could
// not start.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language/display"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/batch"
	"github.com/tsawler/pdfoutline/cache"
	"github.com/tsawler/pdfoutline/config"
	"github.com/tsawler/pdfoutline/format"
	"github.com/tsawler/pdfoutline/lang"
	"github.com/tsawler/pdfoutline/output"
)

const (
	exitOK      = 0
	exitFatal   = 1
	exitPartial = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// printError prints an error message to stderr.
func printError(w io.Writer, msg string, args ...any) {
	fmt.Fprintf(w, "pdfoutline: "+msg+"\n", args...)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pdfoutline", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath    = fs.String("config", "", "YAML configuration file")
		listLanguages = fs.Bool("list-languages", false, "list the supported languages and exit")
		version       = fs.Bool("version", false, "print the version and exit")

		input      = fs.String("input", "", "directory of PDF files")
		outputDir  = fs.String("output", "", "directory for JSON outlines")
		file       = fs.String("file", "", "process a single PDF instead of a directory")
		language   = fs.String("language", "", "language profile id or alias")
		autoDetect = fs.Bool("auto-detect", false, "detect the language of each file")
		workers    = fs.Int("workers", 0, "files processed in parallel")
		verbose    = fs.Bool("verbose", false, "debug logging")
		quiet      = fs.Bool("quiet", false, "log warnings and errors only")
		logFile    = fs.String("log-file", "", "also write logs to this file")
		logFormat  = fs.String("log-format", "", "log format: text or json")
		ocrEngine  = fs.String("ocr", "", "OCR engine: auto, library, cli or off")
		cachePath  = fs.String("cache", "", "SQLite result cache")
		reportPath = fs.String("report", "", "write a JSON batch summary")
		reportXLSX = fs.String("report-xlsx", "", "write an XLSX batch summary")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFatal
	}

	if *version {
		fmt.Fprintf(stdout, "pdfoutline %s\n", pdfoutline.Version)
		return exitOK
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			printError(stderr, "%v", err)
			return exitFatal
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		printError(stderr, "%v", err)
		return exitFatal
	}

	// Flags given on the command line win
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputDir = *input
		case "output":
			cfg.OutputDir = *outputDir
		case "file":
			cfg.SingleFile = *file
		case "language":
			cfg.Language = *language
		case "auto-detect":
			cfg.AutoDetect = *autoDetect
		case "workers":
			cfg.Workers = *workers
		case "verbose":
			cfg.Verbose = *verbose
		case "quiet":
			cfg.Quiet = *quiet
		case "log-file":
			cfg.LogFile = *logFile
		case "log-format":
			cfg.LogFormat = *logFormat
		case "ocr":
			cfg.OCR.Engine = *ocrEngine
			cfg.OCR.Enabled = *ocrEngine != config.Off
		case "cache":
			cfg.CachePath = *cachePath
		case "report":
			cfg.ReportPath = *reportPath
		case "report-xlsx":
			cfg.ReportXLSX = *reportXLSX
		}
	})

	if *listLanguages {
		if err := printLanguages(stdout, cfg); err != nil {
			printError(stderr, "%v", err)
			return exitFatal
		}
		return exitOK
	}

	if err := cfg.Validate(); err != nil {
		printError(stderr, "invalid configuration: %v", err)
		return exitFatal
	}

	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		printError(stderr, "%v", err)
		return exitFatal
	}
	defer closeLog()

	return process(ctx, cfg, logger, stdout, stderr)
}

func process(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) int {
	files, err := inputFiles(cfg)
	if err != nil {
		printError(stderr, "%v", err)
		return exitFatal
	}
	if len(files) == 0 {
		logger.Warn("no PDF files found", "input", cfg.InputDir)
	}

	writer, err := output.NewWriter(cfg.OutputDir)
	if err != nil {
		printError(stderr, "%v", err)
		return exitFatal
	}

	pipeline, err := pdfoutline.NewPipeline(cfg, logger)
	if err != nil {
		printError(stderr, "%v", err)
		return exitFatal
	}
	defer pipeline.Close()

	opts := batch.Options{
		Extract:      pipeline.Extract,
		Workers:      cfg.Workers,
		BatchTimeout: cfg.BatchTimeout,
		FileTimeout:  cfg.FileTimeout,
		Logger:       logger,
	}

	if cfg.CachePath != "" {
		c, err := cache.Open(cfg.CachePath)
		if err != nil {
			printError(stderr, "%v", err)
			return exitFatal
		}
		defer c.Close()
		fp, err := pipeline.Fingerprint()
		if err != nil {
			printError(stderr, "%v", err)
			return exitFatal
		}
		opts.Cache, opts.Fingerprint = c, fp
	}

	// Outlines are written as files finish; a write failure fails the file
	var (
		mu          sync.Mutex
		writeFailed = make(map[string]error)
	)
	opts.OnResult = func(r batch.Result) {
		mu.Lock()
		defer mu.Unlock()
		if r.OK() {
			if _, err := writer.Write(r.Path, r.Outline); err != nil {
				logger.Error("cannot write outline", "file", r.Path, "err", err)
				writeFailed[r.Path] = err
			}
		}
		if !cfg.Quiet {
			fmt.Fprintln(stdout, batch.Describe(r))
		}
	}

	orch, err := batch.New(opts)
	if err != nil {
		printError(stderr, "%v", err)
		return exitFatal
	}

	started := time.Now()
	results := orch.Process(ctx, files)
	for path, werr := range writeFailed {
		r := results[path]
		r.Outline = nil
		r.Err = &batch.ExtractionError{Path: path, Kind: batch.KindIO, Err: werr}
		results[path] = r
	}

	summary := batch.Summarize(orch.RunID(), started, results)
	if cfg.ReportPath != "" {
		if err := summary.WriteJSON(cfg.ReportPath); err != nil {
			logger.Error("cannot write report", "path", cfg.ReportPath, "err", err)
		}
	}
	if cfg.ReportXLSX != "" {
		if err := summary.WriteXLSX(cfg.ReportXLSX); err != nil {
			logger.Error("cannot write report", "path", cfg.ReportXLSX, "err", err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintf(stdout, "%d files, %d ok, %d failed (%s) in %s\n",
			summary.Total, summary.Succeeded, summary.Failed, summary.InputSize,
			time.Since(started).Round(time.Millisecond))
	}
	if summary.Failed > 0 {
		return exitPartial
	}
	return exitOK
}

func inputFiles(cfg *config.Config) ([]string, error) {
	if cfg.SingleFile != "" {
		return format.Inputs(cfg.SingleFile)
	}
	return format.Inputs(cfg.InputDir)
}

func printLanguages(w io.Writer, cfg *config.Config) error {
	reg := lang.Default()
	if cfg.ProfilesFile != "" {
		f, err := os.Open(cfg.ProfilesFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if reg, err = lang.LoadRegistry(f); err != nil {
			return err
		}
	}

	names := display.English.Tags()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTAG\tOCR\tALIASES")
	for _, p := range reg.List() {
		name := p.Name
		if name == "" {
			name = names.Name(p.LanguageTag())
		}
		id := p.ID
		if id == reg.DefaultID() {
			id += " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, name, p.LanguageTag(), p.OCRCode, strings.Join(p.Aliases, ", "))
	}
	return tw.Flush()
}

// newLogger builds the handler selected by the configuration. The returned
// function closes the log file, if any.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch {
	case cfg.Verbose:
		level = slog.LevelDebug
	case cfg.Quiet:
		level = slog.LevelWarn
	}

	w := stderr
	closeFn := func() {}
	if cfg.LogFile != "" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("log dir: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(stderr, f)
		closeFn = func() { f.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, closeFn, nil
}
