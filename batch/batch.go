package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/cache"
	"github.com/tsawler/pdfoutline/model"
)

// ExtractFunc produces the outline of one file. (*pdfoutline.Pipeline).Extract
// is the usual implementation.
type ExtractFunc func(ctx context.Context, path string) (*model.DocumentOutline, []pdfoutline.Warning, error)

// Result is the outcome of one file. Exactly one of Outline and Err is set.
type Result struct {
	Path     string
	Outline  *model.DocumentOutline
	Warnings []pdfoutline.Warning
	Err      *ExtractionError
	Elapsed  time.Duration
	Size     int64
	Cached   bool
}

// OK reports whether the file produced an outline.
func (r Result) OK() bool {
	return r.Err == nil
}

// Options configures an Orchestrator
type Options struct {
	// Extract is required.
	Extract ExtractFunc

	// Workers bounds the files processed at once.
	// Default: 1
	Workers int

	// BatchTimeout bounds the whole run and FileTimeout each file; zero
	// means no limit.
	BatchTimeout time.Duration
	FileTimeout  time.Duration

	// Cache, when set, is consulted before extraction and filled after.
	// Fingerprint identifies the extraction settings in cache keys.
	Cache       *cache.Cache
	Fingerprint string

	// OnResult is called once per file as soon as it completes, from the
	// worker goroutine that processed it.
	OnResult func(Result)

	Logger *slog.Logger
}

// Orchestrator runs the per-file pipeline over many files with bounded
// parallelism. A failing or panicking file never stops the others.
type Orchestrator struct {
	opts  Options
	runID uuid.UUID

	started   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	cached    atomic.Int64
}

// New creates an orchestrator with a fresh run id.
func New(opts Options) (*Orchestrator, error) {
	if opts.Extract == nil {
		return nil, errors.New("batch: Extract is required")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{opts: opts, runID: uuid.New()}, nil
}

// RunID identifies this orchestrator's run in logs and reports.
func (o *Orchestrator) RunID() string {
	return o.runID.String()
}

// Progress is a snapshot of the run counters.
type Progress struct {
	Started, Completed, Failed, Cached int64
}

// Progress returns the current counters. It may be called while Process
// runs.
func (o *Orchestrator) Progress() Progress {
	return Progress{
		Started:   o.started.Load(),
		Completed: o.completed.Load(),
		Failed:    o.failed.Load(),
		Cached:    o.cached.Load(),
	}
}

// Process extracts every file and returns one Result per path. Files not
// finished when the batch deadline passes report a timeout.
func (o *Orchestrator) Process(ctx context.Context, files []string) map[string]Result {
	if o.opts.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.BatchTimeout)
		defer cancel()
	}

	log := o.opts.Logger.With("run_id", o.RunID())
	log.Info("batch started", "files", len(files), "workers", o.opts.Workers)
	start := time.Now()

	var (
		mu      sync.Mutex
		results = make(map[string]Result, len(files))
		g       errgroup.Group
	)
	g.SetLimit(o.opts.Workers)

	for _, path := range files {
		g.Go(func() error {
			r := o.processFile(ctx, log, path)

			mu.Lock()
			results[path] = r
			mu.Unlock()

			o.completed.Add(1)
			if !r.OK() {
				o.failed.Add(1)
			}
			if o.opts.OnResult != nil {
				o.opts.OnResult(r)
			}
			return nil
		})
	}
	_ = g.Wait()

	p := o.Progress()
	log.Info("batch finished",
		"files", len(files),
		"failed", p.Failed,
		"cached", p.Cached,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results
}

func (o *Orchestrator) processFile(ctx context.Context, log *slog.Logger, path string) (res Result) {
	o.started.Add(1)
	start := time.Now()
	res.Path = path
	log = log.With("file", path)

	defer func() {
		if rec := recover(); rec != nil {
			pe := &PanicError{Value: rec, Stack: debug.Stack()}
			log.Error("panic while processing file", "err", pe, "stack", string(pe.Stack))
			res.Outline, res.Warnings = nil, nil
			res.Err = &ExtractionError{Path: path, Kind: KindInternal, Err: pe}
		}
		res.Elapsed = time.Since(start)
	}()

	// The batch deadline may pass while this file waits for a worker
	if err := ctx.Err(); err != nil {
		res.Err = Classify(path, err)
		log.Warn("file skipped", "err", res.Err)
		return res
	}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = Classify(path, err)
		log.Error("file failed", "err", res.Err)
		return res
	}
	res.Size = info.Size()

	key, ok := o.cacheKey(log, path)
	if ok {
		if out, hit, err := o.opts.Cache.Get(ctx, key); err != nil {
			log.Warn("cache lookup failed", "err", err)
		} else if hit {
			o.cached.Add(1)
			res.Outline, res.Cached = out, true
			log.Debug("cache hit")
			return res
		}
	}

	fctx := ctx
	if o.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, o.opts.FileTimeout)
		defer cancel()
	}

	out, warnings, err := o.opts.Extract(fctx, path)
	if err != nil {
		res.Err = Classify(path, err)
		log.Error("file failed", "kind", res.Err.Kind, "err", err)
		return res
	}
	res.Outline, res.Warnings = out, warnings

	for _, w := range warnings {
		log.Warn("extraction warning", "kind", w.Kind.String(), "page", w.Page, "msg", w.Message)
	}
	log.Info("file done",
		"headings", len(out.Entries),
		"language", out.Metadata.Language,
		"size", humanize.Bytes(uint64(res.Size)),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if ok {
		if err := o.opts.Cache.Put(ctx, key, out); err != nil {
			log.Warn("cache store failed", "err", err)
		}
	}
	return res
}

// cacheKey hashes the file when a cache is configured.
func (o *Orchestrator) cacheKey(log *slog.Logger, path string) (cache.Key, bool) {
	if o.opts.Cache == nil {
		return cache.Key{}, false
	}
	hash, err := cache.HashFile(path)
	if err != nil {
		log.Warn("cannot hash file for cache", "err", err)
		return cache.Key{}, false
	}
	return cache.Key{FileHash: hash, Fingerprint: o.opts.Fingerprint}, true
}

// Failures returns the failed results ordered by path.
func Failures(results map[string]Result) []Result {
	var out []Result
	for _, p := range SortedPaths(results) {
		if r := results[p]; !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Describe summarizes a result in one line for terminal output.
func Describe(r Result) string {
	if !r.OK() {
		return fmt.Sprintf("FAIL %s (%s)", r.Path, r.Err.Kind)
	}
	suffix := ""
	if r.Cached {
		suffix = ", cached"
	}
	return fmt.Sprintf("ok   %s: %d headings, %s%s", r.Path, len(r.Outline.Entries), r.Elapsed.Round(time.Millisecond), suffix)
}
