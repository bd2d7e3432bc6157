package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tsawler/pdfoutline/internal/command"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("ocr pool closed")

// Pool hands out at most size engines at a time, creating them on demand
// and reusing released ones. It is safe for concurrent use.
type Pool struct {
	factory Factory
	slots   chan struct{}

	mu     sync.Mutex
	idle   []Engine
	closed bool
}

// NewPool creates a pool of up to size engines.
func NewPool(factory Factory, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{factory: factory, slots: make(chan struct{}, size)}
}

// Acquire waits for a free slot and returns an idle or new engine. Every
// successful Acquire must be paired with Release or Discard.
func (p *Pool) Acquire(ctx context.Context) (Engine, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.slots
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		e := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return e, nil
	}
	p.mu.Unlock()

	e, err := p.factory()
	if err != nil {
		<-p.slots
		return nil, err
	}
	return e, nil
}

// Release returns e to the pool for reuse.
func (p *Pool) Release(e Engine) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		e.Close()
	} else {
		p.idle = append(p.idle, e)
		p.mu.Unlock()
	}
	<-p.slots
}

// Discard frees the slot held by e without returning e to the pool. The
// caller stays responsible for closing e.
func (p *Pool) Discard(e Engine) {
	<-p.slots
}

// Idle returns the number of engines waiting for reuse.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Close closes the idle engines. Engines still in use are closed when they
// are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	var errs []error
	for _, e := range p.idle {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.idle = nil
	return errors.Join(errs...)
}

// Recognize runs req on a pooled engine. An engine whose call fails is
// closed instead of being reused. When ctx ends before the engine returns,
// the call is abandoned: the engine leaves the pool, is closed once its
// call completes, and ctx's error is returned.
func (p *Pool) Recognize(ctx context.Context, req Request) (Result, error) {
	e, err := p.Acquire(ctx)
	if err != nil {
		return Result{}, err
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.Recognize(ctx, req)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		if o.err != nil && !errors.Is(o.err, context.Canceled) && !errors.Is(o.err, context.DeadlineExceeded) {
			// A failed engine may be left in a broken state
			p.Discard(e)
			e.Close()
			return o.res, o.err
		}
		p.Release(e)
		return o.res, o.err
	case <-ctx.Done():
		p.Discard(e)
		go func() {
			<-done
			e.Close()
		}()
		return Result{}, ctx.Err()
	}
}

// Mode selects the OCR engine implementation.
type Mode string

const (
	// ModeAuto prefers the library binding and falls back to the command
	// line program.
	ModeAuto    Mode = "auto"
	ModeLibrary Mode = "library"
	ModeCLI     Mode = "cli"
	ModeOff     Mode = "off"
)

// NewFactory returns the engine factory for mode, or ErrUnavailable (or
// ErrOCRNotEnabled) when that engine cannot run here. cli configures the
// command line engine.
func NewFactory(mode Mode, cli CLIEngine) (Factory, error) {
	commandLine := func() (Engine, error) {
		e := cli
		return &e, nil
	}

	switch mode {
	case ModeLibrary:
		if !LibraryEnabled {
			return nil, ErrOCRNotEnabled
		}
		return NewLibraryEngine, nil
	case ModeCLI:
		if cli.Runner == nil && !command.Available(cli.bin()) {
			return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, cli.bin())
		}
		return commandLine, nil
	case ModeOff:
		return nil, ErrUnavailable
	case ModeAuto, "":
		if LibraryEnabled {
			return NewLibraryEngine, nil
		}
		if cli.Runner != nil || command.Available(cli.bin()) {
			return commandLine, nil
		}
		return nil, fmt.Errorf("%w: library not compiled in and %s not found", ErrUnavailable, cli.bin())
	default:
		return nil, fmt.Errorf("unknown OCR mode %q", mode)
	}
}
