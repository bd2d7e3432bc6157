package ocr

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeEngine returns a fixed result, optionally blocking until released.
type fakeEngine struct {
	block  chan struct{}
	fail   error
	closed atomic.Bool
	calls  atomic.Int32
}

func (f *fakeEngine) Recognize(ctx context.Context, req Request) (Result, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.fail != nil {
		return Result{}, f.fail
	}
	return Result{Words: []Word{word(req.Languages, 0, 0, 10, 10, 90)}}, nil
}

func (f *fakeEngine) Close() error {
	f.closed.Store(true)
	return nil
}

func countingFactory(created *atomic.Int32, newEngine func() *fakeEngine) Factory {
	return func() (Engine, error) {
		created.Add(1)
		return newEngine(), nil
	}
}

func TestPoolReusesEngines(t *testing.T) {
	var created atomic.Int32
	p := NewPool(countingFactory(&created, func() *fakeEngine { return &fakeEngine{} }), 2)
	defer p.Close()

	for i := 0; i < 5; i++ {
		res, err := p.Recognize(context.Background(), Request{Languages: "eng"})
		if err != nil {
			t.Fatalf("Recognize() error = %v", err)
		}
		if len(res.Words) != 1 || res.Words[0].Text != "eng" {
			t.Fatalf("Recognize() = %+v", res)
		}
	}
	if created.Load() != 1 {
		t.Errorf("created %d engines for sequential calls, want 1", created.Load())
	}
	if p.Idle() != 1 {
		t.Errorf("Idle() = %d, want 1", p.Idle())
	}
}

func TestPoolLimitsConcurrency(t *testing.T) {
	var created atomic.Int32
	p := NewPool(countingFactory(&created, func() *fakeEngine { return &fakeEngine{} }), 1)
	defer p.Close()

	e, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second Acquire() error = %v, want deadline exceeded", err)
	}
	p.Release(e)

	e2, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() after Release error = %v", err)
	}
	if e2 != e {
		t.Error("released engine was not reused")
	}
	p.Release(e2)
}

func TestPoolAbandonsSlowCall(t *testing.T) {
	block := make(chan struct{})
	slow := &fakeEngine{block: block}
	var created atomic.Int32
	p := NewPool(countingFactory(&created, func() *fakeEngine { return slow }), 1)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Recognize(ctx, Request{Languages: "eng"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Recognize() error = %v, want deadline exceeded", err)
	}

	// The slot is free again even though the engine is still busy.
	acquireCtx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	e, err := p.Acquire(acquireCtx)
	if err != nil {
		t.Fatalf("Acquire() after abandon error = %v", err)
	}
	p.Release(e)
	if created.Load() != 2 {
		t.Errorf("created = %d, want a fresh engine after abandon", created.Load())
	}

	close(block)
	deadline := time.Now().Add(time.Second)
	for !slow.closed.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !slow.closed.Load() {
		t.Error("abandoned engine was not closed after its call returned")
	}
}

func TestPoolDropsFailedEngine(t *testing.T) {
	var created atomic.Int32
	broken := &fakeEngine{fail: errors.New("tesseract crashed")}
	p := NewPool(countingFactory(&created, func() *fakeEngine {
		if created.Load() == 1 {
			return broken
		}
		return &fakeEngine{}
	}), 1)
	defer p.Close()

	if _, err := p.Recognize(context.Background(), Request{Languages: "eng"}); err == nil {
		t.Fatal("Recognize() on a failing engine should fail")
	}
	if !broken.closed.Load() {
		t.Error("failed engine not closed")
	}
	if p.Idle() != 0 {
		t.Errorf("Idle() = %d after a failure, want 0", p.Idle())
	}

	res, err := p.Recognize(context.Background(), Request{Languages: "eng"})
	if err != nil || len(res.Words) != 1 {
		t.Fatalf("Recognize() after a failure = %+v, %v", res, err)
	}
	if created.Load() != 2 || broken.calls.Load() != 1 {
		t.Errorf("created %d engines, broken engine called %d times", created.Load(), broken.calls.Load())
	}
}

func TestPoolClosed(t *testing.T) {
	idle := &fakeEngine{}
	p := NewPool(func() (Engine, error) { return idle, nil }, 1)

	e, _ := p.Acquire(context.Background())
	p.Release(e)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !idle.closed.Load() {
		t.Error("idle engine not closed")
	}
	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestPoolFactoryError(t *testing.T) {
	p := NewPool(func() (Engine, error) { return nil, ErrOCRNotEnabled }, 1)
	for i := 0; i < 2; i++ {
		if _, err := p.Recognize(context.Background(), Request{}); !errors.Is(err, ErrOCRNotEnabled) {
			t.Fatalf("Recognize() error = %v, want ErrOCRNotEnabled", err)
		}
	}
}

func TestNewFactoryOff(t *testing.T) {
	if _, err := NewFactory(ModeOff, CLIEngine{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewFactory(off) error = %v, want ErrUnavailable", err)
	}
	if _, err := NewFactory("bogus", CLIEngine{}); err == nil {
		t.Error("NewFactory(bogus) succeeded")
	}
	if _, err := NewFactory(ModeCLI, CLIEngine{Bin: "definitely-not-tesseract"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewFactory(cli) with missing binary error = %v", err)
	}
}
