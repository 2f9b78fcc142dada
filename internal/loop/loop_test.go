package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olivier-w/mngviz/internal/logging"
)

// fakeTicker behaves like time.Ticker: a one-slot channel where sends that
// find it full are lost.
type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newFakeTicker() *fakeTicker { return &fakeTicker{ch: make(chan time.Time, 1)} }

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

func (f *fakeTicker) tick() {
	select {
	case f.ch <- time.Time{}:
	default:
	}
}

func startFake(t *testing.T, cb Callback, opts ...Option) (*Loop, *fakeTicker) {
	t.Helper()
	ft := newFakeTicker()
	opts = append(opts,
		WithTicker(func(time.Duration) Ticker { return ft }),
		WithLogger(logging.NoOpLogger{}),
	)
	l := New(60, cb, opts...)
	l.Start(context.Background())
	t.Cleanup(l.Cancel)
	return l, ft
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestIntervalFromFPS(t *testing.T) {
	if got := New(50, nil).Interval(); got != 20*time.Millisecond {
		t.Fatalf("expected 20ms, got %v", got)
	}
	if got := New(0, nil).Interval(); got != time.Second/DefaultFPS {
		t.Fatalf("expected default interval, got %v", got)
	}
}

func TestTicksDuringCallbackAreDropped(t *testing.T) {
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	var calls, active, overlap atomic.Int32

	l, ft := startFake(t, func(time.Duration) {
		if active.Add(1) > 1 {
			overlap.Store(1)
		}
		calls.Add(1)
		entered <- struct{}{}
		<-release
		active.Add(-1)
	})

	ft.tick()
	waitFor(t, entered)
	ft.tick()
	ft.tick()
	ft.tick()
	close(release)
	l.Cancel()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected queued ticks to be dropped, got %d calls", got)
	}
	if overlap.Load() != 0 {
		t.Fatal("callbacks overlapped")
	}
	if !ft.stopped.Load() {
		t.Fatal("expected ticker to be stopped")
	}
}

func TestNoCallbackAfterCancel(t *testing.T) {
	entered := make(chan struct{}, 8)
	var calls atomic.Int32
	l, ft := startFake(t, func(time.Duration) {
		calls.Add(1)
		entered <- struct{}{}
	})

	ft.tick()
	waitFor(t, entered)
	l.Cancel()
	l.Cancel()

	before := calls.Load()
	ft.tick()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != before {
		t.Fatal("callback ran after Cancel returned")
	}
	select {
	case <-l.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
}

func TestPanicDoesNotStopLoop(t *testing.T) {
	entered := make(chan struct{}, 4)
	var calls atomic.Int32
	_, ft := startFake(t, func(time.Duration) {
		n := calls.Add(1)
		entered <- struct{}{}
		if n == 1 {
			panic("boom")
		}
	})

	ft.tick()
	waitFor(t, entered)
	ft.tick()
	waitFor(t, entered)

	if calls.Load() != 2 {
		t.Fatalf("expected loop to survive panic, got %d calls", calls.Load())
	}
}

func TestElapsedUsesClock(t *testing.T) {
	base := time.Unix(1000, 0)
	var now atomic.Int64
	now.Store(base.UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()) }

	got := make(chan time.Duration, 1)
	_, ft := startFake(t, func(d time.Duration) { got <- d }, WithClock(clock))

	now.Add(int64(1500 * time.Millisecond))
	ft.tick()
	select {
	case d := <-got:
		if d != 1500*time.Millisecond {
			t.Fatalf("expected 1.5s elapsed, got %v", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestCancelBeforeStart(t *testing.T) {
	l := New(60, func(time.Duration) {})
	l.Cancel()
	l.Start(context.Background())
	select {
	case <-l.Done():
	default:
		t.Fatal("expected Done after early Cancel")
	}
}

func TestContextCancellationStopsLoop(t *testing.T) {
	ft := newFakeTicker()
	ctx, cancel := context.WithCancel(context.Background())
	l := New(60, func(time.Duration) {}, WithTicker(func(time.Duration) Ticker { return ft }))
	l.Start(ctx)
	cancel()
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop with its context")
	}
}
