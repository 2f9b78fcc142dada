// Package loop drives a per-frame callback from a ticker with at most one
// call in flight.
package loop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/olivier-w/mngviz/internal/logging"
)

// DefaultFPS is the frame rate used when none is given.
const DefaultFPS = 60

// Ticker is the part of *time.Ticker the loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// Callback receives the time elapsed since Start.
type Callback func(elapsed time.Duration)

// Option configures a Loop.
type Option func(*Loop)

// WithTicker replaces the ticker factory.
func WithTicker(f func(time.Duration) Ticker) Option {
	return func(l *Loop) { l.newTicker = f }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithLogger replaces the component logger.
func WithLogger(log logging.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// Loop calls its callback once per tick. A tick that arrives while the
// callback is still running is dropped, never queued.
type Loop struct {
	interval  time.Duration
	callback  Callback
	newTicker func(time.Duration) Ticker
	now       func() time.Time
	log       logging.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a stopped loop running fps times per second.
func New(fps int, cb Callback, opts ...Option) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	l := &Loop{
		interval:  time.Second / time.Duration(fps),
		callback:  cb,
		newTicker: NewTicker,
		now:       time.Now,
		log:       logging.Component("loop"),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the tick period.
func (l *Loop) Interval() time.Duration { return l.interval }

// Start launches the loop. It runs until ctx ends or Cancel is called.
// Calling Start more than once has no effect.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true

	ctx, l.cancel = context.WithCancel(ctx)
	t := l.newTicker(l.interval)
	start := l.now()
	go l.run(ctx, t, start)
}

func (l *Loop) run(ctx context.Context, t Ticker, start time.Time) {
	defer close(l.done)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
		}
		if ctx.Err() != nil {
			return
		}
		l.invoke(l.now().Sub(start))

		// drop a tick that queued up while the callback ran
		select {
		case <-t.C():
		default:
		}
	}
}

func (l *Loop) invoke(elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error(fmt.Errorf("%v", r), "frame callback panicked", logging.Fields{"elapsed": elapsed.String()})
		}
	}()
	l.callback(elapsed)
}

// Cancel stops the loop and waits for an in-flight callback to return.
// No callback starts after Cancel returns. Safe to call repeatedly and
// before Start.
func (l *Loop) Cancel() {
	l.mu.Lock()
	if !l.started {
		l.started = true
		close(l.done)
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-l.done
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} { return l.done }
