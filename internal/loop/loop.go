// Package loop provides a single-goroutine execution context for callbacks
// posted from background workers.
package loop

import (
	"context"
	"sync"
)

// Loop runs scheduled funcs in FIFO order on the goroutine that calls Run,
// RunUntil or Drain. Schedule is safe to call from any goroutine.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

// New returns an empty Loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Schedule appends fn to the queue. It never blocks.
func (l *Loop) Schedule(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many funcs are waiting to run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Drain runs every queued func, including funcs scheduled while draining,
// and returns how many ran.
func (l *Loop) Drain() int {
	ran := 0
	for {
		batch := l.take()
		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Run processes funcs until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	return l.RunUntil(ctx, nil)
}

// RunUntil processes funcs until done reports true (checked after every
// batch and before waiting) or ctx is done.
func (l *Loop) RunUntil(ctx context.Context, done func() bool) error {
	for {
		l.Drain()
		if done != nil && done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.pending
	l.pending = nil
	return batch
}
