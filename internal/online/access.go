package online

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrQueueFull is reported through a request's Failure callback when the
// queue cannot accept more work.
var ErrQueueFull = errors.New("request queue is full")

const defaultQueueSize = 64

// Scheduler runs completion callbacks on the caller's execution context.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a func to Scheduler.
type SchedulerFunc func(fn func())

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// Access queues requests, performs them one at a time on a background worker
// and posts their completions to a Scheduler.
type Access struct {
	ctx       context.Context
	transport Transport
	scheduler Scheduler
	logger    *slog.Logger
	queue     chan APIRequest
}

// NewAccess builds a request queue. Requests queued after ctx is done fail
// with the context error.
func NewAccess(ctx context.Context, transport Transport, scheduler Scheduler, logger *slog.Logger) *Access {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Access{
		ctx:       ctx,
		transport: transport,
		scheduler: scheduler,
		logger:    logger,
		queue:     make(chan APIRequest, defaultQueueSize),
	}
}

// Queue schedules req and returns immediately.
func (a *Access) Queue(req APIRequest) {
	if req == nil {
		return
	}
	ctx, cancel := context.WithCancel(a.ctx)
	req.attach(ctx, cancel)

	if err := a.ctx.Err(); err != nil {
		a.fail(req, err)
		return
	}
	select {
	case a.queue <- req:
		a.logger.Debug("request queued", "request", req.Name(), "id", req.ID())
	default:
		a.fail(req, ErrQueueFull)
	}
}

// Start launches the worker goroutine. It returns immediately.
func (a *Access) Start() {
	go a.run()
}

func (a *Access) run() {
	for {
		select {
		case <-a.ctx.Done():
			a.drain()
			return
		case req := <-a.queue:
			a.perform(req)
		}
	}
}

func (a *Access) perform(req APIRequest) {
	if req.Cancelled() {
		a.logger.Debug("skipping cancelled request", "request", req.Name(), "id", req.ID())
		return
	}
	start := time.Now()
	complete := req.perform(req.requestContext(), a.transport)
	a.logger.Debug("request finished",
		"request", req.Name(),
		"id", req.ID(),
		"duration", time.Since(start),
		"cancelled", req.Cancelled(),
	)
	a.scheduler.Schedule(complete)
}

// drain fails whatever is still queued once the access is shutting down.
func (a *Access) drain() {
	for {
		select {
		case req := <-a.queue:
			a.fail(req, a.ctx.Err())
		default:
			return
		}
	}
}

func (a *Access) fail(req APIRequest, err error) {
	a.logger.Debug("request rejected", "request", req.Name(), "id", req.ID(), "error", err)
	complete := req.perform(failedContext(err), failingTransport{err: err})
	// Queue may be running on the scheduler's own goroutine.
	go a.scheduler.Schedule(complete)
}

type failingTransport struct{ err error }

func (f failingTransport) GetBeatmapSet(context.Context, int64) (*APIBeatmapSet, error) {
	return nil, f.err
}

func (f failingTransport) PostBeatmapFavourite(context.Context, int64, FavouriteAction) error {
	return f.err
}

func (f failingTransport) GetMe(context.Context) (*APIUser, error) {
	return nil, f.err
}

func failedContext(err error) context.Context {
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(err)
	return ctx
}
