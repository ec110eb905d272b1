package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/heart/internal/favourite"
	"github.com/five82/heart/internal/online"
	"github.com/five82/heart/internal/state"
)

const (
	defaultPollInterval = time.Minute
	retryInterval       = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// sessionSource is the part of session.Provider the poller needs.
type sessionSource interface {
	Token() string
	Apply(me *online.APIUser, err error)
}

// Poller re-validates the session against GET /me. Requests go through API
// and results are applied on Scheduler, the controller's execution context.
type Poller struct {
	API       favourite.API
	Scheduler online.Scheduler
	Session   sessionSource
	Store     *state.Store
	Logger    *slog.Logger
	Interval  time.Duration
}

// StartPoller launches a background goroutine that refreshes the session
// immediately and then at p.Interval, backing off after failures. It returns
// immediately.
func StartPoller(ctx context.Context, p Poller) {
	if p.Interval <= 0 {
		p.Interval = defaultPollInterval
	}
	if p.Logger == nil {
		p.Logger = slog.New(slog.DiscardHandler)
	}
	go func() {
		failures := 0
		for {
			err := p.refresh(ctx)
			if ctx.Err() != nil {
				return
			}
			delay := p.Interval
			if err != nil {
				failures++
				delay = calculateBackoff(failures, retryInterval)
				p.Logger.Warn("session poll failed", "error", err, "failures", failures, "retry_in", delay)
			} else {
				failures = 0
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// refresh performs one /me lookup and waits for it to be applied. Guests are
// skipped without a request.
func (p Poller) refresh(ctx context.Context) error {
	done := make(chan error, 1)
	p.Scheduler.Schedule(func() {
		if p.Session.Token() == "" {
			done <- nil
			return
		}
		req := online.NewGetMeRequest()
		req.Success = func(me *online.APIUser) {
			p.Session.Apply(me, nil)
			if p.Store != nil {
				p.Store.Record(nil)
			}
			done <- nil
		}
		req.Failure = func(err error) {
			p.Session.Apply(nil, err)
			if p.Store != nil {
				p.Store.Record(err)
			}
			done <- err
		}
		p.API.Queue(req)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// calculateBackoff returns base doubled once per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
