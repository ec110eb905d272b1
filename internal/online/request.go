package online

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// APIRequest is a cancellable unit of work accepted by Access.Queue.
//
// Exactly one of a request's Success or Failure callbacks fires, at most
// once, and never after Cancel. Callbacks run on the Scheduler passed to
// NewAccess.
type APIRequest interface {
	ID() uuid.UUID
	Name() string
	Cancel()
	Cancelled() bool
	Completed() bool

	attach(ctx context.Context, cancel context.CancelFunc)
	requestContext() context.Context
	perform(ctx context.Context, t Transport) (complete func())
}

// Request carries the callbacks for a call returning T.
type Request[T any] struct {
	id   uuid.UUID
	name string
	call func(ctx context.Context, t Transport) (T, error)

	// Success receives the payload when the call succeeds.
	Success func(T)
	// Failure receives the error when the call fails.
	Failure func(error)

	cancelled atomic.Bool
	completed atomic.Bool

	ctx   context.Context
	abort context.CancelFunc
}

func newRequest[T any](name string, call func(ctx context.Context, t Transport) (T, error)) *Request[T] {
	return &Request[T]{
		id:   uuid.New(),
		name: name,
		call: call,
	}
}

// ID returns the request identifier sent as X-Request-Id.
func (r *Request[T]) ID() uuid.UUID { return r.id }

// Name returns a short label used in logs.
func (r *Request[T]) Name() string { return r.name }

// Cancelled reports whether Cancel took effect.
func (r *Request[T]) Cancelled() bool { return r.cancelled.Load() }

// Completed reports whether a callback has already fired.
func (r *Request[T]) Completed() bool { return r.completed.Load() }

// Cancel prevents pending callbacks from firing and aborts the in-flight
// call. It is a no-op on completed or already cancelled requests.
func (r *Request[T]) Cancel() {
	if r.completed.Load() {
		return
	}
	if !r.cancelled.CompareAndSwap(false, true) {
		return
	}
	if r.abort != nil {
		r.abort()
	}
}

// TriggerSuccess completes the request with v.
func (r *Request[T]) TriggerSuccess(v T) {
	if !r.begin() {
		return
	}
	if r.Success != nil {
		r.Success(v)
	}
}

// TriggerFailure completes the request with err.
func (r *Request[T]) TriggerFailure(err error) {
	if !r.begin() {
		return
	}
	if r.Failure != nil {
		r.Failure(err)
	}
}

func (r *Request[T]) begin() bool {
	if r.cancelled.Load() {
		return false
	}
	return r.completed.CompareAndSwap(false, true)
}

func (r *Request[T]) attach(ctx context.Context, cancel context.CancelFunc) {
	r.ctx = ctx
	r.abort = cancel
}

func (r *Request[T]) requestContext() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

func (r *Request[T]) perform(ctx context.Context, t Transport) func() {
	v, err := r.call(withRequestID(ctx, r.id), t)
	if r.abort != nil {
		r.abort()
	}
	return func() {
		if err != nil {
			r.TriggerFailure(err)
			return
		}
		r.TriggerSuccess(v)
	}
}

// GetBeatmapSetRequest fetches a beatmap set with the caller's favourite state.
type GetBeatmapSetRequest struct {
	*Request[*APIBeatmapSet]
	OnlineID int64
}

// NewGetBeatmapSetRequest builds a fetch for onlineID.
func NewGetBeatmapSetRequest(onlineID int64) *GetBeatmapSetRequest {
	return &GetBeatmapSetRequest{
		Request: newRequest("get beatmap set", func(ctx context.Context, t Transport) (*APIBeatmapSet, error) {
			return t.GetBeatmapSet(ctx, onlineID)
		}),
		OnlineID: onlineID,
	}
}

// PostBeatmapFavouriteRequest favourites or unfavourites a beatmap set.
type PostBeatmapFavouriteRequest struct {
	*Request[struct{}]
	OnlineID int64
	Action   FavouriteAction
}

// NewPostBeatmapFavouriteRequest builds a favourite toggle for onlineID.
func NewPostBeatmapFavouriteRequest(onlineID int64, action FavouriteAction) *PostBeatmapFavouriteRequest {
	return &PostBeatmapFavouriteRequest{
		Request: newRequest(action.String()+" beatmap set", func(ctx context.Context, t Transport) (struct{}, error) {
			return struct{}{}, t.PostBeatmapFavourite(ctx, onlineID, action)
		}),
		OnlineID: onlineID,
		Action:   action,
	}
}

// GetMeRequest fetches the signed-in user.
type GetMeRequest struct {
	*Request[*APIUser]
}

// NewGetMeRequest builds a /me lookup.
func NewGetMeRequest() *GetMeRequest {
	return &GetMeRequest{
		Request: newRequest("get me", func(ctx context.Context, t Transport) (*APIUser, error) {
			return t.GetMe(ctx)
		}),
	}
}
