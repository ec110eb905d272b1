package favourite

import (
	"log/slog"

	"github.com/five82/heart/internal/bindable"
	"github.com/five82/heart/internal/i18n"
	"github.com/five82/heart/internal/online"
	"github.com/five82/heart/internal/session"
)

// API queues requests. Implemented by *online.Access.
type API interface {
	Queue(req online.APIRequest)
}

// View is everything the presentation layer renders.
type View struct {
	Resource   Resource
	State      State
	Enabled    bool
	Loading    bool
	Hint       string
	BeatmapSet *online.APIBeatmapSet
}

type disabledReason int

const (
	reasonNone disabledReason = iota
	reasonLoginRequired
	reasonFetchFailed
)

// Controller keeps the favourite state of one beatmap set in sync with the
// server. All methods and request callbacks must run on the same execution
// context.
type Controller struct {
	resource Resource
	api      API
	logger   *slog.Logger
	strings  *i18n.Strings
	report   func(error)

	current *bindable.Bindable[State]
	enabled *bindable.Bindable[bool]
	loading *bindable.Bindable[bool]
	hint    *bindable.Bindable[string]
	view    *bindable.Bindable[View]

	reason     disabledReason
	beatmapSet *online.APIBeatmapSet

	fetchRequest     *online.GetBeatmapSetRequest
	favouriteRequest *online.PostBeatmapFavouriteRequest

	unbindUser func()
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic sink for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStrings sets the localised hint strings.
func WithStrings(s *i18n.Strings) Option {
	return func(c *Controller) {
		if s != nil {
			c.strings = s
		}
	}
}

// WithReporter receives the outcome of every fetch and toggle: nil on
// success, a *FetchError or *ToggleError on failure.
func WithReporter(fn func(error)) Option {
	return func(c *Controller) { c.report = fn }
}

// New returns a controller for resource. It starts disabled with state
// {false, 0} until a session user is bound.
func New(resource Resource, api API, opts ...Option) *Controller {
	c := &Controller{
		resource: resource,
		api:      api,
		logger:   slog.New(slog.DiscardHandler),
		current:  bindable.New(State{}),
		enabled:  bindable.New(false),
		loading:  bindable.New(false),
		hint:     bindable.New(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.strings == nil {
		c.strings = i18n.New(i18n.BaseLocale)
	}
	c.logger = c.logger.With("beatmapset", resource.OnlineID)

	c.current.BindValueChanged(func(bindable.ValueChangedEvent[State]) { c.updateState() }, true)
	c.view = bindable.New(c.View())
	return c
}

// Bind subscribes to the session user. The current user is handled
// immediately, then every change.
func (c *Controller) Bind(users *bindable.Bindable[session.User]) {
	if c.unbindUser != nil {
		c.unbindUser()
	}
	c.unbindUser = users.BindValueChanged(func(ev bindable.ValueChangedEvent[session.User]) {
		c.OnSessionUserChanged(ev.New)
	}, true)
}

// OnSessionUserChanged re-evaluates the controller for user. Guests and
// unpublished beatmap sets are disabled without any request; otherwise the
// authoritative state is fetched. Repeated calls with the same user re-run
// the same branch.
func (c *Controller) OnSessionUserChanged(user session.User) {
	if !user.IsGuest() && c.resource.Published() {
		c.fetch()
		return
	}

	c.cancelRequests()
	c.beatmapSet = nil
	c.enabled.Set(false)
	c.loading.Set(false)
	c.reason = reasonLoginRequired
	c.setState(State{})
	c.publish()
}

func (c *Controller) fetch() {
	// A fetch supersedes any pending toggle.
	c.cancelRequests()

	c.enabled.Set(false)
	c.loading.Set(true)
	c.reason = reasonNone
	c.updateState()

	req := online.NewGetBeatmapSetRequest(c.resource.OnlineID)
	c.fetchRequest = req

	req.Success = func(set *online.APIBeatmapSet) {
		if c.fetchRequest != req {
			return
		}
		c.fetchRequest = nil
		c.beatmapSet = set
		c.reason = reasonNone
		c.setState(State{Favourited: set.HasFavourited, Count: set.FavouriteCount})
		c.loading.Set(false)
		c.enabled.Set(true)
		c.outcome(nil)
		c.publish()
	}
	req.Failure = func(err error) {
		if c.fetchRequest != req {
			return
		}
		c.fetchRequest = nil
		c.logger.Error("failed to fetch beatmap info", "error", err)

		c.beatmapSet = nil
		c.reason = reasonFetchFailed
		c.updateState()
		c.loading.Set(false)
		c.enabled.Set(false)
		c.outcome(&FetchError{OnlineID: c.resource.OnlineID, Err: err})
		c.publish()
	}

	c.api.Queue(req)
	c.publish()
}

// Toggle favourites or unfavourites the beatmap set based on the current
// local state. The state changes only once the server confirms; a failure
// leaves it untouched. Any earlier toggle still in flight is cancelled.
//
// Callers should only toggle while Enabled reports true. Toggle returns false
// without doing anything when no remote metadata is known yet.
func (c *Controller) Toggle() bool {
	if c.beatmapSet == nil {
		return false
	}

	c.enabled.Set(false)
	c.loading.Set(true)

	action := IntendedAction(c.current.Value())

	if c.favouriteRequest != nil {
		c.favouriteRequest.Cancel()
	}
	req := online.NewPostBeatmapFavouriteRequest(c.remoteID(), action)
	c.favouriteRequest = req

	req.Success = func(struct{}) {
		if c.favouriteRequest != req {
			return
		}
		c.favouriteRequest = nil
		c.setState(Apply(c.current.Value(), action))
		c.enabled.Set(true)
		c.loading.Set(false)
		c.outcome(nil)
		c.publish()
	}
	req.Failure = func(err error) {
		if c.favouriteRequest != req {
			return
		}
		c.favouriteRequest = nil
		c.logger.Error("failed to toggle favourite", "action", action.String(), "error", err)
		c.enabled.Set(true)
		c.loading.Set(false)
		c.outcome(&ToggleError{OnlineID: req.OnlineID, Action: action, Err: err})
		c.publish()
	}

	c.api.Queue(req)
	c.publish()
	return true
}

// Close cancels in-flight requests and stops following the session.
func (c *Controller) Close() {
	c.cancelRequests()
	if c.unbindUser != nil {
		c.unbindUser()
		c.unbindUser = nil
	}
}

// Resource returns the bound beatmap set identity.
func (c *Controller) Resource() Resource { return c.resource }

// State returns the current favourite state.
func (c *Controller) State() State { return c.current.Value() }

// Enabled reports whether Toggle may be invoked.
func (c *Controller) Enabled() bool { return c.enabled.Value() }

// Loading reports whether a request is in flight.
func (c *Controller) Loading() bool { return c.loading.Value() }

// Hint returns the tooltip text for the current state.
func (c *Controller) Hint() string { return c.hint.Value() }

// BeatmapSet returns the last fetched remote metadata, or nil.
func (c *Controller) BeatmapSet() *online.APIBeatmapSet { return c.beatmapSet }

// View returns a snapshot of everything the presentation renders.
func (c *Controller) View() View {
	return View{
		Resource:   c.resource,
		State:      c.current.Value(),
		Enabled:    c.enabled.Value(),
		Loading:    c.loading.Value(),
		Hint:       c.hint.Value(),
		BeatmapSet: c.beatmapSet,
	}
}

// BindState calls fn with the current state and again on every replacement.
func (c *Controller) BindState(fn func(State)) (unbind func()) {
	return c.current.BindValueChanged(func(ev bindable.ValueChangedEvent[State]) { fn(ev.New) }, true)
}

// Subscribe calls fn with the current view and again whenever it changes.
func (c *Controller) Subscribe(fn func(View)) (unsubscribe func()) {
	return c.view.BindValueChanged(func(ev bindable.ValueChangedEvent[View]) { fn(ev.New) }, true)
}

// setState replaces the state and always notifies subscribers, even when
// the new value equals the old one.
func (c *Controller) setState(s State) {
	if c.current.Value() == s {
		c.current.TriggerChange()
		return
	}
	c.current.Set(s)
}

// updateState derives the hint from the state and the disable reason.
func (c *Controller) updateState() {
	switch c.reason {
	case reasonLoginRequired:
		c.hint.Set(c.strings.Get(i18n.KeyFavouriteLogin))
	case reasonFetchFailed:
		c.hint.Set(c.strings.Get(i18n.KeyFavouriteUnavailable))
	default:
		if c.current.Value().Favourited {
			c.hint.Set(c.strings.Get(i18n.KeyUnfavourite))
		} else {
			c.hint.Set(c.strings.Get(i18n.KeyFavourite))
		}
	}
}

func (c *Controller) remoteID() int64 {
	if c.beatmapSet != nil && c.beatmapSet.OnlineID > 0 {
		return c.beatmapSet.OnlineID
	}
	return c.resource.OnlineID
}

func (c *Controller) cancelRequests() {
	if c.fetchRequest != nil {
		c.fetchRequest.Cancel()
		c.fetchRequest = nil
	}
	if c.favouriteRequest != nil {
		c.favouriteRequest.Cancel()
		c.favouriteRequest = nil
	}
}

func (c *Controller) outcome(err error) {
	if c.report != nil {
		c.report(err)
	}
}

func (c *Controller) publish() {
	c.view.Set(c.View())
}
