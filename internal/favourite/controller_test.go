package favourite

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/heart/internal/bindable"
	"github.com/five82/heart/internal/i18n"
	"github.com/five82/heart/internal/online"
	"github.com/five82/heart/internal/session"
)

type fakeAPI struct {
	queued []online.APIRequest
}

func (f *fakeAPI) Queue(req online.APIRequest) {
	f.queued = append(f.queued, req)
}

func (f *fakeAPI) fetches() []*online.GetBeatmapSetRequest {
	var out []*online.GetBeatmapSetRequest
	for _, r := range f.queued {
		if req, ok := r.(*online.GetBeatmapSetRequest); ok {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeAPI) toggles() []*online.PostBeatmapFavouriteRequest {
	var out []*online.PostBeatmapFavouriteRequest
	for _, r := range f.queued {
		if req, ok := r.(*online.PostBeatmapFavouriteRequest); ok {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeAPI) lastFetch(t *testing.T) *online.GetBeatmapSetRequest {
	t.Helper()
	all := f.fetches()
	require.NotEmpty(t, all, "no fetch queued")
	return all[len(all)-1]
}

func (f *fakeAPI) lastToggle(t *testing.T) *online.PostBeatmapFavouriteRequest {
	t.Helper()
	all := f.toggles()
	require.NotEmpty(t, all, "no toggle queued")
	return all[len(all)-1]
}

var (
	signedIn = session.User{ID: 2, Username: "peppy"}
	strs     = i18n.New("en")
)

func newTestController(id int64, opts ...Option) (*Controller, *fakeAPI) {
	api := &fakeAPI{}
	return New(Resource{OnlineID: id}, api, opts...), api
}

// loaded returns a controller that has fetched {favourited, count}.
func loaded(t *testing.T, favourited bool, count int, opts ...Option) (*Controller, *fakeAPI) {
	t.Helper()
	c, api := newTestController(241526, opts...)
	c.OnSessionUserChanged(signedIn)
	api.lastFetch(t).TriggerSuccess(&online.APIBeatmapSet{OnlineID: 241526, HasFavourited: favourited, FavouriteCount: count})
	require.True(t, c.Enabled())
	return c, api
}

func TestNew_StartsDisabled(t *testing.T) {
	c, api := newTestController(1)
	assert.Equal(t, State{}, c.State())
	assert.False(t, c.Enabled())
	assert.False(t, c.Loading())
	assert.Empty(t, api.queued)
}

func TestGuestIsDisabledWithoutRequests(t *testing.T) {
	c, api := newTestController(241526)
	c.OnSessionUserChanged(session.Guest)

	assert.Empty(t, api.queued)
	assert.False(t, c.Enabled())
	assert.False(t, c.Loading())
	assert.Equal(t, State{}, c.State())
	assert.Equal(t, strs.Get(i18n.KeyFavouriteLogin), c.Hint())
}

func TestUnpublishedIsDisabledWithoutRequests(t *testing.T) {
	for _, id := range []int64{0, -1} {
		c, api := newTestController(id)
		c.OnSessionUserChanged(signedIn)

		assert.Empty(t, api.queued, "id %d", id)
		assert.False(t, c.Enabled())
		assert.Equal(t, State{}, c.State())
		assert.Equal(t, strs.Get(i18n.KeyFavouriteLogin), c.Hint())
	}
}

func TestFetchThenFavourite(t *testing.T) {
	c, api := newTestController(241526)
	c.OnSessionUserChanged(signedIn)

	fetch := api.lastFetch(t)
	assert.Equal(t, int64(241526), fetch.OnlineID)
	assert.False(t, c.Enabled())
	assert.True(t, c.Loading())

	fetch.TriggerSuccess(&online.APIBeatmapSet{OnlineID: 241526, HasFavourited: false, FavouriteCount: 10})
	assert.Equal(t, State{Favourited: false, Count: 10}, c.State())
	assert.True(t, c.Enabled())
	assert.False(t, c.Loading())
	assert.Equal(t, strs.Get(i18n.KeyFavourite), c.Hint())

	require.True(t, c.Toggle())
	toggle := api.lastToggle(t)
	assert.Equal(t, online.Favourite, toggle.Action)
	assert.Equal(t, int64(241526), toggle.OnlineID)
	assert.False(t, c.Enabled())
	assert.True(t, c.Loading())
	assert.Equal(t, State{Favourited: false, Count: 10}, c.State(), "no optimistic update")

	toggle.TriggerSuccess(struct{}{})
	assert.Equal(t, State{Favourited: true, Count: 11}, c.State())
	assert.True(t, c.Enabled())
	assert.False(t, c.Loading())
	assert.Equal(t, strs.Get(i18n.KeyUnfavourite), c.Hint())
}

func TestUnfavouriteFailureLeavesStateUntouched(t *testing.T) {
	var logs bytes.Buffer
	var reported []error
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	c, api := loaded(t, true, 5, WithLogger(logger), WithReporter(func(err error) { reported = append(reported, err) }))

	require.True(t, c.Toggle())
	toggle := api.lastToggle(t)
	assert.Equal(t, online.UnFavourite, toggle.Action)

	toggle.TriggerFailure(errors.New("server error"))
	assert.Equal(t, State{Favourited: true, Count: 5}, c.State())
	assert.True(t, c.Enabled())
	assert.False(t, c.Loading())
	assert.Contains(t, logs.String(), "failed to toggle favourite")
	assert.Contains(t, logs.String(), "action=unfavourite")
	assert.Contains(t, logs.String(), "server error")

	require.Len(t, reported, 2)
	assert.NoError(t, reported[0])
	var toggleErr *ToggleError
	require.ErrorAs(t, reported[1], &toggleErr)
	assert.Equal(t, online.UnFavourite, toggleErr.Action)
	assert.Equal(t, int64(241526), toggleErr.OnlineID)
}

func TestRapidDoubleToggleAppliesOnlyLatest(t *testing.T) {
	c, api := loaded(t, false, 0)

	require.True(t, c.Toggle())
	first := api.lastToggle(t)
	require.True(t, c.Toggle())
	second := api.lastToggle(t)
	require.NotSame(t, first, second)

	assert.True(t, first.Cancelled())
	assert.Equal(t, online.Favourite, second.Action, "state is unchanged so the intent repeats")

	first.TriggerSuccess(struct{}{})
	assert.Equal(t, State{}, c.State(), "cancelled toggle must not apply")
	assert.False(t, c.Enabled())

	second.TriggerSuccess(struct{}{})
	assert.Equal(t, State{Favourited: true, Count: 1}, c.State())
	assert.True(t, c.Enabled())
}

func TestSignOutDuringFetchKeepsGuestState(t *testing.T) {
	c, api := newTestController(241526)
	c.OnSessionUserChanged(signedIn)
	fetch := api.lastFetch(t)

	c.OnSessionUserChanged(session.Guest)
	assert.True(t, fetch.Cancelled())
	assert.Equal(t, State{}, c.State())
	assert.False(t, c.Enabled())
	assert.False(t, c.Loading())

	fetch.TriggerSuccess(&online.APIBeatmapSet{OnlineID: 241526, HasFavourited: true, FavouriteCount: 50})
	assert.Equal(t, State{}, c.State())
	assert.False(t, c.Enabled())
	assert.Equal(t, strs.Get(i18n.KeyFavouriteLogin), c.Hint())
}

func TestSignOutCancelsPendingToggle(t *testing.T) {
	c, api := loaded(t, false, 3)
	require.True(t, c.Toggle())
	toggle := api.lastToggle(t)

	c.OnSessionUserChanged(session.Guest)
	assert.True(t, toggle.Cancelled())
	assert.False(t, c.Toggle(), "no metadata once signed out")

	toggle.TriggerSuccess(struct{}{})
	assert.Equal(t, State{}, c.State())
	assert.False(t, c.Enabled())
}

func TestRefetchCancelsPendingToggle(t *testing.T) {
	c, api := loaded(t, false, 10)
	require.True(t, c.Toggle())
	toggle := api.lastToggle(t)

	c.OnSessionUserChanged(session.User{ID: 2, Username: "peppy2"})
	fetch := api.lastFetch(t)
	assert.True(t, toggle.Cancelled())
	assert.False(t, c.Enabled())
	assert.True(t, c.Loading())

	toggle.TriggerSuccess(struct{}{})
	assert.False(t, c.Enabled(), "stale toggle must not end the fetch")
	assert.True(t, c.Loading())
	assert.Equal(t, State{Favourited: false, Count: 10}, c.State())

	toggle.TriggerFailure(errors.New("late"))
	assert.True(t, c.Loading())

	fetch.TriggerSuccess(&online.APIBeatmapSet{OnlineID: 241526, HasFavourited: true, FavouriteCount: 11})
	assert.Equal(t, State{Favourited: true, Count: 11}, c.State())
	assert.True(t, c.Enabled())
	assert.False(t, c.Loading())
}

func TestFetchIsSupersededByNewerFetch(t *testing.T) {
	c, api := newTestController(241526)
	c.OnSessionUserChanged(signedIn)
	first := api.lastFetch(t)
	c.OnSessionUserChanged(signedIn)
	second := api.lastFetch(t)

	require.Len(t, api.fetches(), 2)
	assert.True(t, first.Cancelled())

	first.TriggerSuccess(&online.APIBeatmapSet{HasFavourited: true, FavouriteCount: 99})
	assert.Equal(t, State{}, c.State())

	second.TriggerSuccess(&online.APIBeatmapSet{OnlineID: 241526, HasFavourited: true, FavouriteCount: 7})
	assert.Equal(t, State{Favourited: true, Count: 7}, c.State())
	assert.True(t, c.Enabled())
}

func TestFetchFailureDisables(t *testing.T) {
	var logs bytes.Buffer
	var reported []error
	c, api := newTestController(241526,
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithReporter(func(err error) { reported = append(reported, err) }))
	c.OnSessionUserChanged(signedIn)

	cause := &online.APIError{Status: 404, Path: "/api/v2/beatmapsets/241526"}
	api.lastFetch(t).TriggerFailure(cause)

	assert.False(t, c.Enabled())
	assert.False(t, c.Loading())
	assert.Equal(t, State{}, c.State())
	assert.Equal(t, strs.Get(i18n.KeyFavouriteUnavailable), c.Hint())
	assert.Nil(t, c.BeatmapSet())
	assert.False(t, c.Toggle())
	assert.Contains(t, logs.String(), "failed to fetch beatmap info")

	require.Len(t, reported, 1)
	var fetchErr *FetchError
	require.ErrorAs(t, reported[0], &fetchErr)
	assert.ErrorIs(t, reported[0], cause)
}

func TestToggleBeforeFetchIsNoop(t *testing.T) {
	c, api := newTestController(241526)
	assert.False(t, c.Toggle())
	c.OnSessionUserChanged(signedIn)
	assert.False(t, c.Toggle())
	assert.Empty(t, api.toggles())
}

func TestCountFollowsConfirmedToggles(t *testing.T) {
	c, api := loaded(t, false, 10)

	actions := []online.FavouriteAction{online.Favourite, online.UnFavourite, online.Favourite}
	for _, want := range actions {
		require.True(t, c.Toggle())
		toggle := api.lastToggle(t)
		assert.Equal(t, want, toggle.Action)
		toggle.TriggerSuccess(struct{}{})
	}
	assert.Equal(t, State{Favourited: true, Count: 11}, c.State())

	// A failure between successes changes nothing.
	require.True(t, c.Toggle())
	api.lastToggle(t).TriggerFailure(errors.New("boom"))
	assert.Equal(t, State{Favourited: true, Count: 11}, c.State())
}

func TestToggleUsesRemoteID(t *testing.T) {
	c, api := newTestController(100)
	c.OnSessionUserChanged(signedIn)
	api.lastFetch(t).TriggerSuccess(&online.APIBeatmapSet{OnlineID: 200})

	require.True(t, c.Toggle())
	assert.Equal(t, int64(200), api.lastToggle(t).OnlineID)
}

func TestBindState_ReplaysAndNotifiesOnEveryReplacement(t *testing.T) {
	c, api := newTestController(241526)

	var seen []State
	unbind := c.BindState(func(s State) { seen = append(seen, s) })
	require.Equal(t, []State{{}}, seen)

	c.OnSessionUserChanged(signedIn)
	api.lastFetch(t).TriggerSuccess(&online.APIBeatmapSet{OnlineID: 241526})
	// Equal value, but still a replacement.
	assert.Equal(t, []State{{}, {}}, seen)

	unbind()
	require.True(t, c.Toggle())
	api.lastToggle(t).TriggerSuccess(struct{}{})
	assert.Len(t, seen, 2)
}

func TestGuestAfterGuestRepropagatesState(t *testing.T) {
	c, _ := newTestController(241526)
	var n int
	c.BindState(func(State) { n++ })
	c.OnSessionUserChanged(session.Guest)
	c.OnSessionUserChanged(session.Guest)
	assert.Equal(t, 3, n)
}

func TestSubscribe_ReceivesViews(t *testing.T) {
	c, api := newTestController(241526)

	var views []View
	c.Subscribe(func(v View) { views = append(views, v) })
	require.Len(t, views, 1)
	assert.False(t, views[0].Enabled)

	c.OnSessionUserChanged(signedIn)
	last := views[len(views)-1]
	assert.True(t, last.Loading)
	assert.False(t, last.Enabled)

	set := &online.APIBeatmapSet{OnlineID: 241526, Title: "Yomi yori", HasFavourited: true, FavouriteCount: 4}
	api.lastFetch(t).TriggerSuccess(set)
	last = views[len(views)-1]
	assert.Equal(t, View{
		Resource:   Resource{OnlineID: 241526},
		State:      State{Favourited: true, Count: 4},
		Enabled:    true,
		Loading:    false,
		Hint:       strs.Get(i18n.KeyUnfavourite),
		BeatmapSet: set,
	}, last)
}

func TestBind_FollowsSessionUser(t *testing.T) {
	users := bindable.New(session.Guest)
	c, api := newTestController(241526)
	c.Bind(users)
	assert.Empty(t, api.queued)
	assert.Equal(t, strs.Get(i18n.KeyFavouriteLogin), c.Hint())

	users.Set(signedIn)
	require.Len(t, api.fetches(), 1)

	c.Close()
	assert.True(t, api.lastFetch(t).Cancelled())
	users.Set(session.User{ID: 3})
	assert.Len(t, api.fetches(), 1, "closed controllers ignore session changes")
	assert.Equal(t, 0, users.Subscribers())
}

func TestLocalisedHints(t *testing.T) {
	de := i18n.New("de")
	c, _ := newTestController(241526, WithStrings(de))
	c.OnSessionUserChanged(session.Guest)
	assert.Equal(t, de.Get(i18n.KeyFavouriteLogin), c.Hint())
}

func TestIntendedActionAndApply(t *testing.T) {
	assert.Equal(t, online.Favourite, IntendedAction(State{}))
	assert.Equal(t, online.UnFavourite, IntendedAction(State{Favourited: true}))
	assert.Equal(t, State{Favourited: true, Count: 1}, Apply(State{}, online.Favourite))
	assert.Equal(t, State{Favourited: false, Count: 4}, Apply(State{Favourited: true, Count: 5}, online.UnFavourite))
}
