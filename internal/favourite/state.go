package favourite

import (
	"fmt"

	"github.com/five82/heart/internal/online"
)

// State is the favourite flag and the server-reported favourite tally.
// Values are replaced wholesale, never mutated.
type State struct {
	Favourited bool
	Count      int
}

// Resource identifies the beatmap set a controller is bound to.
type Resource struct {
	OnlineID int64
}

// Published reports whether the resource exists on the server.
func (r Resource) Published() bool {
	return r.OnlineID > 0
}

// IntendedAction returns the action a toggle from s should request.
func IntendedAction(s State) online.FavouriteAction {
	if s.Favourited {
		return online.UnFavourite
	}
	return online.Favourite
}

// Apply returns the state after action has been confirmed by the server.
// The count is adjusted locally; the server does not return a fresh tally.
func Apply(prev State, action online.FavouriteAction) State {
	favourited := action == online.Favourite
	delta := -1
	if favourited {
		delta = 1
	}
	return State{Favourited: favourited, Count: prev.Count + delta}
}

// FetchError reports a failed metadata fetch.
type FetchError struct {
	OnlineID int64
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch beatmap set %d: %v", e.OnlineID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ToggleError reports a rejected or failed favourite/unfavourite request.
type ToggleError struct {
	OnlineID int64
	Action   online.FavouriteAction
	Err      error
}

func (e *ToggleError) Error() string {
	return fmt.Sprintf("%s beatmap set %d: %v", e.Action, e.OnlineID, e.Err)
}

func (e *ToggleError) Unwrap() error { return e.Err }
