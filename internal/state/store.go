package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/heart/internal/favourite"
	"github.com/five82/heart/internal/online"
	"github.com/five82/heart/internal/session"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	View                favourite.View
	HasView             bool
	User                session.User
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed requests
}

// IsOffline returns true when the API has failed for multiple requests in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Publish replaces the presented controller view.
func (s *Store) Publish(view favourite.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view.BeatmapSet = cloneBeatmapSet(view.BeatmapSet)
	s.snapshot.View = view
	s.snapshot.HasView = true
	s.snapshot.LastUpdated = time.Now()
}

// SetUser records the session user shown in the status line.
func (s *Store) SetUser(user session.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.User = user
}

// Record notes the outcome of a request. A nil err clears the last error and
// resets the failure count; otherwise the previous view is kept and the error
// is recorded for visibility.
func (s *Store) Record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.View.BeatmapSet = cloneBeatmapSet(s.snapshot.View.BeatmapSet)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneBeatmapSet(set *online.APIBeatmapSet) *online.APIBeatmapSet {
	if set == nil {
		return nil
	}
	dup := *set
	return &dup
}
