package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/heart/internal/favourite"
	"github.com/five82/heart/internal/online"
	"github.com/five82/heart/internal/session"
)

func TestStore_PublishAndSnapshotClone(t *testing.T) {
	var s Store

	set := &online.APIBeatmapSet{OnlineID: 1, Title: "Blue Zenith", FavouriteCount: 3}
	view := favourite.View{
		Resource:   favourite.Resource{OnlineID: 1},
		State:      favourite.State{Favourited: true, Count: 3},
		Enabled:    true,
		BeatmapSet: set,
	}

	before := time.Now()
	s.Publish(view)

	snap := s.Snapshot()
	if !snap.HasView || snap.View.State.Count != 3 {
		t.Fatalf("snapshot view = %#v, want count=3 HasView=true", snap.View)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Neither the published nor the returned beatmap set may be shared.
	set.Title = "changed"
	snap.View.BeatmapSet.FavouriteCount = 999
	snap2 := s.Snapshot()
	if snap2.View.BeatmapSet.Title != "Blue Zenith" {
		t.Fatalf("Publish should clone beatmap set; got title %q", snap2.View.BeatmapSet.Title)
	}
	if snap2.View.BeatmapSet.FavouriteCount != 3 {
		t.Fatalf("Snapshot should clone beatmap set; got count %d want 3", snap2.View.BeatmapSet.FavouriteCount)
	}
}

func TestStore_RecordErrorKeepsPreviousView(t *testing.T) {
	var s Store

	s.Publish(favourite.View{State: favourite.State{Count: 7}})
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Record(origErr)

	snap := s.Snapshot()
	if snap.View.State != prev.View.State || !snap.HasView {
		t.Fatalf("view changed on error: got %#v want %#v", snap.View, prev.View)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should wrap the original")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	// Initially zero failures
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	tests := []struct {
		failures    int
		wantOffline bool
	}{
		{1, false},
		{2, true},
		{3, true},
	}
	for _, tt := range tests {
		s.Record(errors.New("fail"))
		snap = s.Snapshot()
		if snap.ConsecutiveFailures != tt.failures {
			t.Fatalf("ConsecutiveFailures = %d, want %d", snap.ConsecutiveFailures, tt.failures)
		}
		if snap.IsOffline() != tt.wantOffline {
			t.Fatalf("IsOffline() = %v, want %v with %d failures", snap.IsOffline(), tt.wantOffline, tt.failures)
		}
	}

	// Success resets counter
	s.Record(nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0 after success", snap.ConsecutiveFailures)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil after success", snap.LastError)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false after success")
	}
}

func TestStore_SetUser(t *testing.T) {
	var s Store
	if !s.Snapshot().User.IsGuest() {
		t.Fatal("zero store should report a guest")
	}
	s.SetUser(session.User{ID: 2, Username: "peppy"})
	if got := s.Snapshot().User.Username; got != "peppy" {
		t.Fatalf("User.Username = %q, want peppy", got)
	}
}
