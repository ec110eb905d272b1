// Package state provides thread-safe state management for heart.
//
// # Overview
//
// The Store holds the latest favourite controller view together with the
// session user and the outcome of recent requests. The controller publishes
// into it from its execution context and readers (the status line, the
// headless commands) take snapshots whenever they render.
//
//	Producer (controller loop):      Consumer (renderer):
//	┌──────────────────┐             ┌──────────────────┐
//	│ Subscribe(view)  │             │                  │
//	│      ↓           │             │                  │
//	│ store.Publish()  │────────────→│ store.Snapshot() │
//	│ store.Record()   │   (mutex)   │      ↓           │
//	│                  │             │  render          │
//	└──────────────────┘             └──────────────────┘
//
// # Update Semantics
//
// Publish replaces the view. Record takes the outcome of a request:
//
//	store.Record(nil)
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	store.Record(err)
//	→ snapshot.View = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// Snapshot.IsOffline reports two or more failures in a row, which the UI
// shows as an offline badge.
//
// # Copying
//
// The cached beatmap set is copied on Publish and on Snapshot, and errors are
// rewrapped, so a snapshot never shares memory with the store.
//
// The zero Store is ready to use.
package state
