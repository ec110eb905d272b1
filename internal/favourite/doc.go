// Package favourite keeps the favourite state of one beatmap set in sync with
// the server.
//
// # Overview
//
// A Controller owns a local State (favourited flag plus favourite count) for a
// single Resource. The server is the authority: the state is loaded from a
// beatmap set fetch and changed only after a favourite or unfavourite request
// has been confirmed. Nothing is updated optimistically.
//
// # Lifecycle
//
//	Unknown ──guest / unpublished──→ Disabled (state {false, 0})
//	Unknown ──signed in──────────→ Loading(fetch)
//	Loading(fetch) ──success──→ Ready (state from payload)
//	Loading(fetch) ──failure──→ Disabled (hint: status unavailable)
//	Ready ──Toggle──→ Loading(toggle)
//	Loading(toggle) ──success──→ Ready (state = Apply(state, action))
//	Loading(toggle) ──failure──→ Ready (state unchanged)
//
// Any session change cancels whatever is in flight and re-enters the graph
// from Unknown, so a toggle pending across a re-fetch is dropped.
//
// # Cancellation
//
// At most one fetch and one toggle are outstanding. Starting a new one cancels
// its predecessor, and every callback additionally checks that its request is
// still the current one before touching state. A late response from a
// superseded request is therefore dropped even if it raced the cancel.
//
// # Threading
//
// The controller is not safe for concurrent use. Its methods and the request
// callbacks must all run on one goroutine: the Bubble Tea update loop in the
// TUI, or a loop.Loop in the headless commands. online.Access posts
// completions through a Scheduler to make that hold.
//
// # Presentation
//
// Subscribe delivers a View (state, enabled, loading, hint and the cached
// beatmap set) immediately and after every change. BindState follows the
// state alone and fires on every replacement, including replacements with an
// equal value.
package favourite
