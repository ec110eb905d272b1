// Package ui provides the Bubble Tea terminal interface for heart.
//
// # Layout
//
//	♥ heart  ● peppy  OFFLINE  14:32:15      header: session user, connection
//
//	  Camellia - Exit This Earth's Atomosphere
//	  mapped by Spectator · ranked
//
//	  ╭─────────────────────╮
//	  │ ♥  1,234 favourites │                 the favourite button
//	  ╰─────────────────────╯
//	  Unfavourite this beatmapset             hint
//
//	  Copied https://osu.ppy.sh/beatmapsets/…  notice or last error
//	f Favourite • ? Toggle help • q Quit     footer
//
// The heart is filled in the theme's heart colour when favourited and an
// outline otherwise. While a request is in flight it is replaced by a
// spinner, and the button border is dimmed whenever toggling is disabled.
//
// # Threading
//
// The favourite controller and the session provider are single-goroutine
// objects. The Model calls them only from Update and View, which Bubble Tea
// runs on its event loop. Request completions from the background worker are
// wrapped in a callbackMsg by Scheduler and executed in Update, so they share
// that goroutine.
//
// # Keys
//
//   - f / enter: favourite or unfavourite (ignored while disabled)
//   - L: sign out, or sign in again with the configured token
//   - y: copy the beatmap set URL to the clipboard
//   - T: cycle theme (saved to prefs.toml)
//   - ?: help overlay
//   - q / ctrl+c: quit
//
// # Data Flow
//
// New subscribes the state.Store to the controller view and the session user.
// Rendering reads store snapshots, so the header also reflects request
// failures recorded by the controller reporter and the session poller.
package ui
