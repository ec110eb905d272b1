// Package app is the composition root for heart.
//
// # Overview
//
// Run wires configuration, the session, the API client and the favourite
// controller into the Bubble Tea UI. RunStatus and RunToggle wire the same
// pieces to a loop.Loop for one-shot use from scripts.
//
// # Startup
//
//  1. Load config.toml, .env and HEART_* variables (config.Load)
//  2. Load UI preferences (prefs.Load) and pick a locale
//  3. Open the log file and build the API client
//  4. Sign in with the configured access token, if any
//  5. Create the controller and bind it to the session user
//  6. Start the request worker and the session poller
//  7. Run the TUI until the user quits or the context is cancelled
//
// The locale is the first non-empty of: config locale, prefs locale, then
// LC_ALL, LC_MESSAGES or LANG.
//
// # Data Flow
//
//	┌────────────┐  Queue   ┌─────────────┐  HTTP  ┌─────────┐
//	│ Controller │────────> │ online.Access│──────> │ osu! API│
//	└─────▲──────┘          └──────┬──────┘        └─────────┘
//	      │     callbacks via      │
//	      └──── ui.Scheduler <─────┘
//
// Every request callback is delivered through the scheduler, so the
// controller, the session and the model are only touched from the Bubble Tea
// update loop.
//
// # Session Poller
//
// StartPoller re-checks the token against /api/v2/me every PollInterval
// (default one minute). A rejected token signs the session out, which the
// controller observes like any other sign-out. Consecutive failures back off
// exponentially up to 30 seconds and mark the header OFFLINE after two.
//
// # Errors
//
// Configuration, log file and client errors are returned from Run. Request
// failures are logged and shown in the UI. The headless commands return the
// last reported request error so their exit status reflects it.
package app
