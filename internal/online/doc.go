// Package online provides the HTTP client and request queue for the osu! web
// API.
//
// # Overview
//
// The package is split into three layers:
//
//   - client.go: Client, a thin HTTP wrapper over the API endpoints
//   - request.go: cancellable requests carrying Success/Failure callbacks
//   - access.go: Access, a queue that performs requests on a background
//     worker and posts completions to a Scheduler
//
// # Endpoints
//
//   - GET  /api/v2/beatmapsets/{id}             beatmap set with has_favourited
//   - POST /api/v2/beatmapsets/{id}/favourites  form action=favourite|unfavourite
//   - GET  /api/v2/me                           signed-in user
//
// # Request Lifecycle
//
//	NewGetBeatmapSetRequest(id)
//	    │  set Success / Failure
//	    ▼
//	access.Queue(req) ──> worker goroutine ──> Transport call
//	                                              │
//	                      scheduler.Schedule(complete)
//	                                              ▼
//	                      Success(payload) or Failure(err), at most once
//
// Cancel is idempotent. Once it takes effect neither callback fires, even if
// the HTTP call already returned and its completion is sitting in the
// scheduler. Cancelling a completed request does nothing.
//
// # Usage Example
//
//	client, err := online.NewClient("https://osu.ppy.sh", online.WithToken(token))
//	if err != nil {
//		return err
//	}
//	access := online.NewAccess(ctx, client, l, logger)
//	access.Start()
//
//	req := online.NewGetBeatmapSetRequest(39804)
//	req.Success = func(set *online.APIBeatmapSet) { ... }
//	req.Failure = func(err error) { ... }
//	access.Queue(req)
//
// # Errors
//
// HTTP statuses >= 400 become *APIError. A 401 additionally matches
// ErrUnauthorized via errors.Is, which the session poller uses to detect
// sign-out.
package online
