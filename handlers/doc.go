// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the transit dashboard API.

# Handler Types

Each handler is a struct with its dependencies:

  - DashboardHandler: per-session agency table (load, filter, sort, page, search, vote, export)
  - AgencyHandler: agency detail and the feed list, straight from the source
  - MapperHandler: admin-only linking of GTFS feeds to agencies

Handlers are created via constructor functions:

	src := upstream.NewClient(nil, cfg.UpstreamURL, cfg.VoteNamespace) // or db.NewStore
	sessions := session.NewManager(handlers.EngineSources(src), cfg.MaxSessions, cfg.SessionTTL)
	dashboard := handlers.NewDashboardHandler(sessions, cfg)

# Sessions

A browser first creates a session, then sends its token with every dashboard
request:

	POST /sessions                     → CreateSession (returns session_token)
	GET  /dashboard                    → GetDashboard (200 view, 202 loading, 502 failed)
	POST /dashboard/reload             → Reload (retry after a failed load)

Dashboard operations require the X-Session-Token header.

# Dashboard Operations

Every operation answers with the re-projected view:

	POST /dashboard/filters/{rule}     → ToggleFilter
	POST /dashboard/sort/{field}       → Sort (same field again flips direction)
	POST /dashboard/page/{page}        → GoToPage (clamped to the available pages)
	POST /dashboard/search             → Search
	POST /dashboard/agencies/{id}/vote → Vote
	GET  /dashboard/export.csv         → ExportCSV

A session counts one vote per agency. Agencies that already publish an
official GTFS feed answer 409. The vote count in the view is updated at once;
the request to the source runs in the background and is not rolled back if
it fails.

# Error Mapping

Engine errors map to statuses with errors.Is:

	engine.ErrNotReady          → 409
	engine.ErrAcquisitionFailed → 502
	engine.ErrUnknownRule       → 400
	engine.ErrUnknownField      → 400
	engine.ErrRecordNotFound    → 404
*/
package handlers
