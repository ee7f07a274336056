// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the transit dashboard API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(src, sessions, cfg)

# Endpoints

Health:

	GET /health

Sessions:

	POST /sessions - Create a session and start loading agencies

Dashboard (requires X-Session-Token):

	GET  /dashboard                    - Current page of agencies
	POST /dashboard/reload             - Retry a failed load
	POST /dashboard/filters/{rule}     - Toggle a filter rule
	POST /dashboard/sort/{field}       - Sort by a field
	POST /dashboard/page/{page}        - Jump to a page
	POST /dashboard/search             - Free-text search
	POST /dashboard/agencies/{id}/vote - Vote for an agency (rate limited per IP)
	GET  /dashboard/export.csv         - Filtered, sorted agencies as CSV

Source (public):

	GET /agencies/{id} - Agency detail with feeds
	GET /feeds?q=      - GTFS feeds, optionally filtered

Feed mapping (admin, requires X-Admin-Key):

	POST /mapper/connect - Link feeds to agencies

# Handler Initialization

The router creates handler instances with dependency injection:

	dashboardHandler := handlers.NewDashboardHandler(sessions, cfg)
	agencyHandler := handlers.NewAgencyHandler(src)
	mapperHandler := handlers.NewMapperHandler(src, cfg)

The vote route is wrapped in a middleware.RateLimiter allowing cfg.VoteRate
votes per second per client IP.
*/
package router
