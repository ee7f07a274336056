// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the transit dashboard API server.

The dashboard lists US transit agencies from the National Transit Database
together with community votes asking each agency to publish a GTFS feed.
Visitors filter, sort, search and page through the agencies, vote for the
ones still missing an official feed, and export what they see as CSV.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	UPSTREAM_URL=https://transit.example ADMIN_KEY_SALT=... go run .

Or serve straight from a database:

	go run . -s sql -t postgres -d "postgres://..." -admin-salt ...

An optional .env file in the working directory is loaded first.

# Configuration

Required settings:

  - UPSTREAM_URL (-u): transit-data API base URL (http source)
  - DATABASE_URL (-d): database URL (sql source)
  - ADMIN_KEY_SALT (-admin-salt): Secret for the mapper admin key

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - SOURCE (-s): http or sql (default: http)
  - LOG_LEVEL (-log-level): debug prints the mapper admin key at startup

See package cliparse for the full list.

# Logging

Logs go to stderr through log/slog, as text on a terminal and as JSON
otherwise.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - engine: per-session record store, filter rules, sort/paginate pipeline, vote ledger
  - session: engine registry with idle expiry
  - upstream: HTTP client for the transit-data API
  - db: schema and SQL-backed source
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - models: Request/response types
  - auth: Token generation and validation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
