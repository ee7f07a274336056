// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to a postgres or sqlite database and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case "postgres":
		driver = "postgres"
	case "sqlite", "":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// in-memory databases exist per connection
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The statements stay within the subset shared by postgres and sqlite.
const schema = `
-- Agencies
CREATE TABLE IF NOT EXISTS agency (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    url TEXT,
    ntd_id TEXT,
    metro TEXT,
    population BIGINT NOT NULL DEFAULT 0,
    ridership BIGINT NOT NULL DEFAULT 0,
    passenger_miles BIGINT NOT NULL DEFAULT 0,
    google_gtfs BOOLEAN NOT NULL DEFAULT FALSE,
    lat DOUBLE PRECISION,
    lon DOUBLE PRECISION,
    disabled BOOLEAN NOT NULL DEFAULT FALSE
);

-- GTFS Feeds
CREATE TABLE IF NOT EXISTS gtfs_feed (
    id BIGINT PRIMARY KEY,
    agency_name TEXT NOT NULL,
    agency_url TEXT NOT NULL,
    feed_base_url TEXT,
    official BOOLEAN NOT NULL DEFAULT FALSE,
    expires TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'SUCCESSFUL' CHECK (status IN ('SUCCESSFUL', 'FAILED')),
    superseded_by BIGINT
);

-- Agency <-> Feed links
CREATE TABLE IF NOT EXISTS agency_feed (
    agency_id BIGINT NOT NULL REFERENCES agency(id) ON DELETE CASCADE,
    feed_id BIGINT NOT NULL REFERENCES gtfs_feed(id) ON DELETE CASCADE,
    PRIMARY KEY (agency_id, feed_id)
);

CREATE INDEX IF NOT EXISTS idx_agency_feed_feed_id ON agency_feed(feed_id);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    namespace TEXT NOT NULL,
    entity_id BIGINT NOT NULL,
    cast_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vote_namespace_entity ON vote(namespace, entity_id);
`
