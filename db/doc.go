// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and the SQL data source.

# Connections

Open picks the driver from the database type:

	conn, err := db.Open("postgres", "postgres://...") // github.com/lib/pq
	conn, err := db.Open("sqlite", "file:dashboard.db") // modernc.org/sqlite

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - agency: NTD agencies with ridership figures and coordinates
  - gtfs_feed: GTFS feeds; superseded feeds point at their replacement
  - agency_feed: many-to-many link between agencies and feeds
  - vote: one row per vote cast, scoped by namespace

# Relationships

	agency *──* gtfs_feed (via agency_feed)
	agency 1──* vote (by entity_id, no foreign key)

# Store

Store serves the dashboard straight from these tables, as an alternative to the
upstream HTTP API:

	store := db.NewStore(conn, "gtfs-agencies")
	agencies, err := store.Agencies(ctx)
	counts, err := store.VoteCounts(ctx)
	err = store.CastVote(ctx, agencyID)

An agency has a public GTFS feed when at least one feed is linked to it.
Disabled agencies are left out of the list but still served by Agency.
*/
package db
