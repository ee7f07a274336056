// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the dashboard's tabular view engine.

# Components

  - RecordStore: the joined agencies, written once, then only vote increments
  - Registry: named filter rules combined by AND, with opposite pairs
  - Project/Arrange: filter, sort and paginate into a Page
  - VoteTracker: per-session vote ledger with optimistic counts
  - Acquire/Join: concurrent fetch of agencies and vote counts, left join

An Engine owns one of each and serializes access with a mutex:

	e := engine.New(engine.Sources{
		Agencies: client,
		Votes:    client,
		Sink:     client,
	})
	if err := e.Load(ctx); err != nil {
		// e.Status() reports "failed"; e.Reload(ctx) retries
	}
	view, err := e.SortBy(engine.FieldRidership)

Start runs the same acquisition in the background. The status reads "loading"
as soon as Start returns and Done is closed once it settles.

# Acquisition

Agencies and vote counts are fetched in parallel and joined once both have
arrived. Agencies without a vote count get zero votes. A failed fetch leaves
the engine in the failed state; nothing is retried automatically.

# Filtering

Rules are toggled by name. Enabling a rule disables its opposite, so
"officialFeed" and "noOfficialFeed" are never on together. A free-text query
is applied on top of the rules.

# Sorting

Clicking the active field while ascending switches to descending; any other
click sorts ascending. Missing values (empty strings, null coordinates) sort
first. Ties break by agency id ascending.

# Pagination

Pages hold PageSize (100) agencies. A page index past the end is clamped to
the last page and the clamped index is kept.

# Voting

CastVote increments the count at once and sends the vote in the background.
A second vote for the same agency in the same engine is ignored. Failed vote
requests are logged and not rolled back.
*/
package engine
