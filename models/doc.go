// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the dashboard API.

# Domain Types

Types shared with the upstream transit-data API (camelCase JSON, as served upstream):

  - Agency: one transit agency with ridership figures, feed flags and vote count
  - Feed: a GTFS feed attached to an agency (expiry, validity, official flag)
  - VoteCounts: entity id to vote count

Agency.PublicGTFS is the "has official feed" flag and Agency.GoogleGTFS the
"has alternate feed" flag. Only agencies without an official feed are vote-eligible:

	if agency.VoteEligible() { ... }

# Request Types

  - SearchRequest: query
  - ConnectFeedsRequest: feed ids, agency ids

# Response Types

  - CreateSessionResponse: session_token
  - DashboardView: the visible page plus sort, filter and pagination state
  - DashboardStatusResponse: status while loading or after a failed load
  - CastVoteResponse: agency_id, votes, counted
  - ConnectFeedsResponse: status
  - ErrorResponse: error, message

# Constants

Dashboard status values:

	StatusLoading = "loading"
	StatusReady   = "ready"
	StatusFailed  = "failed"

Feed validity:

	FeedValid   = "Yes"
	FeedInvalid = "No"
*/
package models
