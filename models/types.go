// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Dashboard status constants
const (
	StatusLoading = "loading"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

// Feed validity as reported by the upstream API
const (
	FeedValid   = "Yes"
	FeedInvalid = "No"
)

// Domain types

// Agency is one transit agency as served by the upstream API, joined with its
// vote count. Feeds and NtdID are only filled in by the single-agency detail.
type Agency struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	URL            string   `json:"url"`
	Metro          string   `json:"metro"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	Population     int64    `json:"population"`
	Ridership      int64    `json:"ridership"`
	PassengerMiles int64    `json:"passengerMiles"`
	PublicGTFS     bool     `json:"publicGtfs"`
	GoogleGTFS     bool     `json:"googleGtfs"`
	Votes          int      `json:"votes"`
	NtdID          string   `json:"ntdId,omitempty"`
	Feeds          []Feed   `json:"feeds,omitempty"`
}

// VoteEligible reports whether the dashboard offers a vote control for the agency.
// Votes only exist to crowd-source missing official feeds.
func (a Agency) VoteEligible() bool {
	return !a.PublicGTFS
}

type Feed struct {
	ID          int64      `json:"id"`
	AgencyName  string     `json:"agencyName"`
	AgencyURL   string     `json:"agencyUrl"`
	FeedBaseURL string     `json:"feedBaseUrl,omitempty"`
	Official    bool       `json:"official"`
	Expires     *time.Time `json:"expires"`
	Status      string     `json:"status"`
}

// entity id -> vote count
type VoteCounts map[int64]int

// Request types

type SearchRequest struct {
	Query string `json:"query"`
}

type ConnectFeedsRequest struct {
	Feed   []int64 `json:"feed"`
	Agency []int64 `json:"agency"`
}

// Response types

type CreateSessionResponse struct {
	SessionToken string `json:"session_token"`
}

type DashboardView struct {
	Status     string          `json:"status"`
	Agencies   []Agency        `json:"agencies"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
	PageSize   int             `json:"page_size"`
	SortField  string          `json:"sort_field"`
	SortDesc   bool            `json:"sort_descending"`
	Filters    map[string]bool `json:"filters"`
	Query      string          `json:"query"`
	Voted      []int64         `json:"voted"`
	Summary    string          `json:"summary"`
}

type DashboardStatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type CastVoteResponse struct {
	AgencyID int64 `json:"agency_id"`
	Votes    int   `json:"votes"`
	Counted  bool  `json:"counted"`
}

type ConnectFeedsResponse struct {
	Status string `json:"status"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
