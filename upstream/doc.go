// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package upstream is the HTTP client for the transit-data API.

Client satisfies the engine's AgencySource, VoteSource and VoteSink, and also
serves agency detail, the feed list and feed linking for the handlers:

	c := upstream.NewClient(nil, "https://transit.example", "gtfs-agencies")
	agencies, err := c.Agencies(ctx)

Reads are GET requests decoded as JSON. Votes and feed links are form POSTs
whose response bodies are ignored. Any non-2xx status is an error; 404 reports
ErrNotFound.
*/
package upstream
