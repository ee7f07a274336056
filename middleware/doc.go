// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) at debug level and completion
(status, duration_ms) at info level.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers
Content-Type, Authorization, X-Session-Token, X-Admin-Key.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.SearchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the real client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used as the rate limiter key after hashing.

# Rate Limiting

RateLimiter keeps one golang.org/x/time/rate token bucket per hashed client IP,
stored in an expiring LRU so idle clients are forgotten:

	votes := middleware.NewRateLimiter(cfg.VoteRate, 5, cfg.IPHashSalt)
	mux.HandleFunc("POST /dashboard/agencies/{id}/vote", votes.Limit(handler))

Limited requests get 429 with a Retry-After header.
*/
package middleware
