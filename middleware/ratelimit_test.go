// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, "salt")

	calls := 0
	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/dashboard/agencies/1/vote", nil)
		req.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		handler(w, req)
		return w
	}

	// burst of two, then limited
	for i := 0; i < 2; i++ {
		if w := request("10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := request("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Error("Expected JSON error body")
	}

	// other clients keep their own budget
	if w := request("10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("Expected other client to pass, got %d", w.Code)
	}

	if calls != 3 {
		t.Errorf("Expected 3 handler calls, got %d", calls)
	}
}

func TestRateLimit_UsesForwardedIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, "salt")

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	if !rl.Allow(req) {
		t.Fatal("first request should pass")
	}

	// same forwarded client behind a different proxy address
	req = httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "10.9.9.9:1"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.9.9.9")
	if rl.Allow(req) {
		t.Error("second request from the same client should be limited")
	}
}

func TestRetryAfter(t *testing.T) {
	testCases := []struct {
		name      string
		perSecond float64
		expected  int
	}{
		{"fast", 10, 1},
		{"two per second", 2, 1},
		{"one every four seconds", 0.25, 4},
		{"zero rate", 0, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rl := NewRateLimiter(tc.perSecond, 1, "salt")
			if got := rl.retryAfter(); got != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestWithLogging_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest("GET", "/dashboard", nil))

	if !strings.Contains(buf.String(), "status=202") {
		t.Errorf("Expected status in log line, got %q", buf.String())
	}
}
