// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/transit-dashboard/cliparse"
	"github.com/danielhkuo/transit-dashboard/db"
	"github.com/danielhkuo/transit-dashboard/models"
)

// TestNamespace is the vote namespace used throughout the tests
const TestNamespace = "gtfs-agencies"

// SetupTestDB creates a fresh in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		Source:         cliparse.SourceHTTP,
		UpstreamURL:    "http://upstream.invalid",
		DatabaseType:   "sqlite",
		VoteNamespace:  TestNamespace,
		AdminKeySalt:   "test-admin-salt",
		IPHashSalt:     "test-ip-salt",
		AcquireTimeout: 5 * time.Second,
		SessionTTL:     time.Hour,
		MaxSessions:    100,
		VoteRate:       1000,
	}
}

// ScenarioAgencies returns the two agencies used by most tests: agency 1 has
// an official feed, agency 2 does not.
func ScenarioAgencies() []models.Agency {
	return []models.Agency{
		{ID: 1, Name: "Xville Transit", URL: "http://xville.example", Metro: "X", Ridership: 500, PublicGTFS: true},
		{ID: 2, Name: "Aburg Transit", URL: "http://aburg.example", Metro: "A", Ridership: 900},
	}
}

// InsertAgency adds an agency row. PublicGTFS is derived from feed links and
// therefore ignored here.
func InsertAgency(t *testing.T, conn *sql.DB, a models.Agency) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO agency (id, name, url, ntd_id, metro, population, ridership, passenger_miles, google_gtfs, lat, lon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.Name, a.URL, nullable(a.NtdID), nullable(a.Metro), a.Population, a.Ridership, a.PassengerMiles,
		a.GoogleGTFS, optional(a.Lat), optional(a.Lon))
	if err != nil {
		t.Fatalf("Failed to create test agency: %v", err)
	}
}

// InsertFeed adds a feed row and links it to the given agencies
func InsertFeed(t *testing.T, conn *sql.DB, f models.Feed, agencyIDs ...int64) {
	t.Helper()

	status := "SUCCESSFUL"
	if f.Status == models.FeedInvalid {
		status = "FAILED"
	}

	_, err := conn.Exec(`
		INSERT INTO gtfs_feed (id, agency_name, agency_url, feed_base_url, official, expires, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID, f.AgencyName, f.AgencyURL, nullable(f.FeedBaseURL), f.Official, optional(f.Expires), status)
	if err != nil {
		t.Fatalf("Failed to create test feed: %v", err)
	}

	for _, agencyID := range agencyIDs {
		_, err := conn.Exec(`INSERT INTO agency_feed (agency_id, feed_id) VALUES ($1, $2)`, agencyID, f.ID)
		if err != nil {
			t.Fatalf("Failed to link test feed: %v", err)
		}
	}
}

// InsertVotes adds n votes for an agency
func InsertVotes(t *testing.T, conn *sql.DB, namespace string, agencyID int64, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		_, err := conn.Exec(`
			INSERT INTO vote (id, namespace, entity_id, cast_at)
			VALUES ($1, $2, $3, $4)
		`, uuid.NewString(), namespace, agencyID, time.Now().UTC())
		if err != nil {
			t.Fatalf("Failed to create test vote: %v", err)
		}
	}
}

// SeedScenario inserts ScenarioAgencies, an official feed for agency 1 and
// three votes for agency 2.
func SeedScenario(t *testing.T, conn *sql.DB) {
	t.Helper()

	for _, a := range ScenarioAgencies() {
		InsertAgency(t, conn, a)
	}
	InsertFeed(t, conn, models.Feed{ID: 10, AgencyName: "Xville Transit", AgencyURL: "http://xville.example", Official: true}, 1)
	InsertVotes(t, conn, TestNamespace, 2, 3)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
