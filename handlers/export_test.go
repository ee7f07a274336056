// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/transit-dashboard/models"
	"github.com/danielhkuo/transit-dashboard/testutil"
)

func TestExportCSV(t *testing.T) {
	store, _ := newSeededStore(t)
	h, sessions := newDashboard(t, store)
	token, _ := openSession(t, h, sessions)

	// export follows the session's sort order
	req := sessionRequest("POST", "/dashboard/sort/ridership", token, nil)
	req.SetPathValue("field", "ridership")
	h.Sort(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	h.ExportCSV(w, sessionRequest("GET", "/dashboard/export.csv", token, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Expected text/csv, got %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "agencies.csv") {
		t.Errorf("Expected attachment filename, got %s", w.Header().Get("Content-Disposition"))
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][9] != "Metro Area Longitude" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][0] != "Xville Transit" || rows[1][4] != "500" || rows[1][6] != "Yes" {
		t.Errorf("Unexpected first row: %v", rows[1])
	}
	if rows[2][0] != "Aburg Transit" || rows[2][6] != "No" {
		t.Errorf("Unexpected second row: %v", rows[2])
	}
}

func TestExportCSV_RespectsFilters(t *testing.T) {
	store, _ := newSeededStore(t)
	h, sessions := newDashboard(t, store)
	token, _ := openSession(t, h, sessions)

	req := sessionRequest("POST", "/dashboard/filters/officialFeed", token, nil)
	req.SetPathValue("rule", "officialFeed")
	h.ToggleFilter(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	h.ExportCSV(w, sessionRequest("GET", "/dashboard/export.csv", token, nil))

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "Xville Transit" {
		t.Errorf("Expected only Xville Transit, got %v", rows)
	}
}

func TestWriteAgenciesCSV(t *testing.T) {
	lat, lon := 40.5, -73.25
	agencies := []models.Agency{
		{Name: `Quote "Transit", Inc`, URL: "http://q.example", Metro: "Q", Population: 1200,
			Ridership: 30, PassengerMiles: 7, GoogleGTFS: true, Lat: &lat, Lon: &lon},
	}

	var buf bytes.Buffer
	if err := writeAgenciesCSV(&buf, agencies); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{`Quote "Transit", Inc`, "http://q.example", "Q", "1200", "30", "7", "No", "Yes", "40.5", "-73.25"}
	for i, v := range expected {
		if rows[1][i] != v {
			t.Errorf("column %d: expected %q, got %q", i, v, rows[1][i])
		}
	}
}

func TestWriteAgenciesCSV_MissingCoordinates(t *testing.T) {
	var buf bytes.Buffer
	if err := writeAgenciesCSV(&buf, []models.Agency{{Name: "Nowhere"}}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[1] != "Nowhere,,,0,0,0,No,No,," {
		t.Errorf("Unexpected row %q", lines[1])
	}
}
