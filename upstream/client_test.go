// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
)

type recordedForm struct {
	path string
	form map[string][]string
}

func newTestServer(t *testing.T) (*httptest.Server, *[]recordedForm) {
	t.Helper()

	var mu sync.Mutex
	posts := []recordedForm{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+AgenciesPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 1, "name": "Xville Transit", "url": "http://x.example", "metro": "X", "ridership": 500,
			 "population": 1000, "passengerMiles": 20, "publicGtfs": true, "googleGtfs": false, "lat": 40.1, "lon": -100.2},
			{"id": 2, "name": "Aburg Transit", "url": "http://a.example", "metro": null, "ridership": 900,
			 "publicGtfs": false, "googleGtfs": true, "lat": null, "lon": null}
		]`))
	})
	mux.HandleFunc("GET "+CountsPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("namespace") != "gtfs-agencies" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"2": 3, "not-an-id": 8}`))
	})
	mux.HandleFunc("GET "+AgencyPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id": 1, "name": "Xville Transit", "ntdId": "00001",
			"feeds": [{"id": 10, "agencyName": "Xville", "agencyUrl": "http://x.example",
			           "official": true, "expires": "2026-01-01T00:00:00Z", "status": "Yes"}]}`))
	})
	mux.HandleFunc("GET "+FeedsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 10, "agencyName": "Xville", "agencyUrl": "http://x.example", "official": true, "expires": null, "status": "No"}]`))
	})
	record := func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		posts = append(posts, recordedForm{path: r.URL.Path, form: r.PostForm})
		mu.Unlock()
		w.Write([]byte(`{"status": "success"}`))
	}
	mux.HandleFunc("POST "+VotePath, record)
	mux.HandleFunc("POST "+ConnectPath, record)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &posts
}

func TestAgencies(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(srv.Client(), srv.URL+"/", "gtfs-agencies")

	agencies, err := c.Agencies(context.Background())
	if err != nil {
		t.Fatalf("Agencies() error = %v", err)
	}
	if len(agencies) != 2 {
		t.Fatalf("expected 2 agencies, got %d", len(agencies))
	}

	x := agencies[0]
	if x.ID != 1 || x.Name != "Xville Transit" || !x.PublicGTFS || x.Ridership != 500 || x.PassengerMiles != 20 {
		t.Errorf("unexpected first agency: %+v", x)
	}
	if x.Lat == nil || *x.Lat != 40.1 {
		t.Errorf("expected lat 40.1, got %v", x.Lat)
	}

	a := agencies[1]
	if a.Metro != "" || a.Lat != nil || !a.GoogleGTFS {
		t.Errorf("null fields should decode to zero values: %+v", a)
	}
}

func TestVoteCounts(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(srv.Client(), srv.URL, "gtfs-agencies")

	counts, err := c.VoteCounts(context.Background())
	if err != nil {
		t.Fatalf("VoteCounts() error = %v", err)
	}
	if len(counts) != 1 || counts[2] != 3 {
		t.Errorf("expected {2: 3}, got %v", counts)
	}
}

func TestVoteCountsWrongNamespace(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(srv.Client(), srv.URL, "other")

	if _, err := c.VoteCounts(context.Background()); err == nil {
		t.Error("expected error for rejected namespace")
	}
}

func TestAgencyDetail(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(srv.Client(), srv.URL, "gtfs-agencies")

	agency, err := c.Agency(context.Background(), 1)
	if err != nil {
		t.Fatalf("Agency() error = %v", err)
	}
	if agency.NtdID != "00001" || len(agency.Feeds) != 1 {
		t.Fatalf("unexpected detail: %+v", agency)
	}
	feed := agency.Feeds[0]
	if !feed.Official || feed.Expires == nil || feed.Status != "Yes" {
		t.Errorf("unexpected feed: %+v", feed)
	}

	_, err = c.Agency(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFeeds(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(srv.Client(), srv.URL, "gtfs-agencies")

	feeds, err := c.Feeds(context.Background())
	if err != nil {
		t.Fatalf("Feeds() error = %v", err)
	}
	if len(feeds) != 1 || feeds[0].Expires != nil || feeds[0].Status != "No" {
		t.Errorf("unexpected feeds: %+v", feeds)
	}
}

func TestCastVote(t *testing.T) {
	srv, posts := newTestServer(t)
	c := NewClient(srv.Client(), srv.URL, "gtfs-agencies")

	if err := c.CastVote(context.Background(), 42); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	if len(*posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(*posts))
	}
	got := (*posts)[0]
	if got.path != VotePath {
		t.Errorf("expected path %s, got %s", VotePath, got.path)
	}
	want := map[string][]string{"namespace": {"gtfs-agencies"}, "id": {"42"}}
	if !reflect.DeepEqual(map[string][]string(got.form), want) {
		t.Errorf("expected form %v, got %v", want, got.form)
	}
}

func TestConnectFeedsAndAgencies(t *testing.T) {
	srv, posts := newTestServer(t)
	c := NewClient(srv.Client(), srv.URL, "gtfs-agencies")

	if err := c.ConnectFeedsAndAgencies(context.Background(), []int64{10, 11}, []int64{1}); err != nil {
		t.Fatalf("ConnectFeedsAndAgencies() error = %v", err)
	}

	got := (*posts)[0]
	want := map[string][]string{"feed": {"10", "11"}, "agency": {"1"}}
	if !reflect.DeepEqual(map[string][]string(got.form), want) {
		t.Errorf("expected form %v, got %v", want, got.form)
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "gtfs-agencies")

	if _, err := c.Agencies(context.Background()); err == nil {
		t.Error("expected error from Agencies")
	}
	if err := c.CastVote(context.Background(), 1); err == nil {
		t.Error("expected error from CastVote")
	}
}
