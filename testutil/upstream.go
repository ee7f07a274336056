// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/transit-dashboard/db"
	"github.com/danielhkuo/transit-dashboard/upstream"
)

// NewFakeUpstream starts an httptest server speaking the transit-data API,
// backed by a db.Store over conn. It is closed when the test ends.
func NewFakeUpstream(t *testing.T, conn *sql.DB) *httptest.Server {
	t.Helper()

	store := db.NewStore(conn, TestNamespace)
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
	fail := func(w http.ResponseWriter, err error) {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
	ids := func(values []string) ([]int64, error) {
		out := make([]int64, 0, len(values))
		for _, v := range values {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		return out, nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+upstream.AgenciesPath, func(w http.ResponseWriter, r *http.Request) {
		agencies, err := store.Agencies(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, agencies)
	})
	mux.HandleFunc("GET "+upstream.CountsPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("namespace") != TestNamespace {
			http.Error(w, "unknown namespace", http.StatusBadRequest)
			return
		}
		counts, err := store.VoteCounts(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		byKey := make(map[string]int, len(counts))
		for id, n := range counts {
			byKey[strconv.FormatInt(id, 10)] = n
		}
		writeJSON(w, byKey)
	})
	mux.HandleFunc("GET "+upstream.AgencyPath, func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		agency, err := store.Agency(r.Context(), id)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, agency)
	})
	mux.HandleFunc("GET "+upstream.FeedsPath, func(w http.ResponseWriter, r *http.Request) {
		feeds, err := store.Feeds(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, feeds)
	})
	mux.HandleFunc("POST "+upstream.VotePath, func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
		if err != nil || r.FormValue("namespace") != TestNamespace {
			http.Error(w, "bad vote", http.StatusBadRequest)
			return
		}
		if err := store.CastVote(r.Context(), id); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "success"})
	})
	mux.HandleFunc("POST "+upstream.ConnectPath, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		feeds, err := ids(r.PostForm["feed"])
		if err != nil {
			http.Error(w, "bad feed id", http.StatusBadRequest)
			return
		}
		agencies, err := ids(r.PostForm["agency"])
		if err != nil {
			http.Error(w, "bad agency id", http.StatusBadRequest)
			return
		}
		if err := store.ConnectFeedsAndAgencies(r.Context(), feeds, agencies); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "success"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
