// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/transit-dashboard/cliparse"
	"github.com/danielhkuo/transit-dashboard/handlers"
	"github.com/danielhkuo/transit-dashboard/middleware"
	"github.com/danielhkuo/transit-dashboard/session"
)

// voteBurst is how many votes a client may cast back to back
const voteBurst = 5

func NewRouter(src handlers.Source, sessions *session.Manager, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(sessions, cfg)
	agencyHandler := handlers.NewAgencyHandler(src)
	mapperHandler := handlers.NewMapperHandler(src, cfg)

	votes := middleware.NewRateLimiter(cfg.VoteRate, voteBurst, cfg.IPHashSalt)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions
	mux.HandleFunc("POST /sessions", middleware.WithLogging(dashboardHandler.CreateSession))

	// Dashboard (requires X-Session-Token)
	mux.HandleFunc("GET /dashboard", middleware.WithLogging(dashboardHandler.GetDashboard))
	mux.HandleFunc("POST /dashboard/reload", middleware.WithLogging(dashboardHandler.Reload))
	mux.HandleFunc("POST /dashboard/filters/{rule}", middleware.WithLogging(dashboardHandler.ToggleFilter))
	mux.HandleFunc("POST /dashboard/sort/{field}", middleware.WithLogging(dashboardHandler.Sort))
	mux.HandleFunc("POST /dashboard/page/{page}", middleware.WithLogging(dashboardHandler.GoToPage))
	mux.HandleFunc("POST /dashboard/search", middleware.WithLogging(dashboardHandler.Search))
	mux.HandleFunc("POST /dashboard/agencies/{id}/vote", middleware.WithLogging(votes.Limit(dashboardHandler.Vote)))
	mux.HandleFunc("GET /dashboard/export.csv", middleware.WithLogging(dashboardHandler.ExportCSV))

	// Source passthrough (public)
	mux.HandleFunc("GET /agencies/{id}", middleware.WithLogging(agencyHandler.GetAgency))
	mux.HandleFunc("GET /feeds", middleware.WithLogging(agencyHandler.ListFeeds))

	// Feed mapping (admin, requires X-Admin-Key)
	mux.HandleFunc("POST /mapper/connect", middleware.WithLogging(mapperHandler.Connect))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("transit-dashboard API v1"))
	})

	return mux
}
