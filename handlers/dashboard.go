// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/transit-dashboard/auth"
	"github.com/danielhkuo/transit-dashboard/cliparse"
	"github.com/danielhkuo/transit-dashboard/engine"
	"github.com/danielhkuo/transit-dashboard/middleware"
	"github.com/danielhkuo/transit-dashboard/models"
	"github.com/danielhkuo/transit-dashboard/session"
)

type DashboardHandler struct {
	sessions *session.Manager
	cfg      cliparse.Config
}

func NewDashboardHandler(sessions *session.Manager, cfg cliparse.Config) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, cfg: cfg}
}

// CreateSession handles POST /sessions
func (h *DashboardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	token, _, err := h.sessions.Create()
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionToken: token,
	})
}

// session resolves the X-Session-Token header, writing 401 when it is
// missing, malformed or expired.
func (h *DashboardHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Session-Token header required")
		return nil, false
	}
	if err := auth.ValidateSessionToken(token); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
		return nil, false
	}

	s, ok := h.sessions.Get(token)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Session expired or unknown")
		return nil, false
	}
	return s, true
}

// GetDashboard handles GET /dashboard
// 202 while agencies are loading, 502 once loading failed
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	status, cause := s.Status()
	switch status {
	case models.StatusLoading:
		middleware.JSONResponse(w, http.StatusAccepted, models.DashboardStatusResponse{
			Status:  models.StatusLoading,
			Message: "Agencies are loading",
		})
		return
	case models.StatusFailed:
		middleware.JSONResponse(w, http.StatusBadGateway, models.DashboardStatusResponse{
			Status:  models.StatusFailed,
			Message: cause.Error(),
		})
		return
	}

	view, err := s.View()
	h.respondView(w, view, err)
}

// Reload handles POST /dashboard/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	err := s.Reload()
	if errors.Is(err, engine.ErrAlreadyLoaded) {
		middleware.ErrorResponse(w, http.StatusConflict, "Agencies are already loaded")
		return
	}
	if err != nil && !errors.Is(err, engine.ErrLoadInProgress) {
		slog.Error("failed to reload agencies", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reload")
		return
	}

	middleware.JSONResponse(w, http.StatusAccepted, models.DashboardStatusResponse{
		Status:  models.StatusLoading,
		Message: "Agencies are loading",
	})
}

// ToggleFilter handles POST /dashboard/filters/{rule}
func (h *DashboardHandler) ToggleFilter(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := s.ToggleFilter(r.PathValue("rule"))
	h.respondView(w, view, err)
}

// Sort handles POST /dashboard/sort/{field}
func (h *DashboardHandler) Sort(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := s.SortBy(r.PathValue("field"))
	h.respondView(w, view, err)
}

// GoToPage handles POST /dashboard/page/{page}
func (h *DashboardHandler) GoToPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "page must be an integer")
		return
	}

	view, err := s.GoToPage(page)
	h.respondView(w, view, err)
}

// Search handles POST /dashboard/search
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SearchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	view, err := s.Search(strings.TrimSpace(req.Query))
	h.respondView(w, view, err)
}

// Vote handles POST /dashboard/agencies/{id}/vote
// Each session counts at most one vote per agency; agencies with an official
// feed cannot be voted for.
func (h *DashboardHandler) Vote(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "agency id must be an integer")
		return
	}

	agency, err := s.Record(id)
	if err != nil {
		h.engineError(w, err)
		return
	}
	if !agency.VoteEligible() {
		middleware.ErrorResponse(w, http.StatusConflict, "Agency already has an official GTFS feed")
		return
	}

	votes, counted, err := s.CastVote(id)
	if err != nil {
		h.engineError(w, err)
		return
	}

	if counted {
		slog.Info("vote cast", "agency_id", id, "votes", votes,
			"client", auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt))
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		AgencyID: id,
		Votes:    votes,
		Counted:  counted,
	})
}

func (h *DashboardHandler) respondView(w http.ResponseWriter, view engine.View, err error) {
	if err != nil {
		h.engineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toDashboardView(view))
}

// engineError maps engine sentinels to HTTP statuses.
func (h *DashboardHandler) engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotReady):
		middleware.ErrorResponse(w, http.StatusConflict, "Agencies are still loading")
	case errors.Is(err, engine.ErrAcquisitionFailed):
		middleware.ErrorResponse(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, engine.ErrUnknownRule):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown filter rule")
	case errors.Is(err, engine.ErrUnknownField):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown sort field")
	case errors.Is(err, engine.ErrRecordNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Agency not found")
	default:
		slog.Error("dashboard operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

func toDashboardView(v engine.View) models.DashboardView {
	voted := v.Voted
	if voted == nil {
		voted = []int64{}
	}
	return models.DashboardView{
		Status:     models.StatusReady,
		Agencies:   v.Records,
		Page:       v.Index,
		TotalPages: v.TotalPages,
		Total:      v.Total,
		PageSize:   v.PageSize,
		SortField:  v.SortField,
		SortDesc:   v.Descending,
		Filters:    v.Filters,
		Query:      v.Query,
		Voted:      voted,
		Summary:    summarize(v.Page),
	}
}

// summarize renders e.g. "Showing 101–200 of 1,250 agencies".
func summarize(p engine.Page) string {
	if p.Total == 0 {
		return "No agencies match"
	}
	first := p.Index*p.PageSize + 1
	last := first + len(p.Records) - 1
	noun := "agencies"
	if p.Total == 1 {
		noun = "agency"
	}
	return fmt.Sprintf("Showing %s–%s of %s %s",
		humanize.Comma(int64(first)), humanize.Comma(int64(last)), humanize.Comma(int64(p.Total)), noun)
}
