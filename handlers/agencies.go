// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/transit-dashboard/engine"
	"github.com/danielhkuo/transit-dashboard/middleware"
	"github.com/danielhkuo/transit-dashboard/models"
)

// AgencyHandler serves agency detail and the feed list straight from the
// source, outside any session.
type AgencyHandler struct {
	src Source
}

func NewAgencyHandler(src Source) *AgencyHandler {
	return &AgencyHandler{src: src}
}

// GetAgency handles GET /agencies/{id}
func (h *AgencyHandler) GetAgency(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "agency id must be an integer")
		return
	}

	agency, err := h.src.Agency(r.Context(), id)
	if isNotFound(err) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Agency not found")
		return
	}
	if err != nil {
		slog.Error("failed to fetch agency", "agency_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to fetch agency")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, agency)
}

// ListFeeds handles GET /feeds?q=
func (h *AgencyHandler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := h.src.Feeds(r.Context())
	if err != nil {
		slog.Error("failed to fetch feeds", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to fetch feeds")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	matched := make([]models.Feed, 0, len(feeds))
	for i := range feeds {
		if engine.MatchesFeedQuery(&feeds[i], query) {
			matched = append(matched, feeds[i])
		}
	}

	middleware.JSONResponse(w, http.StatusOK, matched)
}
