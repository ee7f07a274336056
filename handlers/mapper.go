// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/transit-dashboard/auth"
	"github.com/danielhkuo/transit-dashboard/cliparse"
	"github.com/danielhkuo/transit-dashboard/middleware"
	"github.com/danielhkuo/transit-dashboard/models"
)

type MapperHandler struct {
	src Source
	cfg cliparse.Config
}

func NewMapperHandler(src Source, cfg cliparse.Config) *MapperHandler {
	return &MapperHandler{src: src, cfg: cfg}
}

// Connect handles POST /mapper/connect
// Links every listed feed to every listed agency. Requires X-Admin-Key.
func (h *MapperHandler) Connect(w http.ResponseWriter, r *http.Request) {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(auth.MapperScope, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.ConnectFeedsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Feed) == 0 || len(req.Agency) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "feed and agency are required")
		return
	}

	if err := h.src.ConnectFeedsAndAgencies(r.Context(), req.Feed, req.Agency); err != nil {
		slog.Error("failed to connect feeds and agencies", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to connect feeds and agencies")
		return
	}

	slog.Info("feeds linked", "feeds", req.Feed, "agencies", req.Agency)

	middleware.JSONResponse(w, http.StatusOK, models.ConnectFeedsResponse{Status: "success"})
}
