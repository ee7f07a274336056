// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/transit-dashboard/models"
)

var exportHeader = []string{
	"Name",
	"URL",
	"Metro Area",
	"Service Area Population",
	"Annual Unlinked Passenger Trips",
	"Annual Passenger Miles",
	"Public GTFS",
	"Google Maps",
	"Metro Area Latitude",
	"Metro Area Longitude",
}

// ExportCSV handles GET /dashboard/export.csv
// Exports every agency passing the session's filters, in its sort order.
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	agencies, err := s.Export()
	if err != nil {
		h.engineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agencies.csv"`)
	w.WriteHeader(http.StatusOK)

	if err := writeAgenciesCSV(w, agencies); err != nil {
		slog.Error("failed to write CSV export", "error", err)
	}
}

func writeAgenciesCSV(out io.Writer, agencies []models.Agency) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, a := range agencies {
		record := []string{
			a.Name,
			a.URL,
			a.Metro,
			strconv.FormatInt(a.Population, 10),
			strconv.FormatInt(a.Ridership, 10),
			strconv.FormatInt(a.PassengerMiles, 10),
			yesNo(a.PublicGTFS),
			yesNo(a.GoogleGTFS),
			coordinate(a.Lat),
			coordinate(a.Lon),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func coordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
