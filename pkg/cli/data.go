package cli

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/forecastlab/pmeval/pkg/data"
)

const (
	reportListLimit = 50
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryParamInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Error("error converting query string to int", "value", v, "error", err)
		return def
	}

	if i < 1 || i > queryResultLimitDefault {
		return def
	}

	return i
}

func latestReportAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := data.GetLatestReport(db)
		if err != nil {
			slog.Error("failed to get latest report", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying latest report")
			return
		}
		if report == nil {
			writeError(w, http.StatusNotFound, "no saved reports")
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func reportAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id parameter required")
			return
		}

		report, err := data.GetReport(db, id)
		if err != nil {
			slog.Error("failed to get report", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "error querying report")
			return
		}
		if report == nil {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func reportListAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryParamInt(r, "limit", reportListLimit)
		list, err := data.ListReports(db, limit)
		if err != nil {
			slog.Error("failed to list reports", "error", err)
			writeError(w, http.StatusInternalServerError, "error listing reports")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// calibrationAPIHandler serves the calibration artifact of the latest saved
// report, which is what the dashboard reliability chart plots.
func calibrationAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := data.GetLatestReport(db)
		if err != nil {
			slog.Error("failed to get latest report", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying latest report")
			return
		}
		if report == nil || report.Calibration == nil {
			writeError(w, http.StatusNotFound, "no calibration data")
			return
		}
		writeJSON(w, http.StatusOK, report.Calibration)
	}
}

func sourceSummaryAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := data.GetSourceSummaries(db)
		if err != nil {
			slog.Error("failed to get source summaries", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying source summaries")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
