package reporting

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Handler exposes the reporting read endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new reporting handler
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Weeks handles GET /api/weeks.
func (h *Handler) Weeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.svc.ListWeeks(r.Context())
	if err != nil {
		h.logger.Error("failed to list weeks", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list weeks")
		return
	}
	if weeks == nil {
		weeks = []WeekInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "weeks": weeks})
}

// Summary handles GET /api/summary?week=latest|2025-W33|2025-08-17.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	selector := r.URL.Query().Get("week")
	summary, err := h.svc.WeekSummary(r.Context(), selector)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "no such week")
		return
	}
	if errors.Is(err, ErrBadSelector) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to build summary", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "summary": summary})
}

// Health handles GET /api/data-health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.DataHealth(r.Context())
	if err != nil {
		h.logger.Error("failed to load data health", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load data health")
		return
	}
	if rows == nil {
		rows = []HealthRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "weeks": rows})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}
