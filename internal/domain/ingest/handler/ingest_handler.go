// Package handler exposes the ingest pipeline over HTTP.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/service"
	"github.com/pulseiq/pulseiq/pkg/week"
)

// maxUploadBytes caps one ingest request. The weekly exports are a few MB
// each; anything near this limit is not a report.
const maxUploadBytes = 100 << 20

// IngestHandler handles ingest HTTP endpoints
type IngestHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(svc *service.Service, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{svc: svc, logger: logger}
}

// Ingest handles POST /api/ingest: a multipart form with a weekEndDate field
// (YYYY-MM-DD) and one or more workbook files under the "file" field.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form upload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	weekEnd, err := time.ParseInLocation("2006-01-02", r.FormValue("weekEndDate"), time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "weekEndDate must be YYYY-MM-DD")
		return
	}

	var files []service.FileInput
	for _, fh := range r.MultipartForm.File["file"] {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		files = append(files, service.FileInput{Name: fh.Filename, Data: data})
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	res, err := h.svc.IngestFiles(r.Context(), weekEnd, files)
	if errors.Is(err, service.ErrNoStoreTotals) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("ingest failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"week":     res.Week,
		"files":    res.Files,
		"rows":     res.Rows,
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
		"details":  res.Details,
		"warnings": res.Warnings,
	})
}

// Cleanup handles DELETE /api/weeks/{iso}: removes the week's facts, or only
// those for the stores named in the comma-separated "stores" query param.
func (h *IngestHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	iso := r.PathValue("iso")
	if _, _, err := week.Parse(iso); err != nil {
		writeError(w, http.StatusBadRequest, "week must look like 2025-W33")
		return
	}

	var storeCodes []string
	if raw := r.URL.Query().Get("stores"); raw != "" {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				storeCodes = append(storeCodes, code)
			}
		}
	}

	deleted, weekGone, err := h.svc.DeleteWeek(r.Context(), iso, storeCodes)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "week not found")
		return
	}
	if err != nil {
		h.logger.Error("cleanup failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"week":        iso,
		"deleted":     deleted,
		"weekDeleted": weekGone,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}
