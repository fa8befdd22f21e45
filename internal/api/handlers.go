package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mgmcet/admission-portal/internal/assets"
	"github.com/mgmcet/admission-portal/internal/models"
	"github.com/mgmcet/admission-portal/internal/pdf"
	"github.com/mgmcet/admission-portal/internal/storage"
	"github.com/mgmcet/admission-portal/internal/submit"
	"github.com/mgmcet/admission-portal/internal/validate"
)

// Submitter runs the submission pipeline. Satisfied by *submit.Coordinator.
type Submitter interface {
	Submit(ctx context.Context, sub *models.Submission) (*models.Application, error)
}

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondErrorFields(w, status, code, message, nil)
}

func respondErrorFields(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Application handlers

func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	sub, err := s.parseSubmission(r)
	if err != nil {
		slog.Debug("submission parse failed", "error", err)
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed submission form")
		return
	}

	app, err := s.coordinator.Submit(r.Context(), sub)
	if err != nil {
		s.respondSubmitError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, app)
}

func (s *Server) respondSubmitError(w http.ResponseWriter, err error) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		respondErrorFields(w, http.StatusUnprocessableEntity, "validation_error",
			"one or more fields failed validation", verr.Fields)
		return
	}

	var uerr *submit.UploadError
	if errors.As(err, &uerr) {
		slog.Error("asset upload failed", "slot", uerr.Slot, "error", uerr.Err)
		respondError(w, http.StatusBadGateway, "upload_failed",
			"failed to store uploaded "+uerr.Slot)
		return
	}

	if errors.Is(err, storage.ErrCounterMissing) {
		slog.Error("application counter not provisioned")
		respondError(w, http.StatusInternalServerError, "counter_missing",
			"application numbering is not provisioned, please contact the admissions office")
		return
	}

	slog.Error("failed to submit application", "error", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit application")
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	apps, err := s.repo.ListApplications(r.Context(), limit, offset)
	if err != nil {
		slog.Error("failed to list applications", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list applications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"count":        len(apps),
		"limit":        limit,
		"offset":       offset,
	})
}

func (s *Server) handleGetCounter(w http.ResponseWriter, r *http.Request) {
	value, err := s.repo.CounterValue(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrCounterMissing) {
			respondError(w, http.StatusNotFound, "counter_missing", "application counter is not provisioned")
			return
		}
		slog.Error("failed to read counter", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to read counter")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"counter": value})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "application id is required")
		return
	}

	app, err := s.repo.GetApplication(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrApplicationNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "application not found")
			return
		}
		slog.Error("failed to get application", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get application")
		return
	}

	respondJSON(w, http.StatusOK, app)
}

// handleDownloadPDF regenerates the application document from the stored
// record. The document date comes from the `date` query parameter and
// defaults to today; stored asset URLs are fetched and embedded, with
// placeholders for anything unreachable.
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "application id is required")
		return
	}

	app, err := s.repo.GetApplication(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrApplicationNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "application not found")
			return
		}
		slog.Error("failed to get application", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get application")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("02/01/2006")
	}

	resolved := s.encoder.EncodeAll(r.Context(),
		assets.Source{URL: app.Form.Photo},
		assets.Source{URL: app.Form.ParentSignature},
		assets.Source{URL: app.Form.ApplicantSignature},
	)

	doc, err := s.renderer.Render(app, pdf.Options{DocumentDate: date, Assets: resolved})
	if err != nil {
		if errors.Is(err, pdf.ErrRenderAborted) {
			respondError(w, http.StatusBadRequest, "missing_date", "a document date is required")
			return
		}
		slog.Error("failed to render document", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "render_failed", "failed to render document")
		return
	}

	// Spool a copy for the cleanup-managed archive; losing it never fails
	// the download.
	if s.spoolDir != "" {
		if _, err := doc.WriteFile(s.spoolDir); err != nil {
			slog.Warn("failed to spool document copy", "error", err, "id", id)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	if _, err := w.Write(doc.Bytes); err != nil {
		slog.Warn("document write interrupted", "error", err, "id", id)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
