package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/resume-analyzer/apiserver/internal/services"
)

// ApplyHandler provides HTTP handlers for job applications.
type ApplyHandler struct {
	applicationService *services.ApplicationService
}

func NewApplyHandler(applicationService *services.ApplicationService) *ApplyHandler {
	return &ApplyHandler{applicationService: applicationService}
}

// ApplyRouter registers application routes; all require authentication.
func ApplyRouter(r chi.Router, applicationService *services.ApplicationService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewApplyHandler(applicationService)

	r.With(authMiddleware).Post("/", handler.Apply)
	r.With(authMiddleware).Get("/me", handler.MyApplications)
}

type ApplyRequest struct {
	JobID    int `json:"job_id"`
	ResumeID int `json:"resume_id,omitempty"`
}

func (h *ApplyHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.JobID < 1 {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	detail, err := h.applicationService.Apply(r.Context(), user.ID, req.JobID, req.ResumeID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrJobNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, services.ErrResumeNotOwned):
			writeError(w, http.StatusNotFound, "resume not found")
		case errors.Is(err, services.ErrNoResume):
			writeError(w, http.StatusBadRequest, "upload a resume first")
		default:
			writeError(w, http.StatusInternalServerError, "failed to apply")
		}
		return
	}

	writeJSON(w, http.StatusCreated, detail)
}

func (h *ApplyHandler) MyApplications(w http.ResponseWriter, r *http.Request) {
	user, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	details, err := h.applicationService.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}

	writeJSON(w, http.StatusOK, details)
}
