package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/resume-analyzer/apiserver/internal/services"
	"github.com/resume-analyzer/apiserver/types"
)

// FeedbackHandler provides HTTP handlers for user feedback.
type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// FeedbackRouter registers feedback routes. Submission requires
// authentication; listing and stats are admin-only.
func FeedbackRouter(r chi.Router, feedbackService *services.FeedbackService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewFeedbackHandler(feedbackService)

	r.With(authMiddleware).Post("/", handler.Submit)
	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Get("/", handler.List)
	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Get("/stats", handler.Stats)
}

type FeedbackRequest struct {
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

type FeedbackSubmitResponse struct {
	OK bool `json:"ok"`
	ID int  `json:"id"`
}

func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	fb, err := h.feedbackService.Submit(r.Context(), user.ID, req.Message, req.Rating)
	if err != nil {
		if errors.Is(err, services.ErrRatingOutOfRange) || errors.Is(err, services.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to submit feedback")
		return
	}

	writeJSON(w, http.StatusCreated, FeedbackSubmitResponse{OK: true, ID: fb.ID})
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.feedbackService.List(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *FeedbackHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.feedbackService.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load feedback stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
