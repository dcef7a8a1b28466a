package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/resume-analyzer/apiserver/internal/services"
	"github.com/resume-analyzer/apiserver/types"
)

const dashboardWindow = 30 * 24 * time.Hour

// AdminHandler provides the admin dashboard.
type AdminHandler struct {
	userService        *services.UserService
	jobService         *services.JobService
	resumeService      *services.ResumeService
	applicationService *services.ApplicationService
}

func NewAdminHandler(
	userService *services.UserService,
	jobService *services.JobService,
	resumeService *services.ResumeService,
	applicationService *services.ApplicationService,
) *AdminHandler {
	return &AdminHandler{
		userService:        userService,
		jobService:         jobService,
		resumeService:      resumeService,
		applicationService: applicationService,
	}
}

// AdminRouter registers admin routes; all are admin-only.
func AdminRouter(
	r chi.Router,
	userService *services.UserService,
	jobService *services.JobService,
	resumeService *services.ResumeService,
	applicationService *services.ApplicationService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewAdminHandler(userService, jobService, resumeService, applicationService)

	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Get("/dashboard", handler.Dashboard)
}

// DashboardResponse summarizes platform activity.
type DashboardResponse struct {
	Users              int `json:"users"`
	Jobs               int `json:"jobs"`
	Resumes            int `json:"resumes"`
	Applications       int `json:"applications"`
	ApplicationsLast30 int `json:"applications_last_30"`
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.userService.Count(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	jobs, err := h.jobService.Count(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	resumes, err := h.resumeService.Count(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	applications, err := h.applicationService.Count(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	recent, err := h.applicationService.CountSince(ctx, time.Now().Add(-dashboardWindow))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		Users:              users,
		Jobs:               jobs,
		Resumes:            resumes,
		Applications:       applications,
		ApplicationsLast30: recent,
	})
}
