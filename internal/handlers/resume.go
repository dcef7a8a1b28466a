package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/resume-analyzer/apiserver/internal/extract"
	"github.com/resume-analyzer/apiserver/internal/services"
	"github.com/resume-analyzer/apiserver/types"
)

const (
	maxResumeMemory = 32 << 20
	maxResumeBytes  = 16 << 20

	formFieldFile            = "file"
	formFieldJobDescriptions = "job_descriptions"

	excerptLength = 300
)

// ResumeHandler provides HTTP handlers for resume upload and listing.
type ResumeHandler struct {
	resumeService *services.ResumeService
}

func NewResumeHandler(resumeService *services.ResumeService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService}
}

// ResumeRouter registers resume routes; all require authentication.
func ResumeRouter(r chi.Router, resumeService *services.ResumeService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewResumeHandler(resumeService)

	r.With(authMiddleware).Post("/upload", handler.Upload)
	r.With(authMiddleware).Get("/me", handler.MyResumes)
}

// ResumeResponse is the public view of a resume: the extracted text is
// reduced to an excerpt.
type ResumeResponse struct {
	ID          int                `json:"id"`
	Filename    string             `json:"filename"`
	TextExcerpt string             `json:"text_excerpt"`
	Skills      []string           `json:"skills"`
	Similarity  map[string]float64 `json:"similarity_score"`
	UploadedAt  time.Time          `json:"uploaded_at"`
}

func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxResumeMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	data, err := readFileLimited(file, maxResumeBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobDescriptions := r.MultipartForm.Value[formFieldJobDescriptions]

	resume, err := h.resumeService.Upload(r.Context(), user.ID, header.Filename, data, jobDescriptions)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, "unsupported file type")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store resume")
		return
	}

	writeJSON(w, http.StatusCreated, publicResume(resume))
}

func (h *ResumeHandler) MyResumes(w http.ResponseWriter, r *http.Request) {
	user, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resumes, err := h.resumeService.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list resumes")
		return
	}

	out := make([]ResumeResponse, 0, len(resumes))
	for _, resume := range resumes {
		out = append(out, publicResume(resume))
	}
	writeJSON(w, http.StatusOK, out)
}

func publicResume(resume types.Resume) ResumeResponse {
	skills := resume.Skills
	if skills == nil {
		skills = []string{}
	}
	similarity := resume.Similarity
	if similarity == nil {
		similarity = map[string]float64{}
	}
	return ResumeResponse{
		ID:          resume.ID,
		Filename:    resume.Filename,
		TextExcerpt: excerpt(resume.Text),
		Skills:      skills,
		Similarity:  similarity,
		UploadedAt:  resume.UploadedAt,
	}
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLength {
		return text
	}
	return string(runes[:excerptLength]) + "..."
}

func readFileLimited(file io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("file too large")
	}
	return data, nil
}
