package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/resume-analyzer/apiserver/internal/extract"
	"github.com/resume-analyzer/apiserver/internal/mq"
	"github.com/resume-analyzer/apiserver/internal/storage"
	"github.com/resume-analyzer/apiserver/types"
)

const publishTimeout = 20 * time.Second

// MatchScorer computes resume/job-description match scores and extracts
// skill entities. Implemented by match.Scorer; faked in tests.
type MatchScorer interface {
	Score(ctx context.Context, textA, textB string) float64
	ExtractSkills(ctx context.Context, text string) []string
}

// ResumeRepository defines persistence operations for resumes.
type ResumeRepository interface {
	Create(ctx context.Context, resume types.Resume) (types.Resume, error)
	GetOwned(ctx context.Context, id, userID int) (types.Resume, error)
	Latest(ctx context.Context, userID int) (types.Resume, error)
	ListByUser(ctx context.Context, userID int) ([]types.Resume, error)
	FindBySkill(ctx context.Context, skill string, limit int) ([]types.Resume, error)
	Count(ctx context.Context) (int, error)
}

// ResumeService encapsulates resume upload and lookup use-cases.
// The archive and events dependencies are optional; a nil value
// disables that concern.
type ResumeService struct {
	repo    ResumeRepository
	scorer  MatchScorer
	archive *storage.Archive
	events  *mq.Events
	logger  *slog.Logger
}

func NewResumeService(repo ResumeRepository, scorer MatchScorer, archive *storage.Archive, events *mq.Events, logger *slog.Logger) *ResumeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResumeService{
		repo:    repo,
		scorer:  scorer,
		archive: archive,
		events:  events,
		logger:  logger,
	}
}

// Upload extracts text from the document, scores it against any
// provided job descriptions, runs skill extraction, archives the raw
// file when an archive is configured, and persists the resume.
//
// Returns extract.ErrUnsupportedType for files that are neither PDF nor
// DOCX. Archiving and event publication are best effort and never fail
// the upload.
func (s *ResumeService) Upload(ctx context.Context, userID int, filename string, data []byte, jobDescriptions []string) (types.Resume, error) {
	text, err := extract.Text(filename, data)
	if err != nil {
		return types.Resume{}, err
	}

	similarity := make(map[string]float64, len(jobDescriptions))
	for _, jd := range jobDescriptions {
		similarity[jd] = s.scorer.Score(ctx, text, jd)
	}

	resume := types.Resume{
		UserID:     userID,
		Filename:   filename,
		Text:       text,
		Skills:     s.scorer.ExtractSkills(ctx, text),
		Similarity: similarity,
		ObjectKey:  s.archiveFile(ctx, filename, data),
	}

	created, err := s.repo.Create(ctx, resume)
	if err != nil {
		return types.Resume{}, err
	}

	s.publish(ctx, mq.TopicResumeUploaded, map[string]any{
		"resume_id": created.ID,
		"user_id":   created.UserID,
		"filename":  created.Filename,
	})

	return created, nil
}

func (s *ResumeService) GetOwned(ctx context.Context, id, userID int) (types.Resume, error) {
	return s.repo.GetOwned(ctx, id, userID)
}

func (s *ResumeService) Latest(ctx context.Context, userID int) (types.Resume, error) {
	return s.repo.Latest(ctx, userID)
}

func (s *ResumeService) ListByUser(ctx context.Context, userID int) ([]types.Resume, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *ResumeService) FindBySkill(ctx context.Context, skill string, limit int) ([]types.Resume, error) {
	return s.repo.FindBySkill(ctx, skill, limit)
}

func (s *ResumeService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *ResumeService) archiveFile(ctx context.Context, filename string, data []byte) string {
	if s.archive == nil {
		return ""
	}

	key := uuid.NewString() + filepath.Ext(filename)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if err := s.archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		s.logger.Warn("failed to archive resume file",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return ""
	}
	return key
}

func (s *ResumeService) publish(ctx context.Context, topic string, payload map[string]any) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if _, err := s.events.Publish(ctx, topic, data, nil); err != nil {
		s.logger.Warn("failed to publish event",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
	}
}
