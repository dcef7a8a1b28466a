package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/resume-analyzer/apiserver/internal/mq"
	"github.com/resume-analyzer/apiserver/internal/store"
	"github.com/resume-analyzer/apiserver/types"
)

// unknownField substitutes job fields when the referenced job has
// vanished between apply time and listing.
const unknownField = "Unknown"

var (
	// ErrJobNotFound is returned when the applied-to job does not exist.
	ErrJobNotFound = errors.New("job not found")

	// ErrResumeNotOwned is returned when an explicit resume id does not
	// resolve to a resume owned by the acting user. Missing and
	// not-owned are deliberately indistinguishable.
	ErrResumeNotOwned = errors.New("resume not found")

	// ErrNoResume is returned when no resume id was given and the user
	// has never uploaded one.
	ErrNoResume = errors.New("no resume uploaded")
)

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app types.Application) (types.Application, error)
	ListByUser(ctx context.Context, userID int) ([]types.Application, error)
	Count(ctx context.Context) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// ApplicationService orchestrates the apply workflow: job lookup,
// resume resolution, match scoring, and persistence.
type ApplicationService struct {
	repo    ApplicationRepository
	jobs    JobRepository
	resumes ResumeRepository
	scorer  MatchScorer
	events  *mq.Events
	logger  *slog.Logger
}

func NewApplicationService(
	repo ApplicationRepository,
	jobs JobRepository,
	resumes ResumeRepository,
	scorer MatchScorer,
	events *mq.Events,
	logger *slog.Logger,
) *ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationService{
		repo:    repo,
		jobs:    jobs,
		resumes: resumes,
		scorer:  scorer,
		events:  events,
		logger:  logger,
	}
}

// Apply records a scored application for the acting user. resumeID 0
// means "use my most recent resume". The returned detail snapshots the
// job's title/company/location as of apply time.
//
// Scoring never fails the apply: a degraded remote scorer falls back to
// the lexical tier inside MatchScorer.
func (s *ApplicationService) Apply(ctx context.Context, userID, jobID, resumeID int) (types.ApplicationDetail, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ApplicationDetail{}, ErrJobNotFound
		}
		return types.ApplicationDetail{}, err
	}

	resume, err := s.resolveResume(ctx, userID, resumeID)
	if err != nil {
		return types.ApplicationDetail{}, err
	}

	score := s.scorer.Score(ctx, resume.Text, job.Description)

	app, err := s.repo.Create(ctx, types.Application{
		UserID:     userID,
		JobID:      job.ID,
		MatchScore: score,
	})
	if err != nil {
		return types.ApplicationDetail{}, err
	}

	s.publishCreated(ctx, app)

	return types.ApplicationDetail{
		ID:         app.ID,
		JobID:      job.ID,
		JobTitle:   job.Title,
		Company:    job.Company,
		Location:   job.Location,
		MatchScore: app.MatchScore,
		CreatedAt:  app.CreatedAt,
	}, nil
}

// ListByUser returns the user's applications newest first, re-joined
// against current job state. Vanished jobs render as "Unknown".
func (s *ApplicationService) ListByUser(ctx context.Context, userID int) ([]types.ApplicationDetail, error) {
	apps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]types.ApplicationDetail, 0, len(apps))
	for _, app := range apps {
		detail := types.ApplicationDetail{
			ID:         app.ID,
			JobID:      app.JobID,
			JobTitle:   unknownField,
			Company:    unknownField,
			Location:   unknownField,
			MatchScore: app.MatchScore,
			CreatedAt:  app.CreatedAt,
		}

		job, err := s.jobs.Get(ctx, app.JobID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if err == nil {
			detail.JobTitle = job.Title
			detail.Company = job.Company
			detail.Location = job.Location
		}

		details = append(details, detail)
	}

	return details, nil
}

func (s *ApplicationService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *ApplicationService) CountSince(ctx context.Context, since time.Time) (int, error) {
	return s.repo.CountSince(ctx, since)
}

func (s *ApplicationService) resolveResume(ctx context.Context, userID, resumeID int) (types.Resume, error) {
	if resumeID > 0 {
		resume, err := s.resumes.GetOwned(ctx, resumeID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return types.Resume{}, ErrResumeNotOwned
			}
			return types.Resume{}, err
		}
		return resume, nil
	}

	resume, err := s.resumes.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Resume{}, ErrNoResume
		}
		return types.Resume{}, err
	}
	return resume, nil
}

func (s *ApplicationService) publishCreated(ctx context.Context, app types.Application) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(map[string]any{
		"application_id": app.ID,
		"user_id":        app.UserID,
		"job_id":         app.JobID,
		"match_score":    app.MatchScore,
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if _, err := s.events.Publish(ctx, mq.TopicApplicationCreated, data, nil); err != nil {
		s.logger.Warn("failed to publish event",
			slog.String("topic", mq.TopicApplicationCreated),
			slog.String("error", err.Error()))
	}
}
