package services

import (
	"context"

	"github.com/resume-analyzer/apiserver/types"
)

const maxJobListLimit = 100

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	Create(ctx context.Context, job types.Job) (types.Job, error)
	Get(ctx context.Context, id int) (types.Job, error)
	List(ctx context.Context, limit int) ([]types.Job, error)
	Count(ctx context.Context) (int, error)
}

// JobService encapsulates job-posting use-cases.
type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

func (s *JobService) Create(ctx context.Context, job types.Job) (types.Job, error) {
	if job.Skills == nil {
		job.Skills = []string{}
	}
	return s.repo.Create(ctx, job)
}

func (s *JobService) Get(ctx context.Context, id int) (types.Job, error) {
	return s.repo.Get(ctx, id)
}

func (s *JobService) List(ctx context.Context, limit int) ([]types.Job, error) {
	if limit <= 0 || limit > maxJobListLimit {
		limit = maxJobListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *JobService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
