package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/resume-analyzer/apiserver/types"
)

// JobRepository handles persistence for job postings.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	job.CreatedAt = time.Now()

	skillsJSON, err := json.Marshal(job.Skills)
	if err != nil {
		return types.Job{}, err
	}

	const query = `
		INSERT INTO jobs (title, company, location, description, skills, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		skillsJSON,
		job.CreatedBy,
		job.CreatedAt,
	).Scan(&job.ID); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) Get(ctx context.Context, id int) (types.Job, error) {
	const query = `
		SELECT id, title, company, location, description, skills, created_by, created_at
		FROM jobs
		WHERE id = $1`
	var job types.Job
	var skillsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Company,
		&job.Location,
		&job.Description,
		&skillsJSON,
		&job.CreatedBy,
		&job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}

	_ = json.Unmarshal(skillsJSON, &job.Skills)
	return job, nil
}

// List returns jobs newest first.
func (r *JobRepository) List(ctx context.Context, limit int) ([]types.Job, error) {
	if limit < 1 {
		limit = 100
	}

	const query = `
		SELECT id, title, company, location, description, skills, created_by, created_at
		FROM jobs
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]types.Job, 0, limit)
	for rows.Next() {
		var job types.Job
		var skillsJSON []byte
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Company,
			&job.Location,
			&job.Description,
			&skillsJSON,
			&job.CreatedBy,
			&job.CreatedAt,
		); err != nil {
			return nil, err
		}

		_ = json.Unmarshal(skillsJSON, &job.Skills)
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *JobRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM jobs`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
