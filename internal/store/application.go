package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/resume-analyzer/apiserver/types"
)

// ApplicationRepository handles persistence for job applications.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	app.CreatedAt = time.Now()

	const query = `
		INSERT INTO applications (user_id, job_id, match_score, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		app.UserID,
		app.JobID,
		app.MatchScore,
		app.CreatedAt,
	).Scan(&app.ID); err != nil {
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID int) ([]types.Application, error) {
	const query = `
		SELECT id, user_id, job_id, match_score, created_at
		FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []types.Application
	for rows.Next() {
		var app types.Application
		if err := rows.Scan(
			&app.ID,
			&app.UserID,
			&app.JobID,
			&app.MatchScore,
			&app.CreatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *ApplicationRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM applications`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountSince counts applications created at or after the given time.
func (r *ApplicationRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(1) FROM applications WHERE created_at >= $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
