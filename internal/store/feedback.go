package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/resume-analyzer/apiserver/types"
)

// FeedbackRepository handles persistence for user feedback.
type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, fb types.Feedback) (types.Feedback, error) {
	fb.CreatedAt = time.Now()

	const query = `
		INSERT INTO feedback (user_id, message, rating, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		fb.UserID,
		fb.Message,
		fb.Rating,
		fb.CreatedAt,
	).Scan(&fb.ID); err != nil {
		return types.Feedback{}, err
	}
	return fb, nil
}

func (r *FeedbackRepository) List(ctx context.Context, limit int) ([]types.Feedback, error) {
	if limit < 1 {
		limit = 200
	}

	const query = `
		SELECT id, user_id, message, rating, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []types.Feedback
	for rows.Next() {
		var fb types.Feedback
		if err := rows.Scan(
			&fb.ID,
			&fb.UserID,
			&fb.Message,
			&fb.Rating,
			&fb.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Stats aggregates the average rating and total count across all feedback.
func (r *FeedbackRepository) Stats(ctx context.Context) (types.FeedbackStats, error) {
	const query = `SELECT COALESCE(AVG(rating), 0), COUNT(1) FROM feedback`
	var stats types.FeedbackStats
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.Average, &stats.Count); err != nil {
		return types.FeedbackStats{}, err
	}
	return stats, nil
}
