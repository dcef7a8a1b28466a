package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/resume-analyzer/apiserver/types"
)

const maxFeedbackListLimit = 200

var (
	// ErrRatingOutOfRange is returned for ratings outside 1-5.
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

	// ErrEmptyMessage is returned for blank feedback messages.
	ErrEmptyMessage = errors.New("message is required")
)

// FeedbackRepository defines persistence operations for feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, fb types.Feedback) (types.Feedback, error)
	List(ctx context.Context, limit int) ([]types.Feedback, error)
	Stats(ctx context.Context) (types.FeedbackStats, error)
}

// FeedbackService encapsulates feedback use-cases.
type FeedbackService struct {
	repo FeedbackRepository
}

func NewFeedbackService(repo FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) Submit(ctx context.Context, userID int, message string, rating int) (types.Feedback, error) {
	if strings.TrimSpace(message) == "" {
		return types.Feedback{}, ErrEmptyMessage
	}
	if rating < 1 || rating > 5 {
		return types.Feedback{}, ErrRatingOutOfRange
	}

	return s.repo.Create(ctx, types.Feedback{
		UserID:  userID,
		Message: message,
		Rating:  rating,
	})
}

func (s *FeedbackService) List(ctx context.Context, limit int) ([]types.Feedback, error) {
	if limit <= 0 || limit > maxFeedbackListLimit {
		limit = maxFeedbackListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *FeedbackService) Stats(ctx context.Context) (types.FeedbackStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return types.FeedbackStats{}, err
	}
	stats.Average = math.Round(stats.Average*100) / 100
	return stats, nil
}
