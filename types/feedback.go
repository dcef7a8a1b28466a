package types

import "time"

// Feedback is a user-submitted message with a 1-5 rating.
type Feedback struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FeedbackStats aggregates feedback ratings for the admin dashboard.
type FeedbackStats struct {
	Average float64 `json:"avg"`
	Count   int     `json:"count"`
}
