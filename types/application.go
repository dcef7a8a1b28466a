package types

import "time"

// Application records that a user applied to a job with a computed
// match score. A user may apply to the same job more than once.
type Application struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	JobID      int       `json:"job_id" db:"job_id"`
	MatchScore float64   `json:"match_score" db:"match_score"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ApplicationDetail is an Application joined with job fields for API
// responses. At apply time the fields are snapshotted from the job;
// on listing they are re-joined against current job state and fall
// back to "Unknown" if the job has since vanished.
type ApplicationDetail struct {
	ID         int       `json:"id"`
	JobID      int       `json:"job_id"`
	JobTitle   string    `json:"job_title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`
	MatchScore float64   `json:"match_score"`
	CreatedAt  time.Time `json:"created_at"`
}
