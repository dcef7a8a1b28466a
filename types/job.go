package types

import "time"

// Job is a posting created by an administrator. Jobs are readable by
// anyone and are never updated or deleted once posted.
type Job struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Company     string    `json:"company" db:"company"`
	Location    string    `json:"location" db:"location"`
	Description string    `json:"description" db:"description"`
	Skills      []string  `json:"skills" db:"skills"`
	CreatedBy   int       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
