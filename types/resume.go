package types

import "time"

// Resume is an uploaded document with its extracted plain text.
// A resume belongs exclusively to the uploading user and is immutable
// after upload.
type Resume struct {
	ID       int    `json:"id" db:"id"`
	UserID   int    `json:"user_id" db:"user_id"`
	Filename string `json:"filename" db:"filename"`

	// Text is the plain text extracted from the uploaded file.
	Text string `json:"-" db:"text"`

	// Skills holds entities extracted from the text by the remote NER
	// service. Empty when the service is unconfigured or unavailable.
	Skills []string `json:"skills" db:"skills"`

	// Similarity maps a job-description text to the 0-100 match score
	// computed against this resume at upload time.
	Similarity map[string]float64 `json:"similarity_score" db:"similarity"`

	// ObjectKey locates the raw uploaded file in object storage.
	// Empty when archiving is disabled.
	ObjectKey string `json:"-" db:"object_key"`

	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}
