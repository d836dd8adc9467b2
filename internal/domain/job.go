package domain

import "time"

// JobStatus enumerates batch job lifecycle states. Completed and failed are
// terminal; there is no transition out of either.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// GenerationItem is one unit of work inside a batch job.
type GenerationItem struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	GradeLevel  int    `json:"grade_level,omitempty"`
}

// Job tracks one batch image-generation request. Progress counts items that
// finished with a success or an accepted fallback; it never decreases.
type Job struct {
	ID           string
	SubjectID    string
	Items        []GenerationItem
	Status       JobStatus
	Progress     int
	TotalItems   int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}
