package models

import "time"

const (
	// SubmissionStatusPending indicates a slot that exists but has no artifact yet.
	SubmissionStatusPending = "pending"
	// SubmissionStatusSubmitted indicates the submission has been uploaded but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
)

// Submission is one student's response artifact for a content record.
// The unique composite index on (content_id, student_id) enforces the
// at-most-one-submission-per-student invariant at the schema level; writes go
// through an atomic keyed upsert so concurrent resubmissions cannot duplicate.
type Submission struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ContentID   uint       `gorm:"not null;uniqueIndex:idx_content_student" json:"content_id"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_content_student" json:"student_id"`
	SubmittedAt time.Time  `gorm:"not null" json:"submitted_at"`
	FileURL     string     `gorm:"size:512" json:"file_url"`
	Score       *float64   `json:"score"`
	Feedback    string     `gorm:"type:text" json:"feedback"`
	Status      string     `gorm:"size:32;not null" json:"status"`
	GradedBy    *uint      `json:"graded_by"`
	GradedAt    *time.Time `json:"graded_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsGraded reports whether the submission has a final score.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
