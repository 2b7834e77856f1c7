package dto

import (
	"time"

	"github.com/campuskit/lms-api/internal/models"
)

// QuizAnswerInput pairs a question number with the student's answer value.
type QuizAnswerInput struct {
	QuestionNumber int    `json:"questionNumber" validate:"required,gt=0"`
	Answer         string `json:"answer"`
}

// QuizSubmitRequest carries the full answer set for a quiz attempt.
type QuizSubmitRequest struct {
	Answers []QuizAnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// GradeRequest is the teacher payload attaching a score to a submission.
type GradeRequest struct {
	ScoreObtained *float64 `json:"scoreObtained" validate:"required,gte=0"`
	Feedback      string   `json:"feedback"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID          uint       `json:"id"`
	ContentID   uint       `json:"contentId"`
	StudentID   uint       `json:"studentId"`
	SubmittedAt time.Time  `json:"submittedAt"`
	FileURL     string     `json:"fileUrl,omitempty"`
	Score       *float64   `json:"scoreObtained"`
	Feedback    string     `json:"feedback,omitempty"`
	Status      string     `json:"status"`
	GradedBy    *uint      `json:"gradedBy,omitempty"`
	GradedAt    *time.Time `json:"gradedAt,omitempty"`
}

// QuizResultResponse is the auto-grading outcome of a quiz attempt.
type QuizResultResponse struct {
	ScoreObtained float64 `json:"scoreObtained"`
	TotalMarks    float64 `json:"totalMarks"`
	Percentage    float64 `json:"percentage"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          model.ID,
		ContentID:   model.ContentID,
		StudentID:   model.StudentID,
		SubmittedAt: model.SubmittedAt,
		FileURL:     model.FileURL,
		Score:       model.Score,
		Feedback:    model.Feedback,
		Status:      model.Status,
		GradedBy:    model.GradedBy,
		GradedAt:    model.GradedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
