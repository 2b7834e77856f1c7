package dto

import (
	"encoding/json"
	"time"

	"github.com/campuskit/lms-api/internal/models"
)

// ContentCreateRequest describes the multipart payload for content upload.
// Quiz questions arrive as a JSON-encoded form field validated against a
// schema before being decoded.
type ContentCreateRequest struct {
	Title         string   `form:"title" validate:"required,max=255"`
	Description   string   `form:"description"`
	Kind          string   `form:"type" validate:"required,oneof=study_material assignment quiz video"`
	SubjectID     uint     `form:"subjectId" validate:"required,gt=0"`
	SubjectName   string   `form:"subjectName" validate:"max=255"`
	Batch         string   `form:"batch" validate:"max=64"`
	Semester      int      `form:"semester" validate:"gte=0"`
	Duration      int      `form:"duration" validate:"gte=0"`
	DueDate       *string  `form:"dueDate"`
	TotalMarks    *float64 `form:"totalMarks" validate:"omitempty,gte=0"`
	QuestionsJSON string   `form:"quizQuestions"`
}

// QuizQuestionInput is one decoded question definition from QuestionsJSON.
type QuizQuestionInput struct {
	QuestionNumber int      `json:"questionNumber" validate:"required,gt=0"`
	Text           string   `json:"questionText" validate:"required"`
	Type           string   `json:"questionType" validate:"required,oneof=mcq short_answer essay"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correctAnswer"`
	Points         float64  `json:"marks" validate:"gte=0"`
}

// ContentUpdateRequest allows partial updates of content metadata.
type ContentUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description"`
	SubjectName *string    `json:"subjectName" validate:"omitempty,max=255"`
	Batch       *string    `json:"batch" validate:"omitempty,max=64"`
	Semester    *int       `json:"semester" validate:"omitempty,gte=0"`
	Duration    *int       `json:"duration" validate:"omitempty,gte=0"`
	DueDate     *time.Time `json:"dueDate"`
	TotalMarks  *float64   `json:"totalMarks" validate:"omitempty,gte=0"`
}

// ContentListFilter describes query string filters for content listings.
type ContentListFilter struct {
	Kind      string `query:"kind" validate:"omitempty,oneof=study_material assignment quiz video"`
	SubjectID *uint  `query:"subject"`
	Page      int    `query:"page" validate:"gte=0"`
	Limit     int    `query:"limit" validate:"gte=0,lte=100"`
}

// QuizQuestionResponse serializes a question without exposing the answer key.
type QuizQuestionResponse struct {
	QuestionNumber int      `json:"questionNumber"`
	Text           string   `json:"questionText"`
	Type           string   `json:"questionType"`
	Options        []string `json:"options"`
	Points         float64  `json:"marks"`
}

// ContentResponse is returned to API clients when viewing content.
type ContentResponse struct {
	ID          uint                   `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Kind        string                 `json:"type"`
	SubjectID   uint                   `json:"subjectId"`
	SubjectName string                 `json:"subjectName"`
	UploaderID  uint                   `json:"uploadedBy"`
	Batch       string                 `json:"batch,omitempty"`
	Semester    int                    `json:"semester,omitempty"`
	FileURL     string                 `json:"fileUrl,omitempty"`
	FileSize    int64                  `json:"fileSize,omitempty"`
	Duration    int                    `json:"duration,omitempty"`
	DueDate     *time.Time             `json:"dueDate,omitempty"`
	TotalMarks  *float64               `json:"totalMarks,omitempty"`
	Questions   []QuizQuestionResponse `json:"quizQuestions,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// NewContentResponse converts a Content model into a DTO.
func NewContentResponse(model models.Content) ContentResponse {
	response := ContentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Kind:        model.Kind,
		SubjectID:   model.SubjectID,
		SubjectName: model.SubjectName,
		UploaderID:  model.UploaderID,
		Batch:       model.Batch,
		Semester:    model.Semester,
		FileURL:     model.FileURL,
		FileSize:    model.FileSize,
		Duration:    model.Duration,
		DueDate:     model.DueDate,
		TotalMarks:  model.TotalMarks,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if len(model.Questions) > 0 {
		questions := make([]QuizQuestionResponse, 0, len(model.Questions))
		for _, question := range model.Questions {
			var options []string
			if len(question.Options) > 0 {
				_ = json.Unmarshal(question.Options, &options)
			}
			questions = append(questions, QuizQuestionResponse{
				QuestionNumber: question.QuestionNumber,
				Text:           question.Text,
				Type:           question.Type,
				Options:        options,
				Points:         question.Points,
			})
		}
		response.Questions = questions
	}

	return response
}

// NewContentResponseSlice converts content models into DTOs.
func NewContentResponseSlice(contents []models.Content) []ContentResponse {
	responses := make([]ContentResponse, 0, len(contents))
	for _, content := range contents {
		responses = append(responses, NewContentResponse(content))
	}

	return responses
}
