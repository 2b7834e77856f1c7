package models

import (
	"time"

	"gorm.io/datatypes"
)

// Content kinds distributed through the LMS.
const (
	ContentKindStudyMaterial = "study_material"
	ContentKindAssignment    = "assignment"
	ContentKindQuiz          = "quiz"
	ContentKindVideo         = "video"
)

// Quiz question types.
const (
	QuestionTypeMCQ         = "mcq"
	QuestionTypeShortAnswer = "short_answer"
	QuestionTypeEssay       = "essay"
)

// Content represents one unit of distributed learning material, assignment,
// quiz or video, together with its question set and student submissions.
type Content struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Kind        string         `gorm:"size:32;not null;index" json:"type"`
	SubjectID   uint           `gorm:"not null;index" json:"subject_id"`
	SubjectName string         `gorm:"size:255" json:"subject_name"`
	UploaderID  uint           `gorm:"not null" json:"uploaded_by"`
	Batch       string         `gorm:"size:64" json:"batch"`
	Semester    int            `json:"semester"`
	FileURL     string         `gorm:"size:512" json:"file_url"`
	FileSize    int64          `json:"file_size"`
	Duration    int            `json:"duration"`
	DueDate     *time.Time     `json:"due_date"`
	TotalMarks  *float64       `json:"total_marks"`
	IsActive    bool           `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Questions   []QuizQuestion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
	Submissions []Submission   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsQuiz reports whether the content is auto-graded quiz material.
func (c Content) IsQuiz() bool {
	return c.Kind == ContentKindQuiz
}

// IsPastDue returns true when a deadline exists and has already passed.
func (c Content) IsPastDue(reference time.Time) bool {
	return c.DueDate != nil && reference.After(*c.DueDate)
}

// TotalQuizPoints sums the point weight of every question on the record.
func (c Content) TotalQuizPoints() float64 {
	var total float64
	for _, question := range c.Questions {
		total += question.Points
	}
	return total
}

// QuizQuestion is a single question definition embedded in quiz content.
// Question numbers are unique within one content record; the correct answer
// is compared by exact equality and never serialized to clients.
type QuizQuestion struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ContentID      uint           `gorm:"not null;uniqueIndex:idx_content_question" json:"content_id"`
	QuestionNumber int            `gorm:"not null;uniqueIndex:idx_content_question" json:"question_number"`
	Text           string         `gorm:"type:text;not null" json:"question_text"`
	Type           string         `gorm:"size:32;not null" json:"question_type"`
	Options        datatypes.JSON `gorm:"type:json" json:"options"`
	CorrectAnswer  string         `gorm:"size:512" json:"-"`
	Points         float64        `gorm:"not null;default:0" json:"points"`
}
