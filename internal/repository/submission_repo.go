package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campuskit/lms-api/internal/models"
)

// SubmissionRepository defines data operations for student submissions.
type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	GetByContentAndStudent(ctx context.Context, contentID, studentID uint) (models.Submission, error)
	ListByContent(ctx context.Context, contentID uint, page, pageSize int) ([]models.Submission, int64, error)
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Upsert inserts the submission, or replaces the existing row for the same
// (content_id, student_id) pair in a single conditional statement. The whole
// mutable field set is overwritten, so a resubmission also clears any prior
// grade. Issuing this as one INSERT ... ON CONFLICT keeps concurrent
// resubmissions from the same student from ever producing duplicate rows.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"submitted_at", "file_url", "score", "feedback", "status",
			"graded_by", "graded_at", "updated_at",
		}),
	}).Create(submission).Error
}

func (r *submissionRepository) GetByContentAndStudent(ctx context.Context, contentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByContent(ctx context.Context, contentID uint, page, pageSize int) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("content_id = ?", contentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("submitted_at DESC")

	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
