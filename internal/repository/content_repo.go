package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campuskit/lms-api/internal/models"
)

// ContentFilter describes pagination and filtering options for content listings.
type ContentFilter struct {
	Kind      string
	SubjectID *uint
	Page      int
	PageSize  int
}

// ContentRepository defines persistence operations for LMS content.
type ContentRepository interface {
	ListActive(ctx context.Context, filter ContentFilter) ([]models.Content, int64, error)
	GetByID(ctx context.Context, id uint) (models.Content, error)
	Create(ctx context.Context, content *models.Content) error
	Update(ctx context.Context, content *models.Content) error
	Deactivate(ctx context.Context, id uint) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository instantiates a GORM-backed repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) ListActive(ctx context.Context, filter ContentFilter) ([]models.Content, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Content{}).Where("is_active = ?", true)

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}

	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var contents []models.Content
	if err := query.Find(&contents).Error; err != nil {
		return nil, 0, err
	}

	return contents, total, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id uint) (models.Content, error) {
	var content models.Content
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number ASC")
		}).
		First(&content, id).Error; err != nil {
		return models.Content{}, err
	}

	return content, nil
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepository) Update(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Save(content).Error
}

func (r *contentRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Content{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
