package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/campuskit/lms-api/internal/models"
	"github.com/campuskit/lms-api/internal/repository"
)

type memoryContentRepo struct {
	mu       sync.Mutex
	contents map[uint]models.Content
	nextID   uint
}

func newMemoryContentRepo() *memoryContentRepo {
	return &memoryContentRepo{
		contents: make(map[uint]models.Content),
		nextID:   1,
	}
}

func (m *memoryContentRepo) ListActive(ctx context.Context, filter repository.ContentFilter) ([]models.Content, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := make([]models.Content, 0, len(m.contents))
	for _, content := range m.contents {
		if !content.IsActive {
			continue
		}
		if filter.Kind != "" && content.Kind != filter.Kind {
			continue
		}
		if filter.SubjectID != nil && content.SubjectID != *filter.SubjectID {
			continue
		}
		filtered = append(filtered, content)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(filtered) {
			return []models.Content{}, total, nil
		}
		end := start + filter.PageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}

	return filtered, total, nil
}

func (m *memoryContentRepo) GetByID(ctx context.Context, id uint) (models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, ok := m.contents[id]
	if !ok {
		return models.Content{}, gorm.ErrRecordNotFound
	}
	return content, nil
}

func (m *memoryContentRepo) Create(ctx context.Context, content *models.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	content.ID = m.nextID
	now := time.Now()
	content.CreatedAt = now
	content.UpdatedAt = now
	m.contents[m.nextID] = *content
	m.nextID++
	return nil
}

func (m *memoryContentRepo) Update(ctx context.Context, content *models.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contents[content.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	content.UpdatedAt = time.Now()
	m.contents[content.ID] = *content
	return nil
}

func (m *memoryContentRepo) Deactivate(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, ok := m.contents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	content.IsActive = false
	m.contents[id] = content
	return nil
}

type submissionKey struct {
	contentID uint
	studentID uint
}

type memorySubmissionRepo struct {
	mu          sync.Mutex
	submissions map[submissionKey]models.Submission
	nextID      uint
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{
		submissions: make(map[submissionKey]models.Submission),
		nextID:      1,
	}
}

// Upsert mirrors the keyed INSERT ... ON CONFLICT semantics of the real
// repository: the row identity and creation time survive, every mutable
// field is replaced.
func (m *memorySubmissionRepo) Upsert(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := submissionKey{submission.ContentID, submission.StudentID}
	now := time.Now()

	if existing, ok := m.submissions[key]; ok {
		submission.ID = existing.ID
		submission.CreatedAt = existing.CreatedAt
	} else {
		submission.ID = m.nextID
		submission.CreatedAt = now
		m.nextID++
	}
	submission.UpdatedAt = now
	m.submissions[key] = *submission
	return nil
}

func (m *memorySubmissionRepo) GetByContentAndStudent(ctx context.Context, contentID, studentID uint) (models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	submission, ok := m.submissions[submissionKey{contentID, studentID}]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memorySubmissionRepo) ListByContent(ctx context.Context, contentID uint, page, pageSize int) ([]models.Submission, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := make([]models.Submission, 0, len(m.submissions))
	for _, submission := range m.submissions {
		if submission.ContentID == contentID {
			filtered = append(filtered, submission)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].SubmittedAt.After(filtered[j].SubmittedAt)
	})

	total := int64(len(filtered))
	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * pageSize
		if start >= len(filtered) {
			return []models.Submission{}, total, nil
		}
		end := start + pageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}

	return filtered, total, nil
}

func (m *memorySubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := submissionKey{submission.ContentID, submission.StudentID}
	if _, ok := m.submissions[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	submission.UpdatedAt = time.Now()
	m.submissions[key] = *submission
	return nil
}

func (m *memorySubmissionRepo) count(contentID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key := range m.submissions {
		if key.contentID == contentID {
			count++
		}
	}
	return count
}
