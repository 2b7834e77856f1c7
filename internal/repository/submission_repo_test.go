package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campuskit/lms-api/internal/models"
)

func seedContent(t *testing.T, db *gorm.DB, kind string) models.Content {
	t.Helper()

	content := models.Content{
		Title:     "Seeded",
		Kind:      kind,
		SubjectID: 1,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&content).Error)
	return content
}

func TestUpsertInsertsThenReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	content := seedContent(t, db, models.ContentKindAssignment)
	ctx := context.Background()

	first := models.Submission{
		ContentID:   content.ID,
		StudentID:   42,
		SubmittedAt: time.Now().UTC(),
		FileURL:     "https://files.local/first.pdf",
		Status:      models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Upsert(ctx, &first))

	score := 80.0
	graderID := uint(7)
	now := time.Now().UTC()
	graded := first
	graded.Score = &score
	graded.Feedback = "solid work"
	graded.Status = models.SubmissionStatusGraded
	graded.GradedBy = &graderID
	graded.GradedAt = &now
	require.NoError(t, repo.Update(ctx, &graded))

	// A resubmission overwrites the slot and clears the grade.
	replacement := models.Submission{
		ContentID:   content.ID,
		StudentID:   42,
		SubmittedAt: time.Now().UTC(),
		FileURL:     "https://files.local/second.pdf",
		Status:      models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Upsert(ctx, &replacement))

	stored, err := repo.GetByContentAndStudent(ctx, content.ID, 42)
	require.NoError(t, err)
	require.Equal(t, "https://files.local/second.pdf", stored.FileURL)
	require.Equal(t, models.SubmissionStatusSubmitted, stored.Status)
	require.Nil(t, stored.Score)
	require.Nil(t, stored.GradedBy)
	require.Nil(t, stored.GradedAt)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Where("content_id = ?", content.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpsertConcurrentWritersKeepSingleRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	content := seedContent(t, db, models.ContentKindAssignment)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			submission := models.Submission{
				ContentID:   content.ID,
				StudentID:   42,
				SubmittedAt: time.Now().UTC(),
				FileURL:     fmt.Sprintf("https://files.local/attempt-%d.pdf", n),
				Status:      models.SubmissionStatusSubmitted,
			}
			errs <- repo.Upsert(context.Background(), &submission)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).
		Where("content_id = ? AND student_id = ?", content.ID, 42).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpsertKeepsDistinctStudentsApart(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	content := seedContent(t, db, models.ContentKindAssignment)
	ctx := context.Background()

	for _, studentID := range []uint{1, 2, 3} {
		submission := models.Submission{
			ContentID:   content.ID,
			StudentID:   studentID,
			SubmittedAt: time.Now().UTC(),
			Status:      models.SubmissionStatusSubmitted,
		}
		require.NoError(t, repo.Upsert(ctx, &submission))
	}

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Where("content_id = ?", content.ID).Count(&count).Error)
	require.Equal(t, int64(3), count)
}

func TestListByContentPaginatesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	content := seedContent(t, db, models.ContentKindAssignment)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		submission := models.Submission{
			ContentID:   content.ID,
			StudentID:   uint(100 + i),
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
			Status:      models.SubmissionStatusSubmitted,
		}
		require.NoError(t, repo.Upsert(ctx, &submission))
	}

	page, total, err := repo.ListByContent(ctx, content.ID, 2, 2)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	require.Equal(t, uint(102), page[0].StudentID)
	require.Equal(t, uint(101), page[1].StudentID)
}

func TestListByContentEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	content := seedContent(t, db, models.ContentKindAssignment)

	page, total, err := repo.ListByContent(context.Background(), content.ID, 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, page)
}

func TestGetByContentAndStudentNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	_, err := repo.GetByContentAndStudent(context.Background(), 1, 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
