package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/campuskit/lms-api/internal/dto"
	"github.com/campuskit/lms-api/internal/models"
	"github.com/campuskit/lms-api/internal/observability"
	"github.com/campuskit/lms-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrFileRequired indicates the assignment submission lacked a file.
	ErrFileRequired = errors.New("submission file is required")
	// ErrNoAnswers indicates a quiz attempt arrived without answers.
	ErrNoAnswers = errors.New("no answers provided")
	// ErrNotQuiz indicates quiz answers were submitted against non-quiz content.
	ErrNotQuiz = errors.New("content is not a quiz")
	// ErrUnsupportedFileType indicates the uploaded file failed MIME sniffing.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// SubmissionService owns the submission record lifecycle: idempotent
// upsert-by-student submissions, quiz auto-grading and teacher grading.
//
// Resubmission follows a full-replace contract: every mutable field of the
// existing slot is overwritten and any prior grade is cleared. Quizzes are
// single-attempt in the same sense, a second attempt replaces the first.
type SubmissionService interface {
	SubmitAssignment(ctx context.Context, contentID, studentID uint, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	SubmitQuizAnswers(ctx context.Context, contentID, studentID uint, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error)
	GradeAssignment(ctx context.Context, contentID, studentID, graderID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error)
	ListSubmissions(ctx context.Context, contentID uint, page, limit int) ([]dto.SubmissionResponse, dto.PaginationMeta, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	contents    repository.ContentRepository
	validator   *validator.Validate
	storage     FileStorage
	events      SubmissionEvents
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, contentRepo repository.ContentRepository, validate *validator.Validate, storage FileStorage, events SubmissionEvents, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		contents:    contentRepo,
		validator:   validate,
		storage:     storage,
		events:      events,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/campuskit/lms-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) SubmitAssignment(ctx context.Context, contentID, studentID uint, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit_assignment", trace.WithAttributes(
		attribute.Int64("lms.content_id", int64(contentID)),
		attribute.Int64("lms.student_id", int64(studentID)),
	))
	defer span.End()

	if file == nil {
		return dto.SubmissionResponse{}, ErrFileRequired
	}

	content, err := s.loadActiveContent(ctx, contentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "content_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	if content.IsPastDue(now) {
		s.logger.Warn().
			Uint("content_id", contentID).
			Uint("student_id", studentID).
			Msg("late submission accepted")
	}

	if err := validateSubmissionFile(file); err != nil {
		return dto.SubmissionResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	fileURL, err := s.storage.Upload(ctx, file.Filename, reader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload_failed")
		return dto.SubmissionResponse{}, fmt.Errorf("failed to store submission file: %w", err)
	}

	// Full replace: a resubmission overwrites the student's slot and clears
	// any prior grade. The repository issues this as one keyed upsert.
	submission := models.Submission{
		ContentID:   contentID,
		StudentID:   studentID,
		SubmittedAt: now,
		FileURL:     fileURL,
		Status:      models.SubmissionStatusSubmitted,
	}

	if err := s.submissions.Upsert(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert_failed")
		return dto.SubmissionResponse{}, err
	}

	stored, err := s.submissions.GetByContentAndStudent(ctx, contentID, studentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsRecorded().WithLabelValues(content.Kind, stored.Status).Inc()

	if s.events != nil {
		s.events.Submitted(ctx, SubmissionEvent{
			ContentID:  contentID,
			StudentID:  studentID,
			Kind:       content.Kind,
			Status:     stored.Status,
			OccurredAt: now,
		})
	}

	s.logger.Info().
		Uint("content_id", contentID).
		Uint("student_id", studentID).
		Msg("assignment submitted")

	return dto.NewSubmissionResponse(stored), nil
}

func (s *submissionService) SubmitQuizAnswers(ctx context.Context, contentID, studentID uint, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit_quiz", trace.WithAttributes(
		attribute.Int64("lms.content_id", int64(contentID)),
		attribute.Int64("lms.student_id", int64(studentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResultResponse{}, err
	}

	if len(payload.Answers) == 0 {
		return dto.QuizResultResponse{}, ErrNoAnswers
	}

	content, err := s.loadActiveContent(ctx, contentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "content_lookup_failed")
		return dto.QuizResultResponse{}, err
	}

	if !content.IsQuiz() {
		return dto.QuizResultResponse{}, ErrNotQuiz
	}

	score, unmatched := scoreQuizAnswers(content.Questions, payload.Answers)
	for _, questionNumber := range unmatched {
		s.logger.Warn().
			Uint("content_id", contentID).
			Uint("student_id", studentID).
			Int("question_number", questionNumber).
			Msg("quiz answer references unknown question, no credit given")
	}

	total := content.TotalQuizPoints()
	now := s.now()
	obtained := score

	// Quizzes are graded at submission time, there is no teacher step.
	submission := models.Submission{
		ContentID:   contentID,
		StudentID:   studentID,
		SubmittedAt: now,
		Score:       &obtained,
		Status:      models.SubmissionStatusGraded,
		GradedAt:    &now,
	}

	if err := s.submissions.Upsert(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert_failed")
		return dto.QuizResultResponse{}, err
	}

	observability.SubmissionsRecorded().WithLabelValues(content.Kind, models.SubmissionStatusGraded).Inc()

	if s.events != nil {
		s.events.Graded(ctx, SubmissionEvent{
			ContentID:  contentID,
			StudentID:  studentID,
			Kind:       content.Kind,
			Status:     models.SubmissionStatusGraded,
			Score:      &obtained,
			OccurredAt: now,
		})
	}

	s.logger.Info().
		Uint("content_id", contentID).
		Uint("student_id", studentID).
		Float64("score", score).
		Float64("total", total).
		Msg("quiz submitted")

	return dto.QuizResultResponse{
		ScoreObtained: score,
		TotalMarks:    total,
		Percentage:    percentageOf(score, total),
	}, nil
}

func (s *submissionService) GradeAssignment(ctx context.Context, contentID, studentID, graderID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.grade", trace.WithAttributes(
		attribute.Int64("lms.content_id", int64(contentID)),
		attribute.Int64("lms.student_id", int64(studentID)),
		attribute.Int64("lms.grader_id", int64(graderID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	content, err := s.loadActiveContent(ctx, contentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "content_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByContentAndStudent(ctx, contentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	submission.Score = payload.ScoreObtained
	submission.Feedback = payload.Feedback
	submission.Status = models.SubmissionStatusGraded
	submission.GradedBy = &graderID
	submission.GradedAt = &now

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsRecorded().WithLabelValues(content.Kind, models.SubmissionStatusGraded).Inc()

	if s.events != nil {
		s.events.Graded(ctx, SubmissionEvent{
			ContentID:  contentID,
			StudentID:  studentID,
			Kind:       content.Kind,
			Status:     models.SubmissionStatusGraded,
			Score:      submission.Score,
			OccurredAt: now,
		})
	}

	s.logger.Info().
		Uint("content_id", contentID).
		Uint("student_id", studentID).
		Uint("graded_by", graderID).
		Msg("assignment graded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListSubmissions(ctx context.Context, contentID uint, page, limit int) ([]dto.SubmissionResponse, dto.PaginationMeta, error) {
	if _, err := s.loadActiveContent(ctx, contentID); err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	submissions, total, err := s.submissions.ListByContent(ctx, contentID, page, limit)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	return dto.NewSubmissionResponseSlice(submissions), dto.NewPaginationMeta(page, limit, total), nil
}

func (s *submissionService) loadActiveContent(ctx context.Context, contentID uint) (models.Content, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Content{}, ErrContentNotFound
		}
		return models.Content{}, err
	}

	if !content.IsActive {
		return models.Content{}, ErrContentNotFound
	}

	return content, nil
}

// scoreQuizAnswers walks the answer set against the question index and sums
// the points of exact matches. Comparison is case- and whitespace-sensitive,
// there is no partial credit. Question numbers with no matching definition
// are returned so the caller can log them; they never error.
func scoreQuizAnswers(questions []models.QuizQuestion, answers []dto.QuizAnswerInput) (float64, []int) {
	byNumber := make(map[int]models.QuizQuestion, len(questions))
	for _, question := range questions {
		byNumber[question.QuestionNumber] = question
	}

	var score float64
	var unmatched []int
	for _, answer := range answers {
		question, ok := byNumber[answer.QuestionNumber]
		if !ok {
			unmatched = append(unmatched, answer.QuestionNumber)
			continue
		}
		if answer.Answer == question.CorrectAnswer {
			score += question.Points
		}
	}

	return score, unmatched
}

// percentageOf rounds to two decimals and defines the zero-total case as 0
// so empty quizzes never divide by zero.
func percentageOf(score, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(score/total*100*100) / 100
}

func validateSubmissionFile(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{
		"application/pdf",
		"application/zip",
		"application/x-zip-compressed",
		"text/plain",
		"image/jpeg",
		"image/png",
	}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedFileType, mime.String())
}
