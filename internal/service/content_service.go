package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campuskit/lms-api/internal/dto"
	"github.com/campuskit/lms-api/internal/models"
	"github.com/campuskit/lms-api/internal/repository"
)

var (
	// ErrContentNotFound indicates the content record does not exist or is inactive.
	ErrContentNotFound = errors.New("content not found")
	// ErrInvalidQuestions indicates the quiz question payload failed schema validation.
	ErrInvalidQuestions = errors.New("invalid quiz questions payload")
)

// quizQuestionsSchema guards the shape of the quizQuestions form field before
// it is decoded into typed inputs.
var quizQuestionsSchema = jsonschema.MustCompileString("quiz_questions.json", `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["questionNumber", "questionText", "questionType"],
		"properties": {
			"questionNumber": {"type": "integer", "minimum": 1},
			"questionText": {"type": "string", "minLength": 1},
			"questionType": {"enum": ["mcq", "short_answer", "essay"]},
			"options": {"type": "array", "items": {"type": "string"}},
			"correctAnswer": {"type": "string"},
			"marks": {"type": "number", "minimum": 0}
		}
	}
}`)

// ContentService orchestrates content distribution workflows.
type ContentService interface {
	Upload(ctx context.Context, payload dto.ContentCreateRequest, file *multipart.FileHeader, uploaderID uint) (dto.ContentResponse, error)
	List(ctx context.Context, filter dto.ContentListFilter) ([]dto.ContentResponse, dto.PaginationMeta, error)
	Get(ctx context.Context, id uint) (dto.ContentResponse, error)
	Update(ctx context.Context, id uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error)
	Deactivate(ctx context.Context, id uint) error
}

type contentService struct {
	contents  repository.ContentRepository
	validator *validator.Validate
	storage   FileStorage
	sanitizer *bluemonday.Policy
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewContentService constructs a ContentService instance.
func NewContentService(contentRepo repository.ContentRepository, validate *validator.Validate, storage FileStorage, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ContentService {
	return &contentService{
		contents:  contentRepo,
		validator: validate,
		storage:   storage,
		sanitizer: bluemonday.UGCPolicy(),
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "content_service").Logger(),
	}
}

func (s *contentService) Upload(ctx context.Context, payload dto.ContentCreateRequest, file *multipart.FileHeader, uploaderID uint) (dto.ContentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContentResponse{}, err
	}

	content := models.Content{
		Title:       strings.TrimSpace(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Kind:        payload.Kind,
		SubjectID:   payload.SubjectID,
		SubjectName: payload.SubjectName,
		UploaderID:  uploaderID,
		Batch:       payload.Batch,
		Semester:    payload.Semester,
		Duration:    payload.Duration,
		TotalMarks:  payload.TotalMarks,
		IsActive:    true,
	}

	if payload.DueDate != nil && *payload.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.ContentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		content.DueDate = &due
	}

	if payload.QuestionsJSON != "" {
		questions, err := s.decodeQuestions(payload.QuestionsJSON)
		if err != nil {
			return dto.ContentResponse{}, err
		}
		content.Questions = questions
	}

	if file != nil {
		if err := validateContentFile(file); err != nil {
			return dto.ContentResponse{}, err
		}

		reader, err := file.Open()
		if err != nil {
			return dto.ContentResponse{}, fmt.Errorf("failed to open file: %w", err)
		}
		defer reader.Close()

		fileURL, err := s.storage.Upload(ctx, file.Filename, reader)
		if err != nil {
			return dto.ContentResponse{}, fmt.Errorf("failed to store content file: %w", err)
		}
		content.FileURL = fileURL
		content.FileSize = file.Size
	}

	if err := s.contents.Create(ctx, &content); err != nil {
		return dto.ContentResponse{}, err
	}

	s.logger.Info().
		Uint("content_id", content.ID).
		Str("kind", content.Kind).
		Uint("uploaded_by", uploaderID).
		Msg("content uploaded")

	return dto.NewContentResponse(content), nil
}

func (s *contentService) List(ctx context.Context, filter dto.ContentListFilter) ([]dto.ContentResponse, dto.PaginationMeta, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	contents, total, err := s.contents.ListActive(ctx, repository.ContentFilter{
		Kind:      filter.Kind,
		SubjectID: filter.SubjectID,
		Page:      page,
		PageSize:  limit,
	})
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	return dto.NewContentResponseSlice(contents), dto.NewPaginationMeta(page, limit, total), nil
}

func (s *contentService) Get(ctx context.Context, id uint) (dto.ContentResponse, error) {
	cacheKey := contentCacheKey(id)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ContentResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("content_id", id).Msg("content cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read content cache")
		}
	}

	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContentResponse{}, ErrContentNotFound
		}
		return dto.ContentResponse{}, err
	}

	if !content.IsActive {
		return dto.ContentResponse{}, ErrContentNotFound
	}

	response := dto.NewContentResponse(content)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store content cache")
			}
		}
	}

	return response, nil
}

func (s *contentService) Update(ctx context.Context, id uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContentResponse{}, err
	}

	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContentResponse{}, ErrContentNotFound
		}
		return dto.ContentResponse{}, err
	}

	if !content.IsActive {
		return dto.ContentResponse{}, ErrContentNotFound
	}

	if payload.Title != nil {
		content.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		content.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.SubjectName != nil {
		content.SubjectName = *payload.SubjectName
	}
	if payload.Batch != nil {
		content.Batch = *payload.Batch
	}
	if payload.Semester != nil {
		content.Semester = *payload.Semester
	}
	if payload.Duration != nil {
		content.Duration = *payload.Duration
	}
	if payload.DueDate != nil {
		content.DueDate = payload.DueDate
	}
	if payload.TotalMarks != nil {
		content.TotalMarks = payload.TotalMarks
	}

	if err := s.contents.Update(ctx, &content); err != nil {
		return dto.ContentResponse{}, err
	}

	s.invalidate(ctx, id)
	s.logger.Info().Uint("content_id", id).Msg("content updated")

	return dto.NewContentResponse(content), nil
}

func (s *contentService) Deactivate(ctx context.Context, id uint) error {
	if err := s.contents.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContentNotFound
		}
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info().Uint("content_id", id).Msg("content deactivated")

	return nil
}

func (s *contentService) decodeQuestions(raw string) ([]models.QuizQuestion, error) {
	var generic interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
	}

	if err := quizQuestionsSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
	}

	var inputs []dto.QuizQuestionInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
	}

	seen := make(map[int]struct{}, len(inputs))
	questions := make([]models.QuizQuestion, 0, len(inputs))
	for _, input := range inputs {
		if err := s.validator.Struct(input); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
		}
		if _, duplicate := seen[input.QuestionNumber]; duplicate {
			return nil, fmt.Errorf("%w: duplicate question number %d", ErrInvalidQuestions, input.QuestionNumber)
		}
		seen[input.QuestionNumber] = struct{}{}

		var options datatypes.JSON
		if len(input.Options) > 0 {
			encoded, err := json.Marshal(input.Options)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
			}
			options = encoded
		}

		questions = append(questions, models.QuizQuestion{
			QuestionNumber: input.QuestionNumber,
			Text:           input.Text,
			Type:           input.Type,
			Options:        options,
			CorrectAnswer:  input.CorrectAnswer,
			Points:         input.Points,
		})
	}

	return questions, nil
}

func (s *contentService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, contentCacheKey(id)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("content_id", id).Msg("failed to invalidate content cache")
	}
}

func contentCacheKey(id uint) string {
	return fmt.Sprintf("lms:content:%d", id)
}

func validateContentFile(file *multipart.FileHeader) error {
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
		"video/mp4",
		"video/webm",
	}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedFileType, mime.String())
}
