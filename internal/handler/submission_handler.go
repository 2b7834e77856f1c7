package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/lms-api/internal/dto"
	"github.com/campuskit/lms-api/internal/middleware"
	"github.com/campuskit/lms-api/internal/service"
	"github.com/campuskit/lms-api/internal/utils"
)

// SubmissionHandler manages submission lifecycle endpoints.
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, validator *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	studentOnly := middleware.RequireRole("student")
	teacherOnly := middleware.RequireRole("teacher", "admin")
	submitLimit := middleware.RateLimit("lms-submit", 30, time.Minute)

	router.Post("/:contentId/submit-assignment", studentOnly, submitLimit, h.submitAssignment)
	router.Post("/:contentId/submit-quiz", studentOnly, submitLimit, h.submitQuiz)
	router.Post("/:contentId/:studentId/grade-assignment", teacherOnly, h.gradeAssignment)
	router.Get("/:contentId/submissions", teacherOnly, h.listSubmissions)
}

func (h *SubmissionHandler) submitAssignment(c *fiber.Ctx) error {
	contentID, err := parseUintParam(c, "contentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "No file uploaded")
	}

	submission, err := h.service.SubmitAssignment(c.Context(), contentID, userIDFromContext(c), file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Assignment submitted", fiber.Map{"submission": submission})
}

func (h *SubmissionHandler) submitQuiz(c *fiber.Ctx) error {
	contentID, err := parseUintParam(c, "contentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuizSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SubmitQuizAnswers(c.Context(), contentID, userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Quiz submitted", fiber.Map{"result": result})
}

func (h *SubmissionHandler) gradeAssignment(c *fiber.Ctx) error {
	contentID, err := parseUintParam(c, "contentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.GradeAssignment(c.Context(), contentID, studentID, userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Assignment graded", fiber.Map{"submission": submission})
}

func (h *SubmissionHandler) listSubmissions(c *fiber.Ctx) error {
	contentID, err := parseUintParam(c, "contentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	page := parseQueryInt(c, "page", 1)
	limit := parseQueryInt(c, "limit", 10)

	submissions, pagination, err := h.service.ListSubmissions(c.Context(), contentID, page, limit)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "", fiber.Map{
		"submissions": submissions,
		"pagination":  pagination,
	})
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "content not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrFileRequired),
		errors.Is(err, service.ErrNoAnswers),
		errors.Is(err, service.ErrNotQuiz),
		errors.Is(err, service.ErrUnsupportedFileType),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("submission operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}
}
