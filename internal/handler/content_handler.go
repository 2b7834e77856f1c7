package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/lms-api/internal/dto"
	"github.com/campuskit/lms-api/internal/middleware"
	"github.com/campuskit/lms-api/internal/service"
	"github.com/campuskit/lms-api/internal/utils"
)

// ContentHandler manages LMS content endpoints.
type ContentHandler struct {
	service   service.ContentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewContentHandler builds a content handler instance.
func NewContentHandler(service service.ContentService, validator *validator.Validate, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The static
// /upload route must be registered before the :contentId parameter routes.
func (h *ContentHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole("teacher", "admin")

	router.Post("/upload", teacherOnly, h.upload)
	router.Get("", h.list)
	router.Get("/:contentId", h.get)
	router.Put("/:contentId", teacherOnly, h.update)
	router.Delete("/:contentId", teacherOnly, h.remove)
}

func (h *ContentHandler) upload(c *fiber.Ctx) error {
	var payload dto.ContentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	// Upload file is optional for study material metadata-only records.
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	content, err := h.service.Upload(c.Context(), payload, file, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Content uploaded", fiber.Map{"content": content})
}

func (h *ContentHandler) list(c *fiber.Ctx) error {
	filter := dto.ContentListFilter{
		Kind:      c.Query("kind"),
		SubjectID: parseQueryUint(c, "subject"),
		Page:      parseQueryInt(c, "page", 1),
		Limit:     parseQueryInt(c, "limit", 10),
	}

	contents, pagination, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "", fiber.Map{
		"content":    contents,
		"pagination": pagination,
	})
}

func (h *ContentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "contentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	content, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "", fiber.Map{"content": content})
}

func (h *ContentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "contentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ContentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	content, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Content updated", fiber.Map{"content": content})
}

func (h *ContentHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "contentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Deactivate(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Content deleted", nil)
}

func (h *ContentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "content not found")
	case errors.Is(err, service.ErrInvalidQuestions),
		errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("content operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}
}
