package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/lms-api/internal/dto"
	"github.com/campuskit/lms-api/internal/service"
)

type stubContentService struct {
	upload     func(ctx context.Context, payload dto.ContentCreateRequest, file *multipart.FileHeader, uploaderID uint) (dto.ContentResponse, error)
	list       func(ctx context.Context, filter dto.ContentListFilter) ([]dto.ContentResponse, dto.PaginationMeta, error)
	get        func(ctx context.Context, id uint) (dto.ContentResponse, error)
	update     func(ctx context.Context, id uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error)
	deactivate func(ctx context.Context, id uint) error
}

func (s *stubContentService) Upload(ctx context.Context, payload dto.ContentCreateRequest, file *multipart.FileHeader, uploaderID uint) (dto.ContentResponse, error) {
	return s.upload(ctx, payload, file, uploaderID)
}

func (s *stubContentService) List(ctx context.Context, filter dto.ContentListFilter) ([]dto.ContentResponse, dto.PaginationMeta, error) {
	return s.list(ctx, filter)
}

func (s *stubContentService) Get(ctx context.Context, id uint) (dto.ContentResponse, error) {
	return s.get(ctx, id)
}

func (s *stubContentService) Update(ctx context.Context, id uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error) {
	return s.update(ctx, id, payload)
}

func (s *stubContentService) Deactivate(ctx context.Context, id uint) error {
	return s.deactivate(ctx, id)
}

func newContentTestApp(t *testing.T, svc service.ContentService, userID uint, role string) *fiber.App {
	t.Helper()

	app := fiber.New()
	group := app.Group("/lms", func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	})

	handler := NewContentHandler(svc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	handler.Register(group)
	return app
}

func multipartUploadRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/lms/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadContentEndpoint(t *testing.T) {
	svc := &stubContentService{
		upload: func(ctx context.Context, payload dto.ContentCreateRequest, file *multipart.FileHeader, uploaderID uint) (dto.ContentResponse, error) {
			require.Equal(t, "Algebra notes", payload.Title)
			require.Equal(t, "study_material", payload.Kind)
			require.Equal(t, uint(3), payload.SubjectID)
			require.Equal(t, uint(7), uploaderID)
			require.Nil(t, file)
			return dto.ContentResponse{ID: 1, Title: payload.Title, Kind: payload.Kind}, nil
		},
	}
	app := newContentTestApp(t, svc, 7, "teacher")

	req := multipartUploadRequest(t, map[string]string{
		"title":     "Algebra notes",
		"type":      "study_material",
		"subjectId": "3",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Content uploaded", body["message"])
	content := body["content"].(map[string]interface{})
	require.Equal(t, "Algebra notes", content["title"])
}

func TestUploadContentRejectsStudentRole(t *testing.T) {
	svc := &stubContentService{}
	app := newContentTestApp(t, svc, 42, "student")

	req := multipartUploadRequest(t, map[string]string{
		"title":     "Algebra notes",
		"type":      "study_material",
		"subjectId": "3",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestUploadContentInvalidQuestions(t *testing.T) {
	svc := &stubContentService{
		upload: func(ctx context.Context, payload dto.ContentCreateRequest, file *multipart.FileHeader, uploaderID uint) (dto.ContentResponse, error) {
			return dto.ContentResponse{}, service.ErrInvalidQuestions
		},
	}
	app := newContentTestApp(t, svc, 7, "teacher")

	req := multipartUploadRequest(t, map[string]string{
		"title":         "Broken quiz",
		"type":          "quiz",
		"subjectId":     "3",
		"quizQuestions": "not-json",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListContentEndpoint(t *testing.T) {
	svc := &stubContentService{
		list: func(ctx context.Context, filter dto.ContentListFilter) ([]dto.ContentResponse, dto.PaginationMeta, error) {
			require.Equal(t, "quiz", filter.Kind)
			require.NotNil(t, filter.SubjectID)
			require.Equal(t, uint(3), *filter.SubjectID)
			return []dto.ContentResponse{{ID: 1}, {ID: 2}}, dto.NewPaginationMeta(1, 10, 2), nil
		},
	}
	app := newContentTestApp(t, svc, 42, "student")

	req := httptest.NewRequest(http.MethodGet, "/lms?kind=quiz&subject=3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Len(t, body["content"].([]interface{}), 2)
	pagination := body["pagination"].(map[string]interface{})
	require.Equal(t, 2.0, pagination["total"])
	require.Equal(t, 1.0, pagination["pages"])
}

func TestGetContentEndpoint(t *testing.T) {
	svc := &stubContentService{
		get: func(ctx context.Context, id uint) (dto.ContentResponse, error) {
			require.Equal(t, uint(5), id)
			return dto.ContentResponse{ID: 5, Title: "Algebra notes"}, nil
		},
	}
	app := newContentTestApp(t, svc, 42, "student")

	req := httptest.NewRequest(http.MethodGet, "/lms/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	content := body["content"].(map[string]interface{})
	require.Equal(t, "Algebra notes", content["title"])
}

func TestGetContentNotFound(t *testing.T) {
	svc := &stubContentService{
		get: func(ctx context.Context, id uint) (dto.ContentResponse, error) {
			return dto.ContentResponse{}, service.ErrContentNotFound
		},
	}
	app := newContentTestApp(t, svc, 42, "student")

	req := httptest.NewRequest(http.MethodGet, "/lms/999", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, false, body["success"])
	require.Equal(t, "content not found", body["message"])
}

func TestGetContentInvalidParam(t *testing.T) {
	svc := &stubContentService{}
	app := newContentTestApp(t, svc, 42, "student")

	req := httptest.NewRequest(http.MethodGet, "/lms/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateContentEndpoint(t *testing.T) {
	svc := &stubContentService{
		update: func(ctx context.Context, id uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error) {
			require.Equal(t, uint(5), id)
			require.NotNil(t, payload.Title)
			require.Equal(t, "Renamed", *payload.Title)
			return dto.ContentResponse{ID: 5, Title: *payload.Title}, nil
		},
	}
	app := newContentTestApp(t, svc, 7, "teacher")

	req := httptest.NewRequest(http.MethodPut, "/lms/5", bytes.NewBufferString(`{"title": "Renamed"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "Content updated", body["message"])
}

func TestDeleteContentEndpoint(t *testing.T) {
	deactivated := uint(0)
	svc := &stubContentService{
		deactivate: func(ctx context.Context, id uint) error {
			deactivated = id
			return nil
		},
	}
	app := newContentTestApp(t, svc, 7, "teacher")

	req := httptest.NewRequest(http.MethodDelete, "/lms/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), deactivated)

	body := decodeBody(t, resp)
	require.Equal(t, "Content deleted", body["message"])
}

func TestDeleteContentRequiresTeacherRole(t *testing.T) {
	svc := &stubContentService{}
	app := newContentTestApp(t, svc, 42, "student")

	req := httptest.NewRequest(http.MethodDelete, "/lms/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
