package handler

import (
	"errors"
	"io"
	"mime/multipart"

	"podium/internal/delivery/http/middleware"
	"podium/internal/pkg/response"
	"podium/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type UploadHandler struct {
	uc usecase.UploadUsecase
}

func NewUploadHandler(uc usecase.UploadUsecase) *UploadHandler {
	return &UploadHandler{uc: uc}
}

func (h *UploadHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/pdf", h.UploadOne)
	r.Post("/multiple-pdfs", h.UploadMany)
	r.Get("/pdfs", h.List)
	r.Delete("/pdf/*", h.Delete)
}

func (h *UploadHandler) UploadOne(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing file field", response.ErrorCode(response.CodeInvalidInput), err)
	}

	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Could not read file", response.ErrorCode(response.CodeInvalidInput), err)
	}
	defer f.Close()

	info, err := h.uc.Upload(c.Context(), uid, fh.Filename, f, fh.Size)
	if err != nil {
		return mapUploadError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, info)
}

func (h *UploadHandler) UploadMany(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad multipart form", response.ErrorCode(response.CodeInvalidInput), err)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing files field", response.ErrorCode(response.CodeInvalidInput), nil)
	}

	files := make([]usecase.NamedReader, 0, len(headers))
	for _, fh := range headers {
		files = append(files, namedReader(fh))
	}

	outcomes, err := h.uc.UploadMany(c.Context(), uid, files)
	if err != nil {
		return mapUploadError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"files": outcomes})
}

func (h *UploadHandler) List(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	files, err := h.uc.List(c.Context(), uid)
	if err != nil {
		return mapUploadError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"files": files})
}

func (h *UploadHandler) Delete(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	key := c.Params("*")
	if key == "" {
		return middleware.NewAppError(fiber.StatusNotFound, "File not found", response.ErrorCode(response.CodeNotFound), nil)
	}

	if err := h.uc.Delete(c.Context(), uid, key); err != nil {
		return mapUploadError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func namedReader(fh *multipart.FileHeader) usecase.NamedReader {
	return usecase.NamedReader{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func mapUploadError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), err)
	case errors.Is(err, usecase.ErrNotPDF):
		return middleware.NewAppError(fiber.StatusBadRequest, "Only PDF files are accepted", response.ErrorCode(response.CodeInvalidFileType), err)
	case errors.Is(err, usecase.ErrFileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "File not found", response.ErrorCode(response.CodeNotFound), err)
	case errors.Is(err, usecase.ErrStorageFailed):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Storage unavailable", response.ErrorCode(response.CodeStorageUnavailable), err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
