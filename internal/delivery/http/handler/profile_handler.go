package handler

import (
	"errors"

	"podium/internal/delivery/http/dto"
	"podium/internal/delivery/http/middleware"
	"podium/internal/domain/profile"
	"podium/internal/pkg/response"
	"podium/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/create", h.Create)
	r.Get("/list", h.List)
	r.Get("/personal", h.GetPersonal)
	r.Put("/personal", h.SavePersonal)
	r.Get("/:id", h.Get)
	r.Delete("/:id", h.Delete)
}

func (h *ProfileHandler) Create(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	var req dto.CreateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", response.ErrorCode(response.CodeInvalidInput), err)
	}

	gen, err := h.uc.Create(c.Context(), uid, usecase.CreateProfileInput{
		FileURLs:    req.FileURLs,
		YouTubeURL:  req.YouTubeURL,
		WebsiteURL:  req.WebsiteURL,
		LinkedInURL: req.LinkedInURL,
	})
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, gen)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	list, err := h.uc.List(c.Context(), uid)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"profiles": list})
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	gen, err := h.uc.Get(c.Context(), uid, c.Params("id"))
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, gen)
}

func (h *ProfileHandler) Delete(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	if err := h.uc.Delete(c.Context(), uid, c.Params("id")); err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *ProfileHandler) GetPersonal(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	pers, err := h.uc.GetPersonal(c.Context(), uid)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, pers)
}

func (h *ProfileHandler) SavePersonal(c fiber.Ctx) error {
	uid, ok := userIDFromLocals(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
	}

	var req dto.PersonalProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", response.ErrorCode(response.CodeInvalidInput), err)
	}

	saved, err := h.uc.SavePersonal(c.Context(), uid, req.ToDomain())
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, saved)
}

func mapProfileError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), err)
	case errors.Is(err, usecase.ErrAllSourcesEmpty):
		return middleware.NewAppError(fiber.StatusBadRequest, "No usable content in any provided source", response.ErrorCode(response.CodeAllSourcesEmpty), err)
	case errors.Is(err, usecase.ErrSynthesisFailed):
		return middleware.NewAppError(fiber.StatusBadGateway, "Profile synthesis failed", response.ErrorCode(response.CodeSynthesisFailed), err)
	case errors.Is(err, profile.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", response.ErrorCode(response.CodeNotFound), err)
	case errors.Is(err, usecase.ErrStorageFailed):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Storage unavailable", response.ErrorCode(response.CodeStorageUnavailable), err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
