package handler

import (
	"context"
	"time"

	"podium/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// pinger is anything with a liveness probe; the database and cache both
// qualify.
type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    pinger
	cache pinger
}

func NewHealthHandler(db, cache pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

// Health reports per-component status. The cache is optional, so a down
// Redis degrades the report without failing the endpoint; a down database
// does fail it.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	components := map[string]string{}
	status := fiber.StatusOK

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			components["database"] = "down"
			status = fiber.StatusServiceUnavailable
		} else {
			components["database"] = "up"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			components["cache"] = "down"
		} else {
			components["cache"] = "up"
		}
	}

	msg := response.MessageOK
	if status != fiber.StatusOK {
		msg = response.MessageServiceUnavailable
	}
	return response.Success(c, status, msg, components)
}
