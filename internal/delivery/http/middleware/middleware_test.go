package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"podium/internal/pkg/jwt"
	"podium/internal/pkg/response"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return resp.StatusCode, env
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	return app
}

func TestErrorMiddlewareRendersAppError(t *testing.T) {
	app := newTestApp()
	app.Get("/missing", func(fiber.Ctx) error {
		return NewAppError(fiber.StatusNotFound, "Profile not found", response.ErrorCode(response.CodeNotFound), nil)
	})

	status, env := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if status != fiber.StatusNotFound || env.Status != fiber.StatusNotFound {
		t.Fatalf("status: %d/%d", status, env.Status)
	}
	if env.Data["code"] != response.CodeNotFound {
		t.Fatalf("code: %q", env.Data["code"])
	}
}

func TestErrorMiddlewarePassesGatewayErrorsThrough(t *testing.T) {
	app := newTestApp()
	app.Get("/synth", func(fiber.Ctx) error {
		return NewAppError(fiber.StatusBadGateway, "Profile synthesis failed", response.ErrorCode(response.CodeSynthesisFailed), nil)
	})

	status, env := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/synth", nil))
	if status != fiber.StatusBadGateway {
		t.Fatalf("status: %d", status)
	}
	if env.Message != "Profile synthesis failed" {
		t.Fatalf("502 message must survive: %q", env.Message)
	}
}

func TestErrorMiddlewareHidesInternalCauses(t *testing.T) {
	app := newTestApp()
	app.Get("/boom", func(fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "pgx: connection refused to db-prod-1", nil, nil)
	})

	status, env := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if status != fiber.StatusInternalServerError {
		t.Fatalf("status: %d", status)
	}
	if env.Message != response.MessageInternalServerError {
		t.Fatalf("internal detail leaked: %q", env.Message)
	}
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	app := newTestApp()
	app.Get("/panic", func(fiber.Ctx) error {
		panic("boom")
	})

	status, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if status != fiber.StatusInternalServerError {
		t.Fatalf("status: %d", status)
	}
}

type staticDenylist bool

func (d staticDenylist) IsTokenDenied(context.Context, string) bool { return bool(d) }

func newAuthedApp(denied bool) (*fiber.App, jwt.Service) {
	jwtSvc := jwt.NewHMACService("access", "refresh", 15*time.Minute, 168*time.Hour)
	app := fiber.New()
	app.Use(NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	authMw := NewAuthMiddleware(jwtSvc, staticDenylist(denied))
	app.Use("/protected", authMw.Middleware())
	app.Get("/protected", func(c fiber.Ctx) error {
		uid, _ := c.Locals(CtxUserIDKey).(uuid.UUID)
		return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]string{"user_id": uid.String()})
	})
	return app, jwtSvc
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	app, _ := newAuthedApp(false)

	status, env := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if status != fiber.StatusUnauthorized {
		t.Fatalf("status: %d", status)
	}
	if env.Data["code"] != response.CodeUnauthorized {
		t.Fatalf("code: %q", env.Data["code"])
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	app, jwtSvc := newAuthedApp(false)
	uid := uuid.New()

	tok, err := jwtSvc.GenerateAccessToken(uid, "a@b.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	status, env := doRequest(t, app, req)
	if status != fiber.StatusOK {
		t.Fatalf("status: %d", status)
	}
	if env.Data["user_id"] != uid.String() {
		t.Fatalf("user id not propagated: %q", env.Data["user_id"])
	}
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	app, jwtSvc := newAuthedApp(false)

	tok, err := jwtSvc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	status, _ := doRequest(t, app, req)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("refresh token must not pass the access guard, got %d", status)
	}
}

func TestAuthMiddlewareRejectsDeniedToken(t *testing.T) {
	app, jwtSvc := newAuthedApp(true)

	tok, err := jwtSvc.GenerateAccessToken(uuid.New(), "a@b.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	status, _ := doRequest(t, app, req)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("revoked token must be rejected, got %d", status)
	}
}
