package v1

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"podium/internal/delivery/http/middleware"
	"podium/internal/pkg/jwt"
	"podium/internal/pkg/response"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

// newWiredApp runs the real route registration. Infrastructure deps stay
// nil; the cases below are all answered before any of them is touched.
func newWiredApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	Register(app.Group("/api/v1"), Deps{
		JWT:    jwt.NewHMACService("access", "refresh", 15*time.Minute, 168*time.Hour),
		Logger: log.New(io.Discard, "", 0),
	})
	return app
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

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// The public auth endpoints must reach their handlers without a bearer
// token. Each case asserts on a handler-specific outcome so a 401 from the
// access guard cannot masquerade as a pass.
func TestPublicAuthRoutesSkipAccessGuard(t *testing.T) {
	app := newWiredApp(t)

	status, _ := doRequest(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/signup", `{"email":"","password":""}`))
	if status != fiber.StatusBadRequest {
		t.Fatalf("signup without token: want 400 from the handler, got %d", status)
	}

	status, env := doRequest(t, app, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"","password":""}`))
	if status != fiber.StatusUnauthorized || env.Message != "Invalid credentials" {
		t.Fatalf("login without token: want handler rejection, got %d %q", status, env.Message)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	status, env = doRequest(t, app, req)
	if status != fiber.StatusUnauthorized || env.Message != "Invalid refresh token" {
		t.Fatalf("refresh: want handler rejection, got %d %q", status, env.Message)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newWiredApp(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/uploads/pdfs"},
		{http.MethodGet, "/api/v1/profiles/list"},
		{http.MethodPost, "/api/v1/profiles/create"},
	}
	for _, tc := range cases {
		status, env := doRequest(t, app, httptest.NewRequest(tc.method, tc.path, nil))
		if status != fiber.StatusUnauthorized {
			t.Fatalf("%s %s: want 401, got %d", tc.method, tc.path, status)
		}
		if env.Data["code"] != response.CodeUnauthorized {
			t.Fatalf("%s %s: code %q", tc.method, tc.path, env.Data["code"])
		}
	}
}
