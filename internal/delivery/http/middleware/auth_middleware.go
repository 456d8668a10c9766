package middleware

import (
	"context"
	"errors"
	"strings"

	"podium/internal/pkg/jwt"
	"podium/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxUserIDKey   = "user_id"
	CtxEmailKey    = "email"
	CtxTokenIDKey  = "token_id"
	CtxTokenExpKey = "token_exp"
)

// TokenDenylist reports whether a token id was revoked by logout.
type TokenDenylist interface {
	IsTokenDenied(ctx context.Context, jti string) bool
}

type AuthMiddleware struct {
	jwt      jwt.Service
	denylist TokenDenylist
}

func NewAuthMiddleware(jwtSvc jwt.Service, denylist TokenDenylist) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc, denylist: denylist}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", response.ErrorCode(response.CodeUnauthorized), nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", response.ErrorCode(response.CodeUnauthorized), err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", response.ErrorCode(response.CodeUnauthorized), err)
		}

		if claims.TokenType != jwt.TokenTypeAccess || m.jwt.IsRefreshToken(claims) {
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", response.ErrorCode(response.CodeUnauthorized), nil)
		}

		if m.denylist != nil && m.denylist.IsTokenDenied(c.Context(), claims.ID) {
			return NewAppError(fiber.StatusUnauthorized, "Token revoked", response.ErrorCode(response.CodeUnauthorized), nil)
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)
		c.Locals(CtxTokenIDKey, claims.ID)
		c.Locals(CtxTokenExpKey, claims.ExpiredAt)

		return c.Next()
	}
}

func BearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
