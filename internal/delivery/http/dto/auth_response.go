package dto

import (
	"time"

	"github.com/google/uuid"

	"podium/internal/domain/user"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type SessionResponse struct {
	User UserResponse `json:"user"`
	TokenPair
}

func NewUser(u user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func NewSession(u user.User, access, refresh string) SessionResponse {
	return SessionResponse{
		User:      NewUser(u),
		TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh},
	}
}
