package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"podium/internal/domain/user"
	"podium/internal/infrastructure/cache"
	"podium/internal/pkg/jwt"
	ucauth "podium/internal/usecase/auth"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]user.User
	byEmail map[string]uuid.UUID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[uuid.UUID]user.User{}, byEmail: map[string]uuid.UUID{}}
}

func (r *memUserRepo) Create(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func newTestAuth() *Auth {
	jwtSvc := jwt.NewHMACService("access", "refresh", 15*time.Minute, 168*time.Hour)
	// Zero-value cache has no client and degrades to a no-op, which is
	// exactly the behavior logout promises when Redis is down.
	return NewAuthUsecase(newMemUserRepo(), jwtSvc, &cache.Redis{})
}

func TestRegisterIssuesSession(t *testing.T) {
	uc := newTestAuth()

	usr, access, refresh, err := uc.Register(context.Background(), ucauth.RegisterInput{Email: "jane@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if usr.Email != "jane@example.com" {
		t.Fatalf("email: %q", usr.Email)
	}
	if access == "" || refresh == "" || access == refresh {
		t.Fatalf("expected distinct non-empty tokens")
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	uc := newTestAuth()
	ctx := context.Background()

	_, _, refresh, err := uc.Register(ctx, ucauth.RegisterInput{Email: "jane@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	access2, refresh2, err := uc.Refresh(ctx, refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access2 == "" || refresh2 == "" {
		t.Fatalf("expected new tokens")
	}
	if refresh2 == refresh {
		t.Fatalf("expected rotated refresh token")
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	uc := newTestAuth()
	ctx := context.Background()

	_, access, _, err := uc.Register(ctx, ucauth.RegisterInput{Email: "jane@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := uc.Refresh(ctx, access); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for access token, got %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	uc := newTestAuth()

	if _, _, err := uc.Refresh(context.Background(), "junk"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if _, _, err := uc.Refresh(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	uc := newTestAuth()
	ctx := context.Background()

	_, access, _, err := uc.Register(ctx, ucauth.RegisterInput{Email: "jane@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := uc.Logout(ctx, access); err != nil {
		t.Fatalf("logout: %v", err)
	}
	// Logging out an already-useless token is not an error.
	if err := uc.Logout(ctx, "junk"); err != nil {
		t.Fatalf("logout junk: %v", err)
	}
	if err := uc.Logout(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestGetMe(t *testing.T) {
	uc := newTestAuth()
	ctx := context.Background()

	usr, _, _, err := uc.Register(ctx, ucauth.RegisterInput{Email: "jane@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	me, err := uc.GetMe(ctx, usr.ID.String())
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.Email != "jane@example.com" || me.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", me)
	}

	if _, err := uc.GetMe(ctx, uuid.NewString()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown id, got %v", err)
	}
	if _, err := uc.GetMe(ctx, "not-a-uuid"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for malformed id, got %v", err)
	}
}
