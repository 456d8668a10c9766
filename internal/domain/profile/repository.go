package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound covers both genuinely absent rows and rows owned by another
// user. Ownership violations are indistinguishable from absence on purpose.
var ErrNotFound = errors.New("profile not found")

// Repository persists generated profiles. Every operation is scoped by the
// owning user id; implementations must apply the scope server-side.
type Repository interface {
	Create(ctx context.Context, p Generated) error
	List(ctx context.Context, userID uuid.UUID) ([]Summary, error)
	Get(ctx context.Context, id, userID uuid.UUID) (Generated, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// PersonalRepository persists the per-user personal-info row.
type PersonalRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (Personal, error)
	Upsert(ctx context.Context, p Personal) (Personal, error)
}
