package postgres

import (
	"context"
	"errors"

	"podium/internal/database"
	"podium/internal/domain/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PersonalRepository struct {
	db database.DB
}

func NewPersonalRepository(db database.DB) *PersonalRepository {
	return &PersonalRepository{db: db}
}

func (r *PersonalRepository) GetByUser(ctx context.Context, userID uuid.UUID) (profile.Personal, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, full_name, address, phone, website, created_at, updated_at
		FROM personal_profiles WHERE user_id = $1`,
		userID,
	)

	var p profile.Personal
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Address, &p.Phone, &p.Website, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Personal{}, profile.ErrNotFound
		}
		return profile.Personal{}, err
	}
	return p, nil
}

func (r *PersonalRepository) Upsert(ctx context.Context, p profile.Personal) (profile.Personal, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO personal_profiles (id, user_id, full_name, address, phone, website)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			updated_at = now()`,
		p.ID, p.UserID, p.FullName, p.Address, p.Phone, p.Website,
	)
	if err != nil {
		return profile.Personal{}, err
	}
	return r.GetByUser(ctx, p.UserID)
}
