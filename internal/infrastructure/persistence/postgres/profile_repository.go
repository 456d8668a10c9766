package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"podium/internal/database"
	"podium/internal/domain/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepository stores generated profiles. Every query carries the owner
// id so cross-user ids scan as no rows and surface as profile.ErrNotFound.
type ProfileRepository struct {
	db database.DB
}

func NewProfileRepository(db database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p profile.Generated) error {
	expertise, err := marshalList(p.Expertise)
	if err != nil {
		return err
	}
	audience, err := marshalList(p.TargetAudience)
	if err != nil {
		return err
	}
	strengths, err := marshalList(p.Strengths)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO generated_profiles (
			id, user_id, name, expertise, target_audience,
			activity_summary, personal_tone, strengths, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.UserID, p.Name, expertise, audience,
		p.ActivitySummary, p.PersonalTone, strengths, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProfileRepository) List(ctx context.Context, userID uuid.UUID) ([]profile.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, expertise, created_at
		FROM generated_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []profile.Summary{}
	for rows.Next() {
		var s profile.Summary
		var expertise []byte
		if err := rows.Scan(&s.ID, &s.Name, &expertise, &s.CreatedAt); err != nil {
			return nil, err
		}
		if s.Expertise, err = unmarshalList(expertise); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ProfileRepository) Get(ctx context.Context, id, userID uuid.UUID) (profile.Generated, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, expertise, target_audience,
			activity_summary, personal_tone, strengths, created_at, updated_at
		FROM generated_profiles
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	var p profile.Generated
	var expertise, audience, strengths []byte
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &expertise, &audience,
		&p.ActivitySummary, &p.PersonalTone, &strengths, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Generated{}, profile.ErrNotFound
		}
		return profile.Generated{}, err
	}

	if p.Expertise, err = unmarshalList(expertise); err != nil {
		return profile.Generated{}, err
	}
	if p.TargetAudience, err = unmarshalList(audience); err != nil {
		return profile.Generated{}, err
	}
	if p.Strengths, err = unmarshalList(strengths); err != nil {
		return profile.Generated{}, err
	}
	return p, nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := r.db.Exec(ctx,
		`DELETE FROM generated_profiles WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func marshalList(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

func unmarshalList(b []byte) ([]string, error) {
	if len(b) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
