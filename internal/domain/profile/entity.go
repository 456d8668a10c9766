package profile

import (
	"time"

	"github.com/google/uuid"
)

// Generated is one synthesized speaker profile. Rows are immutable after
// creation; the only mutation is owner-initiated deletion.
type Generated struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	Expertise       []string  `json:"expertise"`
	TargetAudience  []string  `json:"target_audience"`
	ActivitySummary string    `json:"activity_summary"`
	PersonalTone    string    `json:"personal_tone"`
	Strengths       []string  `json:"strengths"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Summary is the listing view of a generated profile.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Expertise []string  `json:"expertise"`
	CreatedAt time.Time `json:"created_at"`
}

// Personal is the per-user personal-info row, one per user.
type Personal struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
