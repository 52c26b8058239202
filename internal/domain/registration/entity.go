package registration

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents registration status (matches registration_status enum)
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Registration is a club's request to register a player with the federation
// (matches player_registrations table). On approval the federation assigns a
// registration number minted from the player_registration sequence; the
// assignment happens exactly once and is immutable.
type Registration struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	PlayerID uuid.UUID `db:"player_id"`
	ClubID   uuid.UUID `db:"club_id"`
	League   string    `db:"league"`

	Status Status `db:"status"`

	RegistrationNumber sql.NullString `db:"registration_number"`
	AssignedAt         sql.NullTime   `db:"assigned_at"`

	// Version stamps every state write for optimistic concurrency
	Version int64 `db:"version"`
}

// IsPending returns true while the registration awaits federation review
func (r *Registration) IsPending() bool {
	return r.Status == StatusPending
}
