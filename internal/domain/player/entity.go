package player

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Player represents a registered or registering player (matches players table)
type Player struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	FirstName string         `db:"first_name"`
	LastName  string         `db:"last_name"`
	ClubID    uuid.NullUUID  `db:"club_id"`
	League    sql.NullString `db:"league"`

	// RegistrationNumber is assigned exactly once on registration approval
	// and immutable thereafter.
	RegistrationNumber sql.NullString `db:"registration_number"`
}
