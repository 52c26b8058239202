package club

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Club represents a federation-affiliated club (matches clubs table)
type Club struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Name     string         `db:"name"`
	League   sql.NullString `db:"league"`
	City     sql.NullString `db:"city"`
	IsActive bool           `db:"is_active"`
}
