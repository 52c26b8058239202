package player

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines player data access interface
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Player, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	SetRegistrationNumber(ctx context.Context, id uuid.UUID, number string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new player repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Player, error) {
	query := `SELECT * FROM players WHERE id = $1`

	var p Player
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, err
	}
	return exists, nil
}

// SetRegistrationNumber writes the assigned number only if none is set yet.
func (r *repository) SetRegistrationNumber(ctx context.Context, id uuid.UUID, number string) error {
	query := `
		UPDATE players
		SET registration_number = $2, updated_at = NOW()
		WHERE id = $1 AND registration_number IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, number)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyRegistered
	}
	return nil
}
