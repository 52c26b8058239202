package registration

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines registration data access interface
type Repository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*Registration, error)
	// Approve writes the assigned number and approved status only if the
	// stored version still matches. Returns ErrConflict otherwise.
	Approve(ctx context.Context, id uuid.UUID, expectedVersion int64, number string) error
	Reject(ctx context.Context, id uuid.UUID, expectedVersion int64) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new registration repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reg *Registration) error {
	query := `
		INSERT INTO player_registrations (id, player_id, club_id, league, status, version)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		reg.ID,
		reg.PlayerID,
		reg.ClubID,
		reg.League,
		reg.Status,
		reg.Version,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadySubmitted
		}
		return err
	}
	return nil
}

func (r *repository) GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*Registration, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg, `SELECT * FROM player_registrations WHERE player_id = $1`, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *repository) Approve(ctx context.Context, id uuid.UUID, expectedVersion int64, number string) error {
	query := `
		UPDATE player_registrations
		SET status = 'approved', registration_number = $3, assigned_at = NOW(),
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, id, expectedVersion, number)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConflict
	}
	return nil
}

func (r *repository) Reject(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	query := `
		UPDATE player_registrations
		SET status = 'rejected', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, id, expectedVersion)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConflict
	}
	return nil
}
