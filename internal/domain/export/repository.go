package export

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Record is the export view of an approved transfer
type Record struct {
	TransferID uuid.UUID    `db:"id"`
	PlayerID   uuid.UUID    `db:"player_id"`
	FromClubID uuid.UUID    `db:"from_club_id"`
	ToClubID   uuid.UUID    `db:"to_club_id"`
	Amount     float64      `db:"amount"`
	Type       string       `db:"transfer_type"`
	Status     string       `db:"export_status"`
	ExportedAt sql.NullTime `db:"exported_at"`
	Attempts   int          `db:"export_attempts"`
	ApprovedAt time.Time    `db:"updated_at"`
}

// Repository defines export state access on transfer records
type Repository interface {
	GetRecord(ctx context.Context, transferID uuid.UUID) (*Record, error)
	MarkExported(ctx context.Context, transferID uuid.UUID) error
	MarkFailed(ctx context.Context, transferID uuid.UUID) error
	ListRetryable(ctx context.Context, maxAttempts, limit int) ([]uuid.UUID, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new export repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetRecord(ctx context.Context, transferID uuid.UUID) (*Record, error) {
	query := `
		SELECT id, player_id, from_club_id, to_club_id, amount, transfer_type,
		       export_status, exported_at, export_attempts, updated_at
		FROM transfers
		WHERE id = $1
	`

	var rec Record
	err := r.db.GetContext(ctx, &rec, query, transferID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &rec, nil
}

// MarkExported flips the export state exactly once; a record already
// exported keeps its original exported_at.
func (r *repository) MarkExported(ctx context.Context, transferID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transfers
		SET export_status = 'exported', exported_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND export_status IN ('pending', 'failed')
	`, transferID)
	return err
}

func (r *repository) MarkFailed(ctx context.Context, transferID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transfers
		SET export_status = 'failed', export_attempts = export_attempts + 1, updated_at = NOW()
		WHERE id = $1 AND export_status IN ('pending', 'failed')
	`, transferID)
	return err
}

func (r *repository) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM transfers
		WHERE export_status IN ('pending', 'failed') AND export_attempts < $1
		ORDER BY updated_at
		LIMIT $2
	`, maxAttempts, limit)
	return ids, err
}
