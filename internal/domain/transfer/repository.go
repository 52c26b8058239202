package transfer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Pagination for listing
type Pagination struct {
	Page  int
	Limit int
}

// StateChange describes one transition to persist. The write succeeds only
// if the stored version still matches ExpectedVersion.
type StateChange struct {
	TransferID      uuid.UUID
	ExpectedVersion int64
	NewStatus       Status
	NewAmount       *float64
	// MarkExportPending flips the export hand-off on, used by faz approval
	MarkExportPending bool
	// CounterOffer, when set, is appended to the counter-offer history
	CounterOffer *CounterOffer
	// Event is the audit entry appended in the same transaction
	Event Event
}

// Repository defines transfer data access interface
type Repository interface {
	Create(ctx context.Context, t *Transfer, ev Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	ApplyState(ctx context.Context, change StateChange) error
	AttachDocument(ctx context.Context, doc Document) error
	ListByClub(ctx context.Context, clubID uuid.UUID, pagination *Pagination) ([]*Transfer, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new transfer repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Transfer, ev Event) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transfers (id, from_club_id, to_club_id, player_id, amount, transfer_type, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, query,
		t.ID,
		t.FromClubID,
		t.ToClubID,
		t.PlayerID,
		t.Amount,
		t.Type,
		t.Status,
		t.Version,
	)
	if err != nil {
		return err
	}

	if err := insertEvent(ctx, tx, ev); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	var t Transfer
	err := r.db.GetContext(ctx, &t, `SELECT * FROM transfers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) loadChildren(ctx context.Context, t *Transfer) error {
	var docs []Document
	err := r.db.SelectContext(ctx, &docs, `
		SELECT transfer_id, kind, url, uploaded_at
		FROM transfer_documents
		WHERE transfer_id = $1
	`, t.ID)
	if err != nil {
		return err
	}
	t.Documents = make(map[DocumentKind]Document, len(docs))
	for _, d := range docs {
		t.Documents[d.Kind] = d
	}

	err = r.db.SelectContext(ctx, &t.CounterOffers, `
		SELECT id, transfer_id, amount, proposed_by, created_at
		FROM transfer_counter_offers
		WHERE transfer_id = $1
		ORDER BY id
	`, t.ID)
	if err != nil {
		return err
	}

	err = r.db.SelectContext(ctx, &t.Events, `
		SELECT id, transfer_id, type, actor_id, notes, force_override, created_at
		FROM transfer_events
		WHERE transfer_id = $1
		ORDER BY id
	`, t.ID)
	return err
}

// ApplyState performs the conditional state write. Returns ErrConflict when
// another transition landed since the record was read.
func (r *repository) ApplyState(ctx context.Context, change StateChange) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE transfers
		SET status = $3,
		    amount = COALESCE($4, amount),
		    export_status = CASE WHEN $5 THEN 'pending' ELSE export_status END,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND version = $2
	`
	result, err := tx.ExecContext(ctx, query,
		change.TransferID,
		change.ExpectedVersion,
		change.NewStatus,
		change.NewAmount,
		change.MarkExportPending,
	)
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

	if co := change.CounterOffer; co != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transfer_counter_offers (transfer_id, amount, proposed_by)
			VALUES ($1, $2, $3)
		`, co.TransferID, co.Amount, co.ProposedBy)
		if err != nil {
			return err
		}
	}

	if err := insertEvent(ctx, tx, change.Event); err != nil {
		return err
	}

	return tx.Commit()
}

func insertEvent(ctx context.Context, tx *sqlx.Tx, ev Event) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transfer_events (transfer_id, type, actor_id, notes, force_override)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.TransferID, ev.Type, ev.ActorID, ev.Notes, ev.Force)
	return err
}

// AttachDocument upserts document metadata for a kind. Re-uploading a kind
// replaces its metadata.
func (r *repository) AttachDocument(ctx context.Context, doc Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transfer_documents (transfer_id, kind, url, uploaded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (transfer_id, kind) DO UPDATE SET url = $3, uploaded_at = $4
	`, doc.TransferID, doc.Kind, doc.URL, doc.UploadedAt)
	return err
}

func (r *repository) ListByClub(ctx context.Context, clubID uuid.UUID, pagination *Pagination) ([]*Transfer, int, error) {
	countQuery := `SELECT COUNT(*) FROM transfers WHERE from_club_id = $1 OR to_club_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, clubID); err != nil {
		return nil, 0, err
	}

	offset := (pagination.Page - 1) * pagination.Limit
	query := `
		SELECT * FROM transfers
		WHERE from_club_id = $1 OR to_club_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var transfers []*Transfer
	if err := r.db.SelectContext(ctx, &transfers, query, clubID, pagination.Limit, offset); err != nil {
		return nil, 0, err
	}

	for _, t := range transfers {
		if err := r.loadChildren(ctx, t); err != nil {
			return nil, 0, err
		}
	}

	return transfers, total, nil
}
