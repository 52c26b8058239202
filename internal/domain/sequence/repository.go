package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fazhub/faz-api/internal/pkg/metrics"
)

const queryTimeout = 3 * time.Second

// Repository is the postgres-backed issuer. The counter row is created
// implicitly on first use and only ever mutated by the atomic upsert below.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new sequence repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Next increments and returns the counter in a single statement.
// A read-then-write here would issue duplicate identifiers under load.
func (r *Repository) Next(ctx context.Context, name string) (int64, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var value int64
	err := r.db.QueryRowContext(ctx2, `
		INSERT INTO sequence_counters (name, value)
		VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value
	`, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIssuerUnavailable, err)
	}

	metrics.SequenceNextTotal.WithLabelValues(name).Inc()
	return value, nil
}

// Current returns the last issued value without incrementing, 0 if the
// counter has never been used.
func (r *Repository) Current(ctx context.Context, name string) (int64, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var value int64
	err := r.db.GetContext(ctx2, &value, `SELECT COALESCE(MAX(value), 0) FROM sequence_counters WHERE name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIssuerUnavailable, err)
	}
	return value, nil
}
