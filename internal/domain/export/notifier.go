package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fazhub/faz-api/internal/pkg/metrics"
)

// WakeChannel is the redis pub/sub channel nudging the export worker.
const WakeChannel = "faz:exports:wake"

// Waker nudges the export worker that retryable work exists.
// Optional; the worker polls regardless.
type Waker interface {
	Wake(ctx context.Context, transferID uuid.UUID)
}

// Notifier performs the FIFA registry hand-off. Notify is idempotent:
// an already-exported record is a success no-op. A failed call marks the
// record failed and leaves it safe for any scheduler to retry.
type Notifier struct {
	repo   Repository
	client Client
	waker  Waker
}

// NewNotifier creates export notifier
func NewNotifier(repo Repository, client Client) *Notifier {
	return &Notifier{repo: repo, client: client}
}

// SetWaker sets the worker wake-up hook (optional, wired in main)
func (n *Notifier) SetWaker(w Waker) {
	n.waker = w
}

func (n *Notifier) Notify(ctx context.Context, transferID uuid.UUID) error {
	rec, err := n.repo.GetRecord(ctx, transferID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrRecordNotFound
	}

	switch rec.Status {
	case "exported":
		return nil
	case "pending", "failed":
		// proceed
	default:
		return ErrNotApproved
	}

	if err := n.client.Export(ctx, rec); err != nil {
		metrics.ExportAttemptsTotal.WithLabelValues("failed").Inc()

		if markErr := n.repo.MarkFailed(ctx, transferID); markErr != nil {
			log.Error().Err(markErr).Str("transfer_id", transferID.String()).Msg("Failed to mark export as failed")
		}
		if n.waker != nil {
			n.waker.Wake(ctx, transferID)
		}
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	if err := n.repo.MarkExported(ctx, transferID); err != nil {
		// The registry already has the record; the next retry is a no-op
		// on their side, so only the local state write is at risk here.
		metrics.ExportAttemptsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	metrics.ExportAttemptsTotal.WithLabelValues("exported").Inc()
	return nil
}
