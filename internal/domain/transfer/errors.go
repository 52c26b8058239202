package transfer

import (
	"errors"
	"fmt"
)

var (
	ErrTransferNotFound = errors.New("transfer not found")
	ErrClubNotFound     = errors.New("club not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrSelfTransfer     = errors.New("transfer requires two different clubs")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")

	// ErrForbidden means the actor lacks the party relationship or capability
	// for the requested transition.
	ErrForbidden = errors.New("actor may not perform this transition")

	// ErrInvalidState means the transition is not legal from the current status.
	ErrInvalidState = errors.New("transition not legal from current status")

	// ErrDocumentsMissing means approval is blocked by incomplete required
	// documents. Distinct from ErrInvalidState so callers can act on it.
	ErrDocumentsMissing = errors.New("missing required documents")

	// ErrConflict means the optimistic write lost a race and bounded retries
	// were exhausted. The caller may retry at its own level.
	ErrConflict = errors.New("transfer was modified concurrently")

	// ErrExportFailed means the downstream registry notification failed after
	// a committed approval. The approval itself stands.
	ErrExportFailed = errors.New("fifa export failed")
)

// DocumentsMissingError lists which required document kinds are unsatisfied
type DocumentsMissingError struct {
	Missing []DocumentKind
}

func (e *DocumentsMissingError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDocumentsMissing, e.Missing)
}

func (e *DocumentsMissingError) Unwrap() error {
	return ErrDocumentsMissing
}
