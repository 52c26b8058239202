package sequence

import (
	"context"
	"errors"
)

var (
	// ErrIssuerUnavailable is returned when the counter storage cannot complete
	// the increment. The caller must fail the whole assignment.
	ErrIssuerUnavailable = errors.New("sequence issuer unavailable")

	// ErrBadFormat is returned when identifier formatting inputs are invalid.
	// A malformed identifier is never emitted.
	ErrBadFormat = errors.New("invalid identifier format")
)

// Issuer hands out strictly increasing integers per named counter.
// Next must be atomic: N concurrent callers on the same name receive N
// distinct, strictly increasing values.
type Issuer interface {
	Next(ctx context.Context, name string) (int64, error)
}
