package export

import "errors"

var (
	ErrRecordNotFound = errors.New("transfer not found")

	// ErrNotApproved means export was requested for a transfer that has not
	// been federation-approved; the hand-off only exists past approval.
	ErrNotApproved = errors.New("transfer is not approved for export")

	// ErrExportFailed means the registry call failed; the record is marked
	// failed and safe to retry.
	ErrExportFailed = errors.New("fifa export failed")
)
