package registration

import "errors"

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrAlreadySubmitted     = errors.New("registration already submitted for this player")

	// ErrForbidden means the actor lacks the capability or club relationship.
	ErrForbidden = errors.New("actor may not perform this action")

	// ErrInvalidState means the registration is not in a reviewable state.
	ErrInvalidState = errors.New("registration is not pending review")

	// ErrConflict means the optimistic write lost a race and bounded retries
	// were exhausted.
	ErrConflict = errors.New("registration was modified concurrently")
)
