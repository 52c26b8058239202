package transfer

import (
	"github.com/fazhub/faz-api/internal/domain/actor"
)

// Guards are pure predicates: they never mutate the record. The service
// applies the transition only after the matching guard returns nil.
//
// Error kinds are deliberate: wrong actor is ErrForbidden, wrong status is
// ErrInvalidState, incomplete documents is DocumentsMissingError. Callers
// and tests rely on the distinction.

// CanAccept checks the receiving club accepting the current terms.
// Legal from requested and from counter_offered (the receiving club may
// drop its own counter and take the original terms).
func CanAccept(t *Transfer, act actor.Actor) error {
	if !act.ActsForClub(t.ToClubID) {
		return ErrForbidden
	}
	if t.Status != StatusRequested && t.Status != StatusCounterOffered {
		return ErrInvalidState
	}
	return nil
}

// CanReject checks a party rejection. From requested only the receiving club
// may reject; from counter_offered the recipient of the latest counter-offer
// (the club that did not propose it) may reject.
func CanReject(t *Transfer, act actor.Actor) error {
	isParty := act.ActsForClub(t.FromClubID) || act.ActsForClub(t.ToClubID)
	if !isParty {
		return ErrForbidden
	}
	if !t.CanTransitionTo(StatusRejected) {
		return ErrInvalidState
	}

	switch t.Status {
	case StatusRequested:
		if !act.ActsForClub(t.ToClubID) {
			return ErrForbidden
		}
	case StatusCounterOffered:
		latest := t.LatestCounterOffer()
		if latest == nil {
			return ErrInvalidState
		}
		if act.ClubID == latest.ProposedBy {
			return ErrForbidden
		}
	}
	return nil
}

// CanCounterOffer checks the receiving club proposing a new amount.
func CanCounterOffer(t *Transfer, act actor.Actor, newAmount float64) error {
	if !act.ActsForClub(t.ToClubID) {
		return ErrForbidden
	}
	if t.Status != StatusRequested {
		return ErrInvalidState
	}
	if newAmount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CanAcceptCounter checks the initiating club adopting the latest counter-offer.
func CanAcceptCounter(t *Transfer, act actor.Actor) error {
	if !act.ActsForClub(t.FromClubID) {
		return ErrForbidden
	}
	if t.Status != StatusCounterOffered {
		return ErrInvalidState
	}
	if t.LatestCounterOffer() == nil {
		return ErrInvalidState
	}
	return nil
}

// CanFazApprove checks federation approval. Every required document kind must
// be satisfied unless force is set by an actor holding the override
// capability; the override is recorded in the audit event.
func CanFazApprove(t *Transfer, act actor.Actor, force bool) error {
	if !act.Has(actor.CapFederationAdmin) {
		return ErrForbidden
	}
	if t.Status != StatusAccepted {
		return ErrInvalidState
	}

	if force {
		if !act.Has(actor.CapOverrideDocuments) {
			return ErrForbidden
		}
		return nil
	}

	if missing := t.MissingDocuments(); len(missing) > 0 {
		return &DocumentsMissingError{Missing: missing}
	}
	return nil
}

// CanFazReject checks federation rejection; the federation may also pre-empt
// a transfer that is still only requested.
func CanFazReject(t *Transfer, act actor.Actor) error {
	if !act.Has(actor.CapFederationAdmin) {
		return ErrForbidden
	}
	if t.Status != StatusAccepted && t.Status != StatusRequested {
		return ErrInvalidState
	}
	return nil
}
