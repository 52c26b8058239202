package actor

import "github.com/google/uuid"

// Capability is a closed permission tag carried by an authenticated actor.
// Guards check capability membership, never role-name strings.
type Capability string

const (
	// CapClubManage allows acting on behalf of the actor's club
	// (initiate transfers, accept/reject/counter offers, attach documents).
	CapClubManage Capability = "club:manage"

	// CapFederationAdmin allows federation-level review (approve/reject transfers,
	// approve registrations).
	CapFederationAdmin Capability = "federation:admin"

	// CapOverrideDocuments allows bypassing the required-document gate on approval.
	// Every use is recorded in the audit trail.
	CapOverrideDocuments Capability = "federation:override-documents"
)

// Actor is the already-authenticated party performing a transition.
// Identity and capabilities come from the SSO-issued token; the engine
// trusts them and does not re-derive roles.
type Actor struct {
	ID           uuid.UUID
	ClubID       uuid.UUID // uuid.Nil for federation staff
	Capabilities []Capability
}

// Has reports whether the actor holds the given capability.
func (a Actor) Has(c Capability) bool {
	for _, have := range a.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// ActsForClub reports whether the actor may act on behalf of the given club.
func (a Actor) ActsForClub(clubID uuid.UUID) bool {
	return a.Has(CapClubManage) && a.ClubID != uuid.Nil && a.ClubID == clubID
}
