package transfer

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents transfer status (matches transfer_status enum)
type Status string

const (
	StatusRequested      Status = "requested"
	StatusAccepted       Status = "accepted"
	StatusRejected       Status = "rejected"
	StatusCounterOffered Status = "counter_offered"
	StatusFazApproved    Status = "faz_approved"
	StatusFazRejected    Status = "faz_rejected"
)

// TransferType represents the commercial form of a transfer
type TransferType string

const (
	TypePermanent TransferType = "permanent"
	TypeLoan      TransferType = "loan"
)

// DocumentKind identifies a required document slot on a transfer
type DocumentKind string

const (
	DocConsent  DocumentKind = "consent"
	DocContract DocumentKind = "contract"
)

// RequiredDocumentKinds returns the document kinds every transfer must carry
// before federation approval.
func RequiredDocumentKinds() []DocumentKind {
	return []DocumentKind{DocConsent, DocContract}
}

// ExportStatus tracks the downstream FIFA registry hand-off.
// Empty until the transfer is federation-approved.
type ExportStatus string

const (
	ExportPending  ExportStatus = "pending"
	ExportExported ExportStatus = "exported"
	ExportFailed   ExportStatus = "failed"
)

// EventType labels an audit log entry
type EventType string

const (
	EventRequested      EventType = "requested"
	EventAccepted       EventType = "accepted"
	EventRejected       EventType = "rejected"
	EventCounterOffered EventType = "counter_offered"
	EventCounterTaken   EventType = "counter_accepted"
	EventFazApproved    EventType = "faz_approved"
	EventFazRejected    EventType = "faz_rejected"
)

// Document is uploaded document metadata. A kind is satisfied iff both
// fields are set.
type Document struct {
	TransferID uuid.UUID    `db:"transfer_id"`
	Kind       DocumentKind `db:"kind"`
	URL        string       `db:"url"`
	UploadedAt time.Time    `db:"uploaded_at"`
}

// CounterOffer is one entry of the append-only counter-offer history
type CounterOffer struct {
	ID         int64     `db:"id"`
	TransferID uuid.UUID `db:"transfer_id"`
	Amount     float64   `db:"amount"`
	ProposedBy uuid.UUID `db:"proposed_by"` // club id
	CreatedAt  time.Time `db:"created_at"`
}

// Event is one immutable audit log entry, appended per transition
type Event struct {
	ID         int64          `db:"id"`
	TransferID uuid.UUID      `db:"transfer_id"`
	Type       EventType      `db:"type"`
	ActorID    uuid.UUID      `db:"actor_id"`
	Notes      sql.NullString `db:"notes"`
	Force      bool           `db:"force_override"`
	CreatedAt  time.Time      `db:"created_at"`
}

// Transfer represents a player transfer record (matches transfers table).
// Records are never physically deleted; terminal states are kept for audit.
type Transfer struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Parties
	FromClubID uuid.UUID `db:"from_club_id"`
	ToClubID   uuid.UUID `db:"to_club_id"`
	PlayerID   uuid.UUID `db:"player_id"`

	// Commercial terms; amount changes only via the counter-offer path
	Amount float64      `db:"amount"`
	Type   TransferType `db:"transfer_type"`

	Status Status `db:"status"`

	// Version stamps every state write for optimistic concurrency
	Version int64 `db:"version"`

	// FIFA export hand-off, set only after faz_approved
	ExportStatus   ExportStatus `db:"export_status"`
	ExportedAt     sql.NullTime `db:"exported_at"`
	ExportAttempts int          `db:"export_attempts"`

	// Loaded from child tables
	Documents     map[DocumentKind]Document `db:"-"`
	CounterOffers []CounterOffer            `db:"-"`
	Events        []Event                   `db:"-"`
}

// transitions is the single source of truth for transition legality.
// Guards and handlers consult this table, never local status lists.
var transitions = map[Status][]Status{
	StatusRequested:      {StatusAccepted, StatusRejected, StatusCounterOffered, StatusFazRejected},
	StatusCounterOffered: {StatusAccepted, StatusRejected},
	StatusAccepted:       {StatusFazApproved, StatusFazRejected},
	StatusRejected:       {},
	StatusFazApproved:    {},
	StatusFazRejected:    {},
}

// CanTransitionTo checks if a status transition is legal
func (t *Transfer) CanTransitionTo(newStatus Status) bool {
	allowed, ok := transitions[t.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal returns true once no party transition can mutate the record
func (t *Transfer) IsTerminal() bool {
	allowed, ok := transitions[t.Status]
	return !ok || len(allowed) == 0
}

// DocumentSatisfied reports whether the given kind has complete metadata
func (t *Transfer) DocumentSatisfied(kind DocumentKind) bool {
	doc, ok := t.Documents[kind]
	return ok && doc.URL != "" && !doc.UploadedAt.IsZero()
}

// MissingDocuments returns the required kinds that are not yet satisfied
func (t *Transfer) MissingDocuments() []DocumentKind {
	var missing []DocumentKind
	for _, kind := range RequiredDocumentKinds() {
		if !t.DocumentSatisfied(kind) {
			missing = append(missing, kind)
		}
	}
	return missing
}

// LatestCounterOffer returns the most recent counter-offer, nil if none
func (t *Transfer) LatestCounterOffer() *CounterOffer {
	if len(t.CounterOffers) == 0 {
		return nil
	}
	return &t.CounterOffers[len(t.CounterOffers)-1]
}
