package transfer

import (
	"time"

	"github.com/google/uuid"
)

// CreateTransferRequest for POST /transfers. The initiating club comes from
// the authenticated actor.
type CreateTransferRequest struct {
	ToClubID string  `json:"to_club_id" validate:"required,uuid"`
	PlayerID string  `json:"player_id" validate:"required,uuid"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Type     string  `json:"transfer_type" validate:"required,transfer_type"`
}

// CounterOfferRequest for PUT /transfers/{id}/counter-offer
type CounterOfferRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// ApproveRequest for POST /admin/transfers/{id}/approve
type ApproveRequest struct {
	Note  string `json:"note" validate:"omitempty,max=2000"`
	Force bool   `json:"force"`
}

// AdminRejectRequest for POST /admin/transfers/{id}/reject
type AdminRejectRequest struct {
	Note string `json:"note" validate:"omitempty,max=2000"`
}

// AttachDocumentRequest for POST /transfers/{id}/documents
type AttachDocumentRequest struct {
	Kind string `json:"kind" validate:"required,document_kind"`
	URL  string `json:"url" validate:"required,url"`
}

// PresignDocumentRequest for POST /transfers/{id}/documents/presign
type PresignDocumentRequest struct {
	Kind        string `json:"kind" validate:"required,document_kind"`
	ContentType string `json:"content_type" validate:"required"`
}

// PresignDocumentResponse carries the upload URL and the public URL to attach
type PresignDocumentResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}

// DocumentResponse represents attached document metadata
type DocumentResponse struct {
	Kind       string `json:"kind"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

// CounterOfferResponse represents one counter-offer history entry
type CounterOfferResponse struct {
	Amount     float64   `json:"amount"`
	ProposedBy uuid.UUID `json:"proposed_by"`
	CreatedAt  string    `json:"created_at"`
}

// EventResponse represents one audit log entry
type EventResponse struct {
	Type      string    `json:"type"`
	ActorID   uuid.UUID `json:"actor_id"`
	Notes     *string   `json:"notes,omitempty"`
	Force     bool      `json:"force,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// ExportResponse represents the FIFA export hand-off state
type ExportResponse struct {
	Status     string  `json:"status"`
	ExportedAt *string `json:"exported_at,omitempty"`
}

// TransferResponse represents transfer in API responses
type TransferResponse struct {
	ID         uuid.UUID `json:"id"`
	FromClubID uuid.UUID `json:"from_club_id"`
	ToClubID   uuid.UUID `json:"to_club_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	Amount     float64   `json:"amount"`
	Type       string    `json:"transfer_type"`
	Status     string    `json:"status"`

	Documents     []DocumentResponse     `json:"documents"`
	CounterOffers []CounterOfferResponse `json:"counter_offers"`
	Events        []EventResponse        `json:"events"`
	FIFAExport    *ExportResponse        `json:"fifa_export,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TransferResponseFromEntity converts entity to response DTO
func TransferResponseFromEntity(t *Transfer) *TransferResponse {
	resp := &TransferResponse{
		ID:            t.ID,
		FromClubID:    t.FromClubID,
		ToClubID:      t.ToClubID,
		PlayerID:      t.PlayerID,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Status:        string(t.Status),
		Documents:     make([]DocumentResponse, 0, len(t.Documents)),
		CounterOffers: make([]CounterOfferResponse, 0, len(t.CounterOffers)),
		Events:        make([]EventResponse, 0, len(t.Events)),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.Format(time.RFC3339),
	}

	for _, kind := range RequiredDocumentKinds() {
		if doc, ok := t.Documents[kind]; ok {
			resp.Documents = append(resp.Documents, DocumentResponse{
				Kind:       string(doc.Kind),
				URL:        doc.URL,
				UploadedAt: doc.UploadedAt.Format(time.RFC3339),
			})
		}
	}

	for _, co := range t.CounterOffers {
		resp.CounterOffers = append(resp.CounterOffers, CounterOfferResponse{
			Amount:     co.Amount,
			ProposedBy: co.ProposedBy,
			CreatedAt:  co.CreatedAt.Format(time.RFC3339),
		})
	}

	for _, ev := range t.Events {
		item := EventResponse{
			Type:      string(ev.Type),
			ActorID:   ev.ActorID,
			Force:     ev.Force,
			CreatedAt: ev.CreatedAt.Format(time.RFC3339),
		}
		if ev.Notes.Valid {
			item.Notes = &ev.Notes.String
		}
		resp.Events = append(resp.Events, item)
	}

	if t.ExportStatus != "" {
		export := &ExportResponse{Status: string(t.ExportStatus)}
		if t.ExportedAt.Valid {
			s := t.ExportedAt.Time.Format(time.RFC3339)
			export.ExportedAt = &s
		}
		resp.FIFAExport = export
	}

	return resp
}
