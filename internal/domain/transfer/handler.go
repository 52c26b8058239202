package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fazhub/faz-api/internal/middleware"
	"github.com/fazhub/faz-api/internal/pkg/response"
	"github.com/fazhub/faz-api/internal/pkg/storage"
	"github.com/fazhub/faz-api/internal/pkg/validator"
)

const presignTTL = 15 * time.Minute

// Handler handles transfer HTTP requests
type Handler struct {
	service *Service
	docs    storage.DocumentStorage
}

// NewHandler creates transfer handler
func NewHandler(service *Service, docs storage.DocumentStorage) *Handler {
	return &Handler{service: service, docs: docs}
}

// Create handles POST /transfers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	act := middleware.GetActor(r.Context())
	t, err := h.service.Create(r.Context(), act, &req)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.Created(w, TransferResponseFromEntity(t))
}

// Get handles GET /transfers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	act := middleware.GetActor(r.Context())
	t, err := h.service.Get(r.Context(), act, id)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.OK(w, TransferResponseFromEntity(t))
}

// List handles GET /transfers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pagination := paginationFromQuery(r)

	act := middleware.GetActor(r.Context())
	transfers, total, err := h.service.ListForClub(r.Context(), act, pagination)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	items := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		items[i] = TransferResponseFromEntity(t)
	}

	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Page:    pagination.Page,
		Limit:   pagination.Limit,
		Pages:   (total + pagination.Limit - 1) / pagination.Limit,
		HasNext: pagination.Page*pagination.Limit < total,
		HasPrev: pagination.Page > 1,
	})
}

// Accept handles PUT /transfers/{id}/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID) (*Transfer, error) {
		return h.service.Accept(r.Context(), middleware.GetActor(r.Context()), id)
	})
}

// Reject handles PUT /transfers/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID) (*Transfer, error) {
		return h.service.Reject(r.Context(), middleware.GetActor(r.Context()), id)
	})
}

// CounterOffer handles PUT /transfers/{id}/counter-offer
func (h *Handler) CounterOffer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	var req CounterOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	act := middleware.GetActor(r.Context())
	t, err := h.service.CounterOffer(r.Context(), act, id, req.Amount)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.OK(w, TransferResponseFromEntity(t))
}

// AcceptCounter handles PUT /transfers/{id}/accept-counter
func (h *Handler) AcceptCounter(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID) (*Transfer, error) {
		return h.service.AcceptCounter(r.Context(), middleware.GetActor(r.Context()), id)
	})
}

// Approve handles POST /admin/transfers/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body
		req = ApproveRequest{}
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	act := middleware.GetActor(r.Context())
	t, err := h.service.FazApprove(r.Context(), act, id, req.Note, req.Force)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.OK(w, TransferResponseFromEntity(t))
}

// AdminReject handles POST /admin/transfers/{id}/reject
func (h *Handler) AdminReject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	var req AdminRejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = AdminRejectRequest{}
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	act := middleware.GetActor(r.Context())
	t, err := h.service.FazReject(r.Context(), act, id, req.Note)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.OK(w, TransferResponseFromEntity(t))
}

// AttachDocument handles POST /transfers/{id}/documents
func (h *Handler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	var req AttachDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	act := middleware.GetActor(r.Context())
	t, err := h.service.AttachDocument(r.Context(), act, id, DocumentKind(req.Kind), req.URL)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.OK(w, TransferResponseFromEntity(t))
}

// PresignDocument handles POST /transfers/{id}/documents/presign
func (h *Handler) PresignDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	var req PresignDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if h.docs == nil {
		response.InternalError(w)
		return
	}

	// Visibility check doubles as existence check.
	act := middleware.GetActor(r.Context())
	if _, err := h.service.Get(r.Context(), act, id); err != nil {
		writeTransferError(w, err)
		return
	}

	key := fmt.Sprintf("transfers/%s/%s", id, req.Kind)
	uploadURL, err := h.docs.PresignPut(r.Context(), key, presignTTL, req.ContentType)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, PresignDocumentResponse{
		UploadURL: uploadURL,
		PublicURL: h.docs.PublicURL(key),
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(id uuid.UUID) (*Transfer, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	t, err := apply(id)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.OK(w, TransferResponseFromEntity(t))
}

// writeTransferError maps domain errors to HTTP responses. The distinct
// MISSING_DOCUMENTS shape tells operators which kinds to chase.
func writeTransferError(w http.ResponseWriter, err error) {
	var docsErr *DocumentsMissingError
	switch {
	case errors.As(err, &docsErr):
		details := make(map[string]string, len(docsErr.Missing))
		for _, kind := range docsErr.Missing {
			details[string(kind)] = "missing"
		}
		response.MissingDocuments(w, details)
	case errors.Is(err, ErrTransferNotFound):
		response.NotFound(w, "Transfer not found")
	case errors.Is(err, ErrClubNotFound):
		response.NotFound(w, "Club not found")
	case errors.Is(err, ErrPlayerNotFound):
		response.NotFound(w, "Player not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "You may not perform this action")
	case errors.Is(err, ErrInvalidState):
		response.InvalidState(w, "Transition not legal from current status")
	case errors.Is(err, ErrSelfTransfer):
		response.BadRequest(w, "Transfer requires two different clubs")
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, "Amount must be greater than zero")
	case errors.Is(err, ErrConflict):
		response.Conflict(w, "Transfer was modified concurrently, please retry")
	default:
		response.InternalError(w)
	}
}

func paginationFromQuery(r *http.Request) *Pagination {
	page := 1
	limit := 20
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return &Pagination{Page: page, Limit: limit}
}
