package registration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fazhub/faz-api/internal/domain/actor"
	"github.com/fazhub/faz-api/internal/middleware"
	"github.com/fazhub/faz-api/internal/pkg/response"
	"github.com/fazhub/faz-api/internal/pkg/validator"
)

// Handler handles registration HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates registration handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /registrations
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		response.BadRequest(w, "Invalid player ID")
		return
	}

	act := middleware.GetActor(r.Context())
	reg, err := h.service.Submit(r.Context(), act, playerID, req.League)
	if err != nil {
		writeRegistrationError(w, err)
		return
	}

	response.Created(w, RegistrationResponseFromEntity(reg))
}

// Get handles GET /registrations/{playerID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	playerID, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		response.BadRequest(w, "Invalid player ID")
		return
	}

	act := middleware.GetActor(r.Context())
	reg, err := h.service.Get(r.Context(), act, playerID)
	if err != nil {
		writeRegistrationError(w, err)
		return
	}

	response.OK(w, RegistrationResponseFromEntity(reg))
}

// Approve handles POST /admin/registrations/{playerID}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Approve)
}

// Reject handles POST /admin/registrations/{playerID}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Reject)
}

// MintReportRef handles POST /admin/reports/refs
func (h *Handler) MintReportRef(w http.ResponseWriter, r *http.Request) {
	act := middleware.GetActor(r.Context())
	ref, mintedAt, err := h.service.MintReportRef(r.Context(), act)
	if err != nil {
		writeRegistrationError(w, err)
		return
	}

	response.Created(w, ReportRefResponse{Reference: ref, MintedAt: mintedAt})
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, act actor.Actor, playerID uuid.UUID) (*Registration, error)) {
	playerID, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		response.BadRequest(w, "Invalid player ID")
		return
	}

	act := middleware.GetActor(r.Context())
	reg, err := apply(r.Context(), act, playerID)
	if err != nil {
		writeRegistrationError(w, err)
		return
	}

	response.OK(w, RegistrationResponseFromEntity(reg))
}

// writeRegistrationError maps domain errors to HTTP responses
func writeRegistrationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRegistrationNotFound):
		response.NotFound(w, "Registration not found")
	case errors.Is(err, ErrPlayerNotFound):
		response.NotFound(w, "Player not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "You may not perform this action")
	case errors.Is(err, ErrInvalidState):
		response.InvalidState(w, "Registration is not pending review")
	case errors.Is(err, ErrAlreadySubmitted):
		response.Conflict(w, "Registration already submitted for this player")
	case errors.Is(err, ErrConflict):
		response.Conflict(w, "Registration was modified concurrently, please retry")
	default:
		response.InternalError(w)
	}
}
