package transfer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fazhub/faz-api/internal/middleware"
)

// Routes returns the club-facing transfer router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.With(middleware.RequireClub()).Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireClub())

		r.Put("/{id}/accept", h.Accept)
		r.Put("/{id}/reject", h.Reject)
		r.Put("/{id}/counter-offer", h.CounterOffer)
		r.Put("/{id}/accept-counter", h.AcceptCounter)

		r.Post("/{id}/documents", h.AttachDocument)
		r.Post("/{id}/documents/presign", h.PresignDocument)
	})

	return r
}

// AdminRoutes returns the federation review router
func (h *Handler) AdminRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(middleware.RequireFederationAdmin())

	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.AdminReject)
	r.Get("/{id}", h.Get)

	return r
}
