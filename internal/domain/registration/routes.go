package registration

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fazhub/faz-api/internal/middleware"
)

// Routes returns the club-facing registration router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.With(middleware.RequireClub()).Post("/", h.Submit)
	r.Get("/{playerID}", h.Get)

	return r
}

// AdminRoutes returns the federation review router
func (h *Handler) AdminRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(middleware.RequireFederationAdmin())

	r.Post("/{playerID}/approve", h.Approve)
	r.Post("/{playerID}/reject", h.Reject)
	r.Get("/{playerID}", h.Get)

	return r
}

// ReportRoutes returns the report reference minting router
func (h *Handler) ReportRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(middleware.RequireFederationAdmin())

	r.Post("/refs", h.MintReportRef)

	return r
}
