package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fazhub/faz-api/internal/domain/actor"
	"github.com/fazhub/faz-api/internal/pkg/jwt"
	"github.com/fazhub/faz-api/internal/pkg/response"
)

type contextKey string

const ActorKey contextKey = "actor"

// Auth returns middleware that validates the SSO-issued JWT and places the
// resulting actor identity in the request context.
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			act := actor.Actor{ID: claims.ActorID}
			if claims.ClubID != "" {
				clubID, err := uuid.Parse(claims.ClubID)
				if err != nil {
					response.Unauthorized(w, "Invalid token")
					return
				}
				act.ClubID = clubID
			}
			for _, c := range claims.Capabilities {
				act.Capabilities = append(act.Capabilities, actor.Capability(c))
			}

			ctx := context.WithValue(r.Context(), ActorKey, act)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor extracts the authenticated actor from context
func GetActor(ctx context.Context) actor.Actor {
	if a, ok := ctx.Value(ActorKey).(actor.Actor); ok {
		return a
	}
	return actor.Actor{}
}

// RequireCapability returns middleware that checks the actor holds any of the
// given capabilities.
func RequireCapability(caps ...actor.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			act := GetActor(r.Context())

			for _, c := range caps {
				if act.Has(c) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

// RequireClub returns middleware that requires club management capability
func RequireClub() func(http.Handler) http.Handler {
	return RequireCapability(actor.CapClubManage)
}

// RequireFederationAdmin returns middleware that requires federation admin capability
func RequireFederationAdmin() func(http.Handler) http.Handler {
	return RequireCapability(actor.CapFederationAdmin)
}
