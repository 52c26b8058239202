package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the authenticated actor identity minted by the federation SSO.
// ClubID is empty for federation staff.
type Claims struct {
	ActorID      uuid.UUID `json:"actor_id"`
	ClubID       string    `json:"club_id,omitempty"`
	Capabilities []string  `json:"capabilities"`
	jwt.RegisteredClaims
}

// Service verifies SSO-issued access tokens. Token issuance lives in the
// SSO service; MintToken exists for tests and local tooling only.
type Service struct {
	secret []byte
}

// NewService creates JWT service
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// ValidateToken validates and parses an access token
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// MintToken signs a token for the given actor identity.
func (s *Service) MintToken(actorID uuid.UUID, clubID string, capabilities []string, ttl time.Duration) (string, error) {
	claims := Claims{
		ActorID:      actorID,
		ClubID:       clubID,
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
