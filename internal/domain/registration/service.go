package registration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fazhub/faz-api/internal/domain/actor"
	"github.com/fazhub/faz-api/internal/domain/player"
	"github.com/fazhub/faz-api/internal/domain/sequence"
)

// maxWriteAttempts bounds optimistic-concurrency retries before giving up
const maxWriteAttempts = 3

// Sequence names for identifier issuance
const (
	PlayerSequence = "player_registration"
	ReportSequence = "report_ref"
)

// IDConfig holds identifier formatting settings
type IDConfig struct {
	PlayerPrefix string
	PlayerWidth  int
	ReportPrefix string
	ReportWidth  int
}

// Service handles registration business logic
type Service struct {
	repo       Repository
	playerRepo player.Repository
	issuer     sequence.Issuer
	ids        IDConfig
}

// NewService creates new registration service
func NewService(repo Repository, playerRepo player.Repository, issuer sequence.Issuer, ids IDConfig) *Service {
	return &Service{
		repo:       repo,
		playerRepo: playerRepo,
		issuer:     issuer,
		ids:        ids,
	}
}

// Submit files a registration request for a player on behalf of the actor's club.
func (s *Service) Submit(ctx context.Context, act actor.Actor, playerID uuid.UUID, league string) (*Registration, error) {
	if !act.Has(actor.CapClubManage) || act.ClubID == uuid.Nil {
		return nil, ErrForbidden
	}

	exists, err := s.playerRepo.Exists(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPlayerNotFound
	}

	reg := &Registration{
		ID:       uuid.New(),
		PlayerID: playerID,
		ClubID:   act.ClubID,
		League:   league,
		Status:   StatusPending,
		Version:  1,
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}

	log.Info().
		Str("registration_id", reg.ID.String()).
		Str("player_id", playerID.String()).
		Str("league", league).
		Msg("Registration submitted")

	return s.get(ctx, playerID)
}

// Approve assigns a registration number and marks the registration approved.
// The number is minted from the shared counter before the conditional write;
// a lost race burns the value, which is fine because the sequence only
// guarantees uniqueness and monotonicity, not density.
func (s *Service) Approve(ctx context.Context, act actor.Actor, playerID uuid.UUID) (*Registration, error) {
	if !act.Has(actor.CapFederationAdmin) {
		return nil, ErrForbidden
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		reg, err := s.get(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if !reg.IsPending() {
			return nil, ErrInvalidState
		}

		value, err := s.issuer.Next(ctx, PlayerSequence)
		if err != nil {
			return nil, err
		}
		number, err := sequence.FormatLeagueID(s.ids.PlayerPrefix, reg.League, s.ids.PlayerWidth, value)
		if err != nil {
			// Never persist a half-assigned approval with a malformed number.
			return nil, err
		}

		if err := s.repo.Approve(ctx, reg.ID, reg.Version, number); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}

		if err := s.playerRepo.SetRegistrationNumber(ctx, playerID, number); err != nil {
			if !errors.Is(err, player.ErrAlreadyRegistered) {
				return nil, err
			}
			// Possible only if the player was registered outside this flow;
			// the registration row keeps its own number either way.
			log.Warn().
				Str("player_id", playerID.String()).
				Str("registration_number", number).
				Msg("Player already carries a registration number")
		}

		log.Info().
			Str("registration_id", reg.ID.String()).
			Str("player_id", playerID.String()).
			Str("registration_number", number).
			Msg("Registration approved")

		return s.get(ctx, playerID)
	}

	return nil, ErrConflict
}

// Reject marks a pending registration rejected. No number is minted.
func (s *Service) Reject(ctx context.Context, act actor.Actor, playerID uuid.UUID) (*Registration, error) {
	if !act.Has(actor.CapFederationAdmin) {
		return nil, ErrForbidden
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		reg, err := s.get(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if !reg.IsPending() {
			return nil, ErrInvalidState
		}

		if err := s.repo.Reject(ctx, reg.ID, reg.Version); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}

		return s.get(ctx, playerID)
	}

	return nil, ErrConflict
}

// Get returns the registration visible to the actor: the submitting club
// or federation staff.
func (s *Service) Get(ctx context.Context, act actor.Actor, playerID uuid.UUID) (*Registration, error) {
	reg, err := s.get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !act.Has(actor.CapFederationAdmin) && !act.ActsForClub(reg.ClubID) {
		return nil, ErrForbidden
	}
	return reg, nil
}

// MintReportRef issues the next report reference, e.g. "FAZ-RPT-00042".
// References are unique and strictly increasing across the federation.
func (s *Service) MintReportRef(ctx context.Context, act actor.Actor) (string, time.Time, error) {
	if !act.Has(actor.CapFederationAdmin) {
		return "", time.Time{}, ErrForbidden
	}

	value, err := s.issuer.Next(ctx, ReportSequence)
	if err != nil {
		return "", time.Time{}, err
	}
	ref, err := sequence.FormatID(s.ids.ReportPrefix, s.ids.ReportWidth, value)
	if err != nil {
		return "", time.Time{}, err
	}
	return ref, time.Now().UTC(), nil
}

func (s *Service) get(ctx context.Context, playerID uuid.UUID) (*Registration, error) {
	reg, err := s.repo.GetByPlayerID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	return reg, nil
}
