package transfer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fazhub/faz-api/internal/domain/actor"
	"github.com/fazhub/faz-api/internal/domain/club"
	"github.com/fazhub/faz-api/internal/domain/player"
	"github.com/fazhub/faz-api/internal/pkg/metrics"
)

// maxWriteAttempts bounds optimistic-write retries. After that the conflict
// is surfaced to the caller, who may retry at user level.
const maxWriteAttempts = 3

// ExportNotifier hands a freshly approved transfer to the FIFA registry
// side-channel. Failures are recorded on the record, never propagated as a
// request failure (the approval has already committed).
type ExportNotifier interface {
	Notify(ctx context.Context, transferID uuid.UUID) error
}

// Service orchestrates transfer transitions: load, guard, conditional write,
// audit event, export hand-off.
type Service struct {
	repo       Repository
	clubRepo   club.Repository
	playerRepo player.Repository
	notifier   ExportNotifier
}

// NewService creates transfer service
func NewService(repo Repository, clubRepo club.Repository, playerRepo player.Repository) *Service {
	return &Service{
		repo:       repo,
		clubRepo:   clubRepo,
		playerRepo: playerRepo,
	}
}

// SetExportNotifier sets the export notifier (optional, wired in main)
func (s *Service) SetExportNotifier(n ExportNotifier) {
	s.notifier = n
}

// Create registers a new transfer request on behalf of the actor's club.
func (s *Service) Create(ctx context.Context, act actor.Actor, req *CreateTransferRequest) (*Transfer, error) {
	toClubID, err := uuid.Parse(req.ToClubID)
	if err != nil {
		return nil, ErrClubNotFound
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		return nil, ErrPlayerNotFound
	}

	if act.ClubID == toClubID {
		return nil, ErrSelfTransfer
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	for _, clubID := range []uuid.UUID{act.ClubID, toClubID} {
		exists, err := s.clubRepo.Exists(ctx, clubID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrClubNotFound
		}
	}

	exists, err := s.playerRepo.Exists(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPlayerNotFound
	}

	now := time.Now()
	t := &Transfer{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		FromClubID: act.ClubID,
		ToClubID:   toClubID,
		PlayerID:   playerID,
		Amount:     req.Amount,
		Type:       TransferType(req.Type),
		Status:     StatusRequested,
		Version:    1,
		Documents:  map[DocumentKind]Document{},
	}

	ev := Event{TransferID: t.ID, Type: EventRequested, ActorID: act.ID}
	if err := s.repo.Create(ctx, t, ev); err != nil {
		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues("create", "applied").Inc()
	return s.repo.GetByID(ctx, t.ID)
}

// Accept moves a transfer to accepted on behalf of the receiving club.
func (s *Service) Accept(ctx context.Context, act actor.Actor, id uuid.UUID) (*Transfer, error) {
	return s.applyTransition(ctx, id, "accept", func(t *Transfer) (StateChange, error) {
		if err := CanAccept(t, act); err != nil {
			return StateChange{}, err
		}
		return StateChange{
			NewStatus: StatusAccepted,
			Event:     Event{TransferID: t.ID, Type: EventAccepted, ActorID: act.ID},
		}, nil
	})
}

// Reject moves a transfer to rejected on behalf of the entitled party.
func (s *Service) Reject(ctx context.Context, act actor.Actor, id uuid.UUID) (*Transfer, error) {
	return s.applyTransition(ctx, id, "reject", func(t *Transfer) (StateChange, error) {
		if err := CanReject(t, act); err != nil {
			return StateChange{}, err
		}
		return StateChange{
			NewStatus: StatusRejected,
			Event:     Event{TransferID: t.ID, Type: EventRejected, ActorID: act.ID},
		}, nil
	})
}

// CounterOffer appends a counter-offer from the receiving club.
func (s *Service) CounterOffer(ctx context.Context, act actor.Actor, id uuid.UUID, amount float64) (*Transfer, error) {
	return s.applyTransition(ctx, id, "counter_offer", func(t *Transfer) (StateChange, error) {
		if err := CanCounterOffer(t, act, amount); err != nil {
			return StateChange{}, err
		}
		return StateChange{
			NewStatus: StatusCounterOffered,
			CounterOffer: &CounterOffer{
				TransferID: t.ID,
				Amount:     amount,
				ProposedBy: act.ClubID,
			},
			Event: Event{TransferID: t.ID, Type: EventCounterOffered, ActorID: act.ID},
		}, nil
	})
}

// AcceptCounter adopts the latest counter-offer's amount on behalf of the
// initiating club.
func (s *Service) AcceptCounter(ctx context.Context, act actor.Actor, id uuid.UUID) (*Transfer, error) {
	return s.applyTransition(ctx, id, "accept_counter", func(t *Transfer) (StateChange, error) {
		if err := CanAcceptCounter(t, act); err != nil {
			return StateChange{}, err
		}
		amount := t.LatestCounterOffer().Amount
		return StateChange{
			NewStatus: StatusAccepted,
			NewAmount: &amount,
			Event:     Event{TransferID: t.ID, Type: EventCounterTaken, ActorID: act.ID},
		}, nil
	})
}

// FazApprove performs federation approval. The document gate is re-evaluated
// against freshly loaded state on every attempt, so a document attached a
// moment earlier is honored. After the approval commits, the export hand-off
// runs; its failure is recorded and logged but never undoes the approval.
func (s *Service) FazApprove(ctx context.Context, act actor.Actor, id uuid.UUID, note string, force bool) (*Transfer, error) {
	t, err := s.applyTransition(ctx, id, "faz_approve", func(t *Transfer) (StateChange, error) {
		if err := CanFazApprove(t, act, force); err != nil {
			return StateChange{}, err
		}
		ev := Event{TransferID: t.ID, Type: EventFazApproved, ActorID: act.ID, Force: force}
		if note != "" {
			ev.Notes = sql.NullString{String: note, Valid: true}
		}
		return StateChange{
			NewStatus:         StatusFazApproved,
			MarkExportPending: true,
			Event:             ev,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, id); err != nil {
			log.Error().Err(err).Str("transfer_id", id.String()).Msg("FIFA export failed after approval, left for retry")
			// Re-read so the caller sees the failed export status.
			return s.repo.GetByID(ctx, id)
		}
		return s.repo.GetByID(ctx, id)
	}

	return t, nil
}

// FazReject performs federation rejection, also pre-empting requested transfers.
func (s *Service) FazReject(ctx context.Context, act actor.Actor, id uuid.UUID, note string) (*Transfer, error) {
	return s.applyTransition(ctx, id, "faz_reject", func(t *Transfer) (StateChange, error) {
		if err := CanFazReject(t, act); err != nil {
			return StateChange{}, err
		}
		ev := Event{TransferID: t.ID, Type: EventFazRejected, ActorID: act.ID}
		if note != "" {
			ev.Notes = sql.NullString{String: note, Valid: true}
		}
		return StateChange{NewStatus: StatusFazRejected, Event: ev}, nil
	})
}

// AttachDocument records uploaded document metadata. Attachment is no
// transition: it stays legal until the record reaches a terminal state,
// racing approvals re-read completeness anyway.
func (s *Service) AttachDocument(ctx context.Context, act actor.Actor, id uuid.UUID, kind DocumentKind, url string) (*Transfer, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransferNotFound
	}

	if !act.ActsForClub(t.FromClubID) && !act.ActsForClub(t.ToClubID) {
		return nil, ErrForbidden
	}
	if t.IsTerminal() {
		return nil, ErrInvalidState
	}

	doc := Document{
		TransferID: id,
		Kind:       kind,
		URL:        url,
		UploadedAt: time.Now(),
	}
	if err := s.repo.AttachDocument(ctx, doc); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Get returns a transfer visible to the actor (a party or federation staff).
func (s *Service) Get(ctx context.Context, act actor.Actor, id uuid.UUID) (*Transfer, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransferNotFound
	}

	if !act.Has(actor.CapFederationAdmin) && !act.ActsForClub(t.FromClubID) && !act.ActsForClub(t.ToClubID) {
		return nil, ErrForbidden
	}
	return t, nil
}

// ListForClub returns transfers where the actor's club is a party.
func (s *Service) ListForClub(ctx context.Context, act actor.Actor, pagination *Pagination) ([]*Transfer, int, error) {
	if act.ClubID == uuid.Nil {
		return nil, 0, ErrForbidden
	}
	return s.repo.ListByClub(ctx, act.ClubID, pagination)
}

// applyTransition is the engine core: load current state, evaluate the guard,
// persist conditionally, retry on lost races up to maxWriteAttempts.
func (s *Service) applyTransition(ctx context.Context, id uuid.UUID, name string, decide func(*Transfer) (StateChange, error)) (*Transfer, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		t, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, ErrTransferNotFound
		}

		change, err := decide(t)
		if err != nil {
			metrics.TransitionsTotal.WithLabelValues(name, "denied").Inc()
			return nil, err
		}
		change.TransferID = t.ID
		change.ExpectedVersion = t.Version

		err = s.repo.ApplyState(ctx, change)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.TransitionsTotal.WithLabelValues(name, "applied").Inc()
		return s.repo.GetByID(ctx, id)
	}

	metrics.TransitionsTotal.WithLabelValues(name, "conflict").Inc()
	return nil, ErrConflict
}
