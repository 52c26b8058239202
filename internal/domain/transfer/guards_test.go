package transfer

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fazhub/faz-api/internal/domain/actor"
)

func clubActor(clubID uuid.UUID) actor.Actor {
	return actor.Actor{
		ID:           uuid.New(),
		ClubID:       clubID,
		Capabilities: []actor.Capability{actor.CapClubManage},
	}
}

func adminActor(extra ...actor.Capability) actor.Actor {
	return actor.Actor{
		ID:           uuid.New(),
		Capabilities: append([]actor.Capability{actor.CapFederationAdmin}, extra...),
	}
}

func testTransfer(status Status) *Transfer {
	return &Transfer{
		ID:         uuid.New(),
		FromClubID: uuid.New(),
		ToClubID:   uuid.New(),
		PlayerID:   uuid.New(),
		Amount:     50000,
		Type:       TypePermanent,
		Status:     status,
		Version:    1,
		Documents:  map[DocumentKind]Document{},
	}
}

func withAllDocuments(t *Transfer) *Transfer {
	for _, kind := range RequiredDocumentKinds() {
		t.Documents[kind] = Document{
			TransferID: t.ID,
			Kind:       kind,
			URL:        "https://docs.example.com/" + string(kind) + ".pdf",
			UploadedAt: time.Now(),
		}
	}
	return t
}

func TestCanAccept(t *testing.T) {
	tr := testTransfer(StatusRequested)

	if err := CanAccept(tr, clubActor(tr.ToClubID)); err != nil {
		t.Fatalf("receiving club must accept from requested: %v", err)
	}
	if err := CanAccept(tr, clubActor(tr.FromClubID)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("initiating club accept: expected ErrForbidden, got %v", err)
	}
	if err := CanAccept(tr, adminActor()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("federation accept: expected ErrForbidden, got %v", err)
	}

	countered := testTransfer(StatusCounterOffered)
	if err := CanAccept(countered, clubActor(countered.ToClubID)); err != nil {
		t.Fatalf("receiving club may drop its counter and accept original terms: %v", err)
	}

	accepted := testTransfer(StatusAccepted)
	if err := CanAccept(accepted, clubActor(accepted.ToClubID)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("accept from accepted: expected ErrInvalidState, got %v", err)
	}
}

// Wrong actor must read as Forbidden even when the status is also wrong.
func TestWrongActorBeatsWrongState(t *testing.T) {
	tr := testTransfer(StatusFazApproved)

	if err := CanAccept(tr, clubActor(uuid.New())); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := CanFazApprove(tr, clubActor(tr.ToClubID), false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCanReject(t *testing.T) {
	tr := testTransfer(StatusRequested)

	if err := CanReject(tr, clubActor(tr.ToClubID)); err != nil {
		t.Fatalf("receiving club must reject from requested: %v", err)
	}
	if err := CanReject(tr, clubActor(tr.FromClubID)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("initiating club reject from requested: expected ErrForbidden, got %v", err)
	}
	if err := CanReject(tr, clubActor(uuid.New())); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider reject: expected ErrForbidden, got %v", err)
	}

	accepted := testTransfer(StatusAccepted)
	if err := CanReject(accepted, clubActor(accepted.ToClubID)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("party reject from accepted: expected ErrInvalidState, got %v", err)
	}
}

func TestCanRejectCounterOffered(t *testing.T) {
	tr := testTransfer(StatusCounterOffered)
	tr.CounterOffers = []CounterOffer{{
		TransferID: tr.ID,
		Amount:     60000,
		ProposedBy: tr.ToClubID,
	}}

	// The initiating club received the counter, so it may reject.
	if err := CanReject(tr, clubActor(tr.FromClubID)); err != nil {
		t.Fatalf("counter recipient must reject: %v", err)
	}
	// The proposer may not reject its own counter.
	if err := CanReject(tr, clubActor(tr.ToClubID)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("counter proposer reject: expected ErrForbidden, got %v", err)
	}
}

func TestCanCounterOffer(t *testing.T) {
	tr := testTransfer(StatusRequested)

	if err := CanCounterOffer(tr, clubActor(tr.ToClubID), 60000); err != nil {
		t.Fatalf("receiving club must counter from requested: %v", err)
	}
	if err := CanCounterOffer(tr, clubActor(tr.ToClubID), 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if err := CanCounterOffer(tr, clubActor(tr.ToClubID), -500); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: expected ErrInvalidAmount, got %v", err)
	}
	if err := CanCounterOffer(tr, clubActor(tr.FromClubID), 60000); !errors.Is(err, ErrForbidden) {
		t.Fatalf("initiating club counter: expected ErrForbidden, got %v", err)
	}

	countered := testTransfer(StatusCounterOffered)
	if err := CanCounterOffer(countered, clubActor(countered.ToClubID), 70000); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second counter: expected ErrInvalidState, got %v", err)
	}
}

func TestCanAcceptCounter(t *testing.T) {
	tr := testTransfer(StatusCounterOffered)
	tr.CounterOffers = []CounterOffer{{TransferID: tr.ID, Amount: 60000, ProposedBy: tr.ToClubID}}

	if err := CanAcceptCounter(tr, clubActor(tr.FromClubID)); err != nil {
		t.Fatalf("initiating club must adopt the counter: %v", err)
	}
	if err := CanAcceptCounter(tr, clubActor(tr.ToClubID)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("proposer adopting own counter: expected ErrForbidden, got %v", err)
	}

	requested := testTransfer(StatusRequested)
	if err := CanAcceptCounter(requested, clubActor(requested.FromClubID)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("accept-counter from requested: expected ErrInvalidState, got %v", err)
	}
}

func TestCanFazApproveDocumentGate(t *testing.T) {
	tr := testTransfer(StatusAccepted)

	err := CanFazApprove(tr, adminActor(), false)
	var docsErr *DocumentsMissingError
	if !errors.As(err, &docsErr) {
		t.Fatalf("expected DocumentsMissingError, got %v", err)
	}
	if !errors.Is(err, ErrDocumentsMissing) {
		t.Fatal("DocumentsMissingError must unwrap to ErrDocumentsMissing")
	}
	if len(docsErr.Missing) != len(RequiredDocumentKinds()) {
		t.Fatalf("expected all kinds missing, got %v", docsErr.Missing)
	}

	tr.Documents[DocConsent] = Document{TransferID: tr.ID, Kind: DocConsent, URL: "https://docs.example.com/consent.pdf", UploadedAt: time.Now()}
	err = CanFazApprove(tr, adminActor(), false)
	if !errors.As(err, &docsErr) {
		t.Fatalf("expected DocumentsMissingError, got %v", err)
	}
	if len(docsErr.Missing) != 1 || docsErr.Missing[0] != DocContract {
		t.Fatalf("expected only contract missing, got %v", docsErr.Missing)
	}

	if err := CanFazApprove(withAllDocuments(tr), adminActor(), false); err != nil {
		t.Fatalf("approval with complete documents: %v", err)
	}
}

func TestCanFazApproveForceOverride(t *testing.T) {
	tr := testTransfer(StatusAccepted)

	if err := CanFazApprove(tr, adminActor(), true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("force without override capability: expected ErrForbidden, got %v", err)
	}
	if err := CanFazApprove(tr, adminActor(actor.CapOverrideDocuments), true); err != nil {
		t.Fatalf("force with override capability must bypass the gate: %v", err)
	}

	requested := testTransfer(StatusRequested)
	if err := CanFazApprove(requested, adminActor(actor.CapOverrideDocuments), true); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("force never bypasses the status check: expected ErrInvalidState, got %v", err)
	}
}

func TestCanFazReject(t *testing.T) {
	if err := CanFazReject(testTransfer(StatusAccepted), adminActor()); err != nil {
		t.Fatalf("federation reject from accepted: %v", err)
	}
	if err := CanFazReject(testTransfer(StatusRequested), adminActor()); err != nil {
		t.Fatalf("federation pre-empt from requested: %v", err)
	}
	if err := CanFazReject(testTransfer(StatusCounterOffered), adminActor()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("federation reject mid-negotiation: expected ErrInvalidState, got %v", err)
	}

	tr := testTransfer(StatusAccepted)
	if err := CanFazReject(tr, clubActor(tr.ToClubID)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("club performing federation reject: expected ErrForbidden, got %v", err)
	}
}

func TestTransitionTableTerminals(t *testing.T) {
	for _, status := range []Status{StatusRejected, StatusFazApproved, StatusFazRejected} {
		tr := testTransfer(status)
		if !tr.IsTerminal() {
			t.Errorf("%s must be terminal", status)
		}
	}
	for _, status := range []Status{StatusRequested, StatusCounterOffered, StatusAccepted} {
		tr := testTransfer(status)
		if tr.IsTerminal() {
			t.Errorf("%s must not be terminal", status)
		}
	}
}
