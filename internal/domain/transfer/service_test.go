package transfer

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fazhub/faz-api/internal/domain/actor"
	"github.com/fazhub/faz-api/internal/domain/club"
	"github.com/fazhub/faz-api/internal/domain/player"
)

// fakeTransferRepo keeps records in memory with the same conditional-write
// semantics as the postgres repository.
type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[uuid.UUID]*Transfer
	nextSeq   int64
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[uuid.UUID]*Transfer)}
}

func cloneTransfer(t *Transfer) *Transfer {
	cp := *t
	cp.Documents = make(map[DocumentKind]Document, len(t.Documents))
	for k, v := range t.Documents {
		cp.Documents[k] = v
	}
	cp.CounterOffers = append([]CounterOffer(nil), t.CounterOffers...)
	cp.Events = append([]Event(nil), t.Events...)
	return &cp
}

func (f *fakeTransferRepo) Create(ctx context.Context, t *Transfer, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := cloneTransfer(t)
	f.nextSeq++
	ev.ID = f.nextSeq
	ev.CreatedAt = time.Now()
	cp.Events = append(cp.Events, ev)
	f.transfers[t.ID] = cp
	return nil
}

func (f *fakeTransferRepo) GetByID(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transfers[id]
	if !ok {
		return nil, nil
	}
	return cloneTransfer(t), nil
}

func (f *fakeTransferRepo) ApplyState(ctx context.Context, change StateChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transfers[change.TransferID]
	if !ok || t.Version != change.ExpectedVersion {
		return ErrConflict
	}

	t.Status = change.NewStatus
	if change.NewAmount != nil {
		t.Amount = *change.NewAmount
	}
	if change.MarkExportPending {
		t.ExportStatus = ExportPending
	}
	t.Version++
	t.UpdatedAt = time.Now()

	if co := change.CounterOffer; co != nil {
		f.nextSeq++
		stored := *co
		stored.ID = f.nextSeq
		stored.CreatedAt = time.Now()
		t.CounterOffers = append(t.CounterOffers, stored)
	}

	f.nextSeq++
	ev := change.Event
	ev.ID = f.nextSeq
	ev.CreatedAt = time.Now()
	t.Events = append(t.Events, ev)
	return nil
}

func (f *fakeTransferRepo) AttachDocument(ctx context.Context, doc Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transfers[doc.TransferID]
	if !ok {
		return ErrTransferNotFound
	}
	t.Documents[doc.Kind] = doc
	return nil
}

func (f *fakeTransferRepo) ListByClub(ctx context.Context, clubID uuid.UUID, pagination *Pagination) ([]*Transfer, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Transfer
	for _, t := range f.transfers {
		if t.FromClubID == clubID || t.ToClubID == clubID {
			out = append(out, cloneTransfer(t))
		}
	}
	return out, len(out), nil
}

// setExport mimics the export notifier's writes to the record.
func (f *fakeTransferRepo) setExport(id uuid.UUID, status ExportStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.transfers[id]
	t.ExportStatus = status
	if status == ExportExported {
		t.ExportedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	if status == ExportFailed {
		t.ExportAttempts++
	}
}

type fakeClubRepo struct{}

func (fakeClubRepo) GetByID(ctx context.Context, id uuid.UUID) (*club.Club, error) { return nil, nil }
func (fakeClubRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error)        { return true, nil }

type fakePlayerRepo struct{}

func (fakePlayerRepo) GetByID(ctx context.Context, id uuid.UUID) (*player.Player, error) {
	return nil, nil
}
func (fakePlayerRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil }
func (fakePlayerRepo) SetRegistrationNumber(ctx context.Context, id uuid.UUID, number string) error {
	return nil
}

type fakeNotifier struct {
	repo  *fakeTransferRepo
	fail  bool
	calls int
}

func (n *fakeNotifier) Notify(ctx context.Context, transferID uuid.UUID) error {
	n.calls++
	if n.fail {
		n.repo.setExport(transferID, ExportFailed)
		return ErrExportFailed
	}
	n.repo.setExport(transferID, ExportExported)
	return nil
}

func newTestService() (*Service, *fakeTransferRepo) {
	repo := newFakeTransferRepo()
	return NewService(repo, fakeClubRepo{}, fakePlayerRepo{}), repo
}

func createTransfer(t *testing.T, svc *Service, from, to actor.Actor) *Transfer {
	t.Helper()
	tr, err := svc.Create(context.Background(), from, &CreateTransferRequest{
		ToClubID: to.ClubID.String(),
		PlayerID: uuid.New().String(),
		Amount:   50000,
		Type:     string(TypePermanent),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return tr
}

func attachAllDocuments(t *testing.T, svc *Service, act actor.Actor, id uuid.UUID) {
	t.Helper()
	for _, kind := range RequiredDocumentKinds() {
		url := "https://docs.example.com/" + string(kind) + ".pdf"
		if _, err := svc.AttachDocument(context.Background(), act, id, kind, url); err != nil {
			t.Fatalf("attach %s: %v", kind, err)
		}
	}
}

func TestCreateTransfer(t *testing.T) {
	svc, _ := newTestService()
	from := clubActor(uuid.New())
	to := clubActor(uuid.New())

	tr := createTransfer(t, svc, from, to)
	if tr.Status != StatusRequested {
		t.Fatalf("expected requested, got %s", tr.Status)
	}
	if tr.Version != 1 {
		t.Fatalf("expected version 1, got %d", tr.Version)
	}
	if len(tr.Events) != 1 || tr.Events[0].Type != EventRequested {
		t.Fatalf("expected a single requested event, got %+v", tr.Events)
	}
}

func TestCreateSelfTransfer(t *testing.T) {
	svc, _ := newTestService()
	from := clubActor(uuid.New())

	_, err := svc.Create(context.Background(), from, &CreateTransferRequest{
		ToClubID: from.ClubID.String(),
		PlayerID: uuid.New().String(),
		Amount:   50000,
		Type:     string(TypePermanent),
	})
	if !errors.Is(err, ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}
}

func TestAcceptThenApprove(t *testing.T) {
	svc, repo := newTestService()
	notifier := &fakeNotifier{repo: repo}
	svc.SetExportNotifier(notifier)

	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)
	ctx := context.Background()

	accepted, err := svc.Accept(ctx, to, tr.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	// The document gate blocks approval until both kinds are attached.
	_, err = svc.FazApprove(ctx, adminActor(), tr.ID, "", false)
	var docsErr *DocumentsMissingError
	if !errors.As(err, &docsErr) {
		t.Fatalf("expected DocumentsMissingError, got %v", err)
	}
	if notifier.calls != 0 {
		t.Fatal("export must not run for a denied approval")
	}

	attachAllDocuments(t, svc, from, tr.ID)

	approved, err := svc.FazApprove(ctx, adminActor(), tr.ID, "all clear", false)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != StatusFazApproved {
		t.Fatalf("expected faz_approved, got %s", approved.Status)
	}
	if approved.ExportStatus != ExportExported {
		t.Fatalf("expected exported hand-off, got %q", approved.ExportStatus)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected one export call, got %d", notifier.calls)
	}

	last := approved.Events[len(approved.Events)-1]
	if last.Type != EventFazApproved || last.Notes.String != "all clear" {
		t.Fatalf("unexpected audit event %+v", last)
	}
}

func TestExportFailureDoesNotUndoApproval(t *testing.T) {
	svc, repo := newTestService()
	svc.SetExportNotifier(&fakeNotifier{repo: repo, fail: true})

	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)
	ctx := context.Background()

	if _, err := svc.Accept(ctx, to, tr.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	attachAllDocuments(t, svc, from, tr.ID)

	approved, err := svc.FazApprove(ctx, adminActor(), tr.ID, "", false)
	if err != nil {
		t.Fatalf("approval must survive a failed export: %v", err)
	}
	if approved.Status != StatusFazApproved {
		t.Fatalf("expected faz_approved, got %s", approved.Status)
	}
	if approved.ExportStatus != ExportFailed {
		t.Fatalf("expected failed export status, got %q", approved.ExportStatus)
	}
	if approved.ExportAttempts != 1 {
		t.Fatalf("expected one recorded attempt, got %d", approved.ExportAttempts)
	}
}

func TestForceApproveIsAudited(t *testing.T) {
	svc, repo := newTestService()
	svc.SetExportNotifier(&fakeNotifier{repo: repo})

	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)
	ctx := context.Background()

	if _, err := svc.Accept(ctx, to, tr.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// No documents attached: plain admin may not force.
	if _, err := svc.FazApprove(ctx, adminActor(), tr.ID, "", true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden without override capability, got %v", err)
	}

	approved, err := svc.FazApprove(ctx, adminActor(actor.CapOverrideDocuments), tr.ID, "paper copies sighted", true)
	if err != nil {
		t.Fatalf("force approve: %v", err)
	}
	last := approved.Events[len(approved.Events)-1]
	if !last.Force {
		t.Fatal("override use must be recorded on the audit event")
	}
}

func TestCounterOfferAdoption(t *testing.T) {
	svc, _ := newTestService()
	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)
	ctx := context.Background()

	countered, err := svc.CounterOffer(ctx, to, tr.ID, 60000)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if countered.Status != StatusCounterOffered {
		t.Fatalf("expected counter_offered, got %s", countered.Status)
	}
	if countered.Amount != 50000 {
		t.Fatalf("amount must not change until adoption, got %v", countered.Amount)
	}

	adopted, err := svc.AcceptCounter(ctx, from, tr.ID)
	if err != nil {
		t.Fatalf("accept counter: %v", err)
	}
	if adopted.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", adopted.Status)
	}
	if adopted.Amount != 60000 {
		t.Fatalf("expected adopted amount 60000, got %v", adopted.Amount)
	}
	if len(adopted.CounterOffers) != 1 {
		t.Fatalf("counter-offer history must be kept, got %d entries", len(adopted.CounterOffers))
	}

	types := make([]EventType, len(adopted.Events))
	for i, ev := range adopted.Events {
		types[i] = ev.Type
	}
	want := []EventType{EventRequested, EventCounterOffered, EventCounterTaken}
	for i, w := range want {
		if types[i] != w {
			t.Fatalf("event order mismatch: got %v, want %v", types, want)
		}
	}
}

func TestTerminalRecordsAreImmutable(t *testing.T) {
	svc, _ := newTestService()
	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)
	ctx := context.Background()

	if _, err := svc.Reject(ctx, to, tr.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := svc.Accept(ctx, to, tr.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("accept after terminal: expected ErrInvalidState, got %v", err)
	}
	if _, err := svc.FazReject(ctx, adminActor(), tr.ID, ""); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("faz reject after terminal: expected ErrInvalidState, got %v", err)
	}
	if _, err := svc.AttachDocument(ctx, to, tr.ID, DocConsent, "https://docs.example.com/consent.pdf"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("attach after terminal: expected ErrInvalidState, got %v", err)
	}
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	svc, _ := newTestService()
	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, lost int

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Accept(ctx, clubActor(to.ClubID), tr.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConflict):
				lost++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one winner, got %d", succeeded)
	}
	if succeeded+lost != workers {
		t.Fatalf("lost outcomes: %d + %d != %d", succeeded, lost, workers)
	}

	final, err := svc.Get(ctx, adminActor(), tr.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	accepts := 0
	for _, ev := range final.Events {
		if ev.Type == EventAccepted {
			accepts++
		}
	}
	if accepts != 1 {
		t.Fatalf("audit trail must record one acceptance, got %d", accepts)
	}
}

// conflictRepo always loses the conditional write, forcing retry exhaustion.
type conflictRepo struct {
	*fakeTransferRepo
}

func (c *conflictRepo) ApplyState(ctx context.Context, change StateChange) error {
	return ErrConflict
}

func TestBoundedRetriesSurfaceConflict(t *testing.T) {
	inner := newFakeTransferRepo()
	svc := NewService(&conflictRepo{inner}, fakeClubRepo{}, fakePlayerRepo{})

	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)

	if _, err := svc.Accept(context.Background(), to, tr.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict after retry exhaustion, got %v", err)
	}
}

func TestGetVisibility(t *testing.T) {
	svc, _ := newTestService()
	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)
	ctx := context.Background()

	if _, err := svc.Get(ctx, from, tr.ID); err != nil {
		t.Fatalf("initiating club must see the transfer: %v", err)
	}
	if _, err := svc.Get(ctx, to, tr.ID); err != nil {
		t.Fatalf("receiving club must see the transfer: %v", err)
	}
	if _, err := svc.Get(ctx, adminActor(), tr.ID); err != nil {
		t.Fatalf("federation staff must see the transfer: %v", err)
	}
	if _, err := svc.Get(ctx, clubActor(uuid.New()), tr.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for an unrelated club, got %v", err)
	}
}

func TestReattachDocumentReplacesMetadata(t *testing.T) {
	svc, _ := newTestService()
	from := clubActor(uuid.New())
	to := clubActor(uuid.New())
	tr := createTransfer(t, svc, from, to)
	ctx := context.Background()

	first, err := svc.AttachDocument(ctx, from, tr.ID, DocConsent, "https://docs.example.com/v1.pdf")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if !first.DocumentSatisfied(DocConsent) {
		t.Fatal("consent must be satisfied after attach")
	}

	second, err := svc.AttachDocument(ctx, from, tr.ID, DocConsent, "https://docs.example.com/v2.pdf")
	if err != nil {
		t.Fatalf("re-attach: %v", err)
	}
	if got := second.Documents[DocConsent].URL; got != "https://docs.example.com/v2.pdf" {
		t.Fatalf("re-attach must replace metadata, got %q", got)
	}
	if len(second.Documents) != 1 {
		t.Fatalf("re-attach must not add a second slot, got %d", len(second.Documents))
	}
}
