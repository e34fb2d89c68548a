package candidates

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"aihr-backend/internal/sheets"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []string
	links []string
	err   error
}

func (n *recordingNotifier) SendInterviewInvite(ctx context.Context, to, name, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to)
	n.links = append(n.links, link)
	return n.err
}

type recordingExporter struct {
	mu   sync.Mutex
	rows map[string][][]string
	err  error
}

func (e *recordingExporter) AppendRow(ctx context.Context, tab string, row []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	if e.rows == nil {
		e.rows = make(map[string][][]string)
	}
	e.rows[tab] = append(e.rows[tab], row)
	return nil
}

type recordingRemover struct{ removed []string }

func (r *recordingRemover) DeleteByCandidate(ctx context.Context, candidateID string) error {
	r.removed = append(r.removed, candidateID)
	return nil
}

func newTestService() (*Service, *recordingNotifier, *recordingExporter, *recordingRemover) {
	n := &recordingNotifier{}
	e := &recordingExporter{}
	r := &recordingRemover{}
	return &Service{
		Repo:            NewMemoryRepo(),
		Notifier:        n,
		Exporter:        e,
		Interviews:      r,
		FrontendBaseURL: "http://localhost:5173/",
		Go:              func(fn func()) { fn() },
	}, n, e, r
}

func annForm() RegisterForm {
	return RegisterForm{Name: "Ann", Email: "ann@x.com", Phone: "123", Gender: "f"}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, annForm())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	dup := annForm()
	dup.Email = " ANN@x.com "
	if _, err := svc.Register(ctx, dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	other := annForm()
	other.Email = "bob@x.com"
	second, err := svc.Register(ctx, other)
	if err != nil {
		t.Fatalf("Register second: %v", err)
	}
	if first.ID == second.ID || first.ID == "" {
		t.Fatalf("expected distinct ids, got %q and %q", first.ID, second.ID)
	}
}

func TestRegisterBuildsLinkAndRunsSideEffects(t *testing.T) {
	svc, n, e, _ := newTestService()

	c, err := svc.Register(context.Background(), annForm())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	want := "http://localhost:5173/interview/" + c.ID
	if c.InterviewLink != want {
		t.Fatalf("expected link %q, got %q", want, c.InterviewLink)
	}
	if len(n.sent) != 1 || n.sent[0] != "ann@x.com" || n.links[0] != want {
		t.Fatalf("expected invite to ann, got %v %v", n.sent, n.links)
	}
	rows := e.rows[sheets.TabCandidates]
	if len(rows) != 1 || rows[0][0] != c.ID || rows[0][5] != want {
		t.Fatalf("unexpected candidate rows %v", rows)
	}
}

func TestRegisterSideEffectFailuresDoNotFail(t *testing.T) {
	svc, n, e, _ := newTestService()
	n.err = errors.New("smtp down")
	e.err = errors.New("sheets down")

	if _, err := svc.Register(context.Background(), annForm()); err != nil {
		t.Fatalf("side effect failures must not fail registration: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Register(context.Background(), RegisterForm{Name: "Ann", Email: "not-an-email"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	for _, key := range []string{"email", "phone", "gender"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected %s error in %v", key, fields)
		}
	}
}

func TestDeleteCascadesToInterview(t *testing.T) {
	svc, _, _, remover := newTestService()
	ctx := context.Background()
	c, err := svc.Register(ctx, annForm())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(remover.removed) != 1 || remover.removed[0] != c.ID {
		t.Fatalf("expected interview removal, got %v", remover.removed)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected candidate gone, got %v", err)
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	// Email is free again after deletion.
	if _, err := svc.Register(ctx, annForm()); err != nil {
		t.Fatalf("re-register: %v", err)
	}
}

func TestCandidateExists(t *testing.T) {
	svc, _, _, _ := newTestService()
	c, _ := svc.Register(context.Background(), annForm())

	ok, err := svc.CandidateExists(context.Background(), c.ID)
	if err != nil || !ok {
		t.Fatalf("expected candidate to exist: %v %v", ok, err)
	}
	ok, err = svc.CandidateExists(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("expected missing candidate: %v %v", ok, err)
	}
}

func TestInterviewLinkTrimsBase(t *testing.T) {
	if got := InterviewLink(" https://hr.example.com// ", "abc"); !strings.HasSuffix(got, "hr.example.com/interview/abc") {
		t.Fatalf("unexpected link %q", got)
	}
}
