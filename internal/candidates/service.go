package candidates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aihr-backend/internal/notify"
	"aihr-backend/internal/sheets"
	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/telemetry"
)

const sideEffectTimeout = 60 * time.Second

// InterviewRemover deletes the interview owned by a candidate.
type InterviewRemover interface {
	DeleteByCandidate(ctx context.Context, candidateID string) error
}

// Service contains business logic for candidates.
type Service struct {
	Repo            Repo
	Notifier        notify.Notifier
	Exporter        sheets.Exporter
	Interviews      InterviewRemover
	FrontendBaseURL string

	// Go runs best-effort side effects; nil means a new goroutine.
	Go  func(fn func())
	Now func() time.Time
}

// Register validates and stores a candidate, then emails the interview link
// and records the spreadsheet row without blocking the caller.
func (s *Service) Register(ctx context.Context, form RegisterForm) (Candidate, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return Candidate{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	id := uuid.NewString()
	c := Candidate{
		ID:            id,
		Name:          form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		Gender:        form.Gender,
		InterviewLink: InterviewLink(s.FrontendBaseURL, id),
		CreatedAt:     s.now(),
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Candidate{}, err
	}
	metrics.IncCandidateRegistered()
	telemetry.Info("candidate.registered", map[string]any{"candidate_id": c.ID})

	s.background(func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		s.sideEffects(bgCtx, c)
	})
	return c, nil
}

func (s *Service) sideEffects(ctx context.Context, c Candidate) {
	if s.Notifier != nil {
		if err := s.Notifier.SendInterviewInvite(ctx, c.Email, c.Name, c.InterviewLink); err != nil {
			telemetry.Error("candidate.invite_failed", map[string]any{"candidate_id": c.ID, "error": err})
		} else {
			telemetry.Info("candidate.invite_sent", map[string]any{"candidate_id": c.ID})
		}
	}
	if s.Exporter != nil {
		err := s.Exporter.AppendRow(ctx, sheets.TabCandidates, ExportRow(c))
		metrics.ObserveExport(sheets.TabCandidates, err)
		if err != nil {
			telemetry.Error("candidate.export_failed", map[string]any{"candidate_id": c.ID, "error": err})
		}
	}
}

// Get returns a candidate by id.
func (s *Service) Get(ctx context.Context, id string) (Candidate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Candidate{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// CandidateExists reports whether id is registered.
func (s *Service) CandidateExists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the candidate and the interview it owns.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.Interviews != nil {
		if err := s.Interviews.DeleteByCandidate(ctx, c.ID); err != nil {
			return fmt.Errorf("delete interview: %w", err)
		}
	}
	if err := s.Repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	telemetry.Info("candidate.deleted", map[string]any{"candidate_id": c.ID})
	return nil
}

// InterviewLink derives the candidate's interview URL from the frontend base.
func InterviewLink(base, id string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/interview/" + id
}

func (s *Service) background(fn func()) {
	if s.Go != nil {
		s.Go(fn)
		return
	}
	go fn()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
