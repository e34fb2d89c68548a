package interviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"aihr-backend/internal/candidates"
	"aihr-backend/internal/llm"
	"aihr-backend/internal/prompts"
	"aihr-backend/internal/sheets"
	"aihr-backend/internal/shared/lock"
	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/telemetry"
	"aihr-backend/internal/speech"
)

// CandidateLookup resolves the candidate that owns an interview.
type CandidateLookup interface {
	Get(ctx context.Context, id string) (candidates.Candidate, error)
}

// Service is the interview workflow controller:
//
//	start -> in_progress -> (answer, next question)* -> finish -> completed
//
// Answer submission, question generation and finish hold a per-interview lock.
type Service struct {
	Repo        Repo
	Candidates  CandidateLookup
	Transcriber speech.Transcriber
	LLM         llm.Client
	Prompts     *prompts.Manager
	Exporter    sheets.Exporter
	Locker      lock.Locker

	// AutoNextQuestion generates a follow-up question after every answer.
	AutoNextQuestion bool

	Now func() time.Time
}

// AnswerResult is the outcome of SubmitAnswer.
type AnswerResult struct {
	Transcript   string
	NextQuestion string
	Interview    Interview
}

// Start creates the candidate's interview with the opening question. Calling
// it again returns the stored interview unchanged.
func (s *Service) Start(ctx context.Context, candidateID string) (Interview, bool, error) {
	candidate, err := s.candidate(ctx, candidateID)
	if err != nil {
		return Interview{}, false, err
	}
	iv, created, err := s.Repo.Create(ctx, Interview{
		ID:          candidate.ID,
		CandidateID: candidate.ID,
		Status:      StatusInProgress,
		Questions:   s.Prompts.OpeningQuestion(candidate.Name),
	})
	if err != nil {
		return Interview{}, false, err
	}
	if created {
		metrics.IncInterviewStarted()
		telemetry.InfoCtx(ctx, "interview.started", map[string]any{"interview_id": iv.ID, "candidate_id": iv.CandidateID})
	}
	return iv, created, nil
}

// Get returns an interview by id.
func (s *Service) Get(ctx context.Context, id string) (Interview, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Interview{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// SubmitAnswer transcribes audioURL and appends the text to the answers.
// With AutoNextQuestion set, a follow-up question is generated afterwards;
// its failure is reported as *NextQuestionError and the answer stays stored.
func (s *Service) SubmitAnswer(ctx context.Context, id, audioURL string) (AnswerResult, error) {
	audioURL = strings.TrimSpace(audioURL)
	if err := speech.ValidateAudioRef(audioURL); err != nil {
		return AnswerResult{}, fmt.Errorf("%w: audio_url %s", ErrInvalidInput, err.Error())
	}

	unlock, err := s.Locker.Lock(ctx, id)
	if err != nil {
		return AnswerResult{}, err
	}
	defer unlock()

	iv, err := s.Get(ctx, id)
	if err != nil {
		return AnswerResult{}, err
	}
	if iv.Completed() {
		return AnswerResult{}, ErrAlreadyCompleted
	}

	transcript, err := s.Transcriber.Transcribe(ctx, audioURL)
	if errors.Is(err, speech.ErrEmptyTranscript) {
		return AnswerResult{}, ErrEmptyTranscript
	}
	if err != nil {
		return AnswerResult{}, err
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return AnswerResult{}, ErrEmptyTranscript
	}

	iv, err = s.Repo.AppendAnswer(ctx, iv.ID, transcript)
	if err != nil {
		return AnswerResult{}, err
	}
	metrics.IncAnswerSubmitted()
	telemetry.InfoCtx(ctx, "interview.answer_recorded", map[string]any{
		"interview_id":   iv.ID,
		"transcript_len": len(transcript),
	})

	result := AnswerResult{Transcript: transcript, Interview: iv}
	if !s.AutoNextQuestion {
		return result, nil
	}
	question, updated, err := s.nextQuestion(ctx, iv)
	if err != nil {
		return result, &NextQuestionError{Transcript: transcript, Err: err}
	}
	result.NextQuestion = question
	result.Interview = updated
	return result, nil
}

// NextQuestion generates and appends a follow-up question.
func (s *Service) NextQuestion(ctx context.Context, id string) (string, Interview, error) {
	unlock, err := s.Locker.Lock(ctx, id)
	if err != nil {
		return "", Interview{}, err
	}
	defer unlock()

	iv, err := s.Get(ctx, id)
	if err != nil {
		return "", Interview{}, err
	}
	if iv.Completed() {
		return "", Interview{}, ErrAlreadyCompleted
	}
	return s.nextQuestion(ctx, iv)
}

func (s *Service) nextQuestion(ctx context.Context, iv Interview) (string, Interview, error) {
	req, err := s.Prompts.Build(prompts.NextQuestion, prompts.Data{
		CandidateName: s.candidateName(ctx, iv.CandidateID),
		Questions:     iv.Questions,
		Answers:       iv.Answers,
		LastAnswer:    iv.LastAnswer(),
	})
	if err != nil {
		return "", Interview{}, err
	}
	question, err := s.LLM.Complete(ctx, req)
	if err != nil {
		return "", Interview{}, err
	}
	// Transcripts are newline-joined, one entry per line.
	question = strings.Join(strings.Fields(question), " ")
	updated, err := s.Repo.AppendQuestion(ctx, iv.ID, question)
	if err != nil {
		return "", Interview{}, err
	}
	return question, updated, nil
}

// AttachVideo overwrites the recording reference and records a videos-tab row.
func (s *Service) AttachVideo(ctx context.Context, id, videoURL string) (Interview, error) {
	videoURL = strings.TrimSpace(videoURL)
	if err := validation.Validate(videoURL, validation.Required); err != nil {
		return Interview{}, fmt.Errorf("%w: video_url %s", ErrInvalidInput, err.Error())
	}
	iv, err := s.Repo.SetVideoURL(ctx, strings.TrimSpace(id), videoURL)
	if err != nil {
		return Interview{}, err
	}
	if s.Exporter != nil {
		err := s.Exporter.AppendRow(ctx, sheets.TabVideos, VideoRow(iv, videoURL))
		metrics.ObserveExport(sheets.TabVideos, err)
		if err != nil {
			telemetry.ErrorCtx(ctx, "interview.video_export_failed", map[string]any{"interview_id": iv.ID, "error": err})
		}
	}
	return iv, nil
}

// Finish generates the report from the full transcript and completes the
// interview. The report and status are committed before the spreadsheet
// export; an export failure is returned as *ExportError and leaves the
// interview pending for the retry job.
func (s *Service) Finish(ctx context.Context, id string) (Interview, error) {
	unlock, err := s.Locker.Lock(ctx, id)
	if err != nil {
		return Interview{}, err
	}
	defer unlock()

	iv, err := s.Get(ctx, id)
	if err != nil {
		return Interview{}, err
	}
	if iv.Completed() {
		return Interview{}, ErrAlreadyCompleted
	}

	name := s.candidateName(ctx, iv.CandidateID)
	req, err := s.Prompts.Build(prompts.Report, prompts.Data{
		CandidateName: name,
		Questions:     iv.Questions,
		Answers:       iv.Answers,
	})
	if err != nil {
		return Interview{}, err
	}
	report, err := s.LLM.Complete(ctx, req)
	if err != nil {
		return Interview{}, err
	}

	iv, err = s.Repo.Complete(ctx, iv.ID, report)
	if err != nil {
		return Interview{}, err
	}
	metrics.IncInterviewCompleted()
	telemetry.InfoCtx(ctx, "interview.completed", map[string]any{"interview_id": iv.ID, "report_len": len(report)})

	if err := s.export(ctx, iv, name); err != nil {
		return iv, &ExportError{Interview: iv, Err: err}
	}
	return s.Get(ctx, iv.ID)
}

// ExportPending re-exports completed interviews whose export failed earlier.
func (s *Service) ExportPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.Repo.ListPendingExport(ctx, limit)
	if err != nil {
		return 0, err
	}
	exported := 0
	for _, iv := range pending {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		done, err := s.retryExport(ctx, iv.ID)
		if err != nil {
			telemetry.Warn("interview.export_retry_failed", map[string]any{"interview_id": iv.ID, "error": err})
			continue
		}
		if done {
			exported++
		}
	}
	return exported, nil
}

// retryExport exports one interview under its lock. It reports false when the
// interview was exported (or is no longer pending) by the time the lock is held.
func (s *Service) retryExport(ctx context.Context, id string) (bool, error) {
	unlock, err := s.Locker.Lock(ctx, id)
	if err != nil {
		return false, err
	}
	defer unlock()

	iv, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !iv.Completed() || iv.ExportedAt != nil {
		return false, nil
	}
	if err := s.export(ctx, iv, s.candidateName(ctx, iv.CandidateID)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) export(ctx context.Context, iv Interview, candidateName string) error {
	if s.Exporter == nil {
		return nil
	}
	err := s.Exporter.AppendRow(ctx, sheets.TabInterviews, InterviewRow(iv))
	metrics.ObserveExport(sheets.TabInterviews, err)
	if err != nil {
		telemetry.ErrorCtx(ctx, "interview.export_failed", map[string]any{"interview_id": iv.ID, "tab": sheets.TabInterviews, "error": err})
		return err
	}
	err = s.Exporter.AppendRow(ctx, sheets.TabReports, ReportRow(iv, candidateName))
	metrics.ObserveExport(sheets.TabReports, err)
	if err != nil {
		telemetry.ErrorCtx(ctx, "interview.export_failed", map[string]any{"interview_id": iv.ID, "tab": sheets.TabReports, "error": err})
		return err
	}
	return s.Repo.MarkExported(ctx, iv.ID, s.now())
}

func (s *Service) candidate(ctx context.Context, id string) (candidates.Candidate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return candidates.Candidate{}, ErrCandidateNotFound
	}
	c, err := s.Candidates.Get(ctx, id)
	if errors.Is(err, candidates.ErrNotFound) {
		return candidates.Candidate{}, ErrCandidateNotFound
	}
	return c, err
}

// candidateName falls back to the id when the candidate cannot be loaded.
func (s *Service) candidateName(ctx context.Context, candidateID string) string {
	c, err := s.candidate(ctx, candidateID)
	if err != nil || c.Name == "" {
		return candidateID
	}
	return c.Name
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
