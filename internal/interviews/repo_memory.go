package interviews

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]Interview
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Interview),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Create(ctx context.Context, iv Interview) (Interview, bool, error) {
	if err := ctx.Err(); err != nil {
		return Interview{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.data[iv.ID]; ok {
		return clone(existing), false, nil
	}
	now := r.now()
	iv.CreatedAt, iv.UpdatedAt = now, now
	if iv.Status == "" {
		iv.Status = StatusInProgress
	}
	r.data[iv.ID] = iv
	return clone(iv), true, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Interview, error) {
	if err := ctx.Err(); err != nil {
		return Interview{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.data[id]
	if !ok {
		return Interview{}, ErrNotFound
	}
	return clone(iv), nil
}

func (r *MemoryRepo) AppendAnswer(ctx context.Context, id, text string) (Interview, error) {
	return r.update(ctx, id, true, func(iv *Interview) { iv.Answers = appendLine(iv.Answers, text) })
}

func (r *MemoryRepo) AppendQuestion(ctx context.Context, id, text string) (Interview, error) {
	return r.update(ctx, id, true, func(iv *Interview) { iv.Questions = appendLine(iv.Questions, text) })
}

func (r *MemoryRepo) SetVideoURL(ctx context.Context, id, url string) (Interview, error) {
	return r.update(ctx, id, false, func(iv *Interview) { iv.VideoURL = &url })
}

func (r *MemoryRepo) Complete(ctx context.Context, id, report string) (Interview, error) {
	return r.update(ctx, id, true, func(iv *Interview) {
		now := r.now()
		iv.Status = StatusCompleted
		iv.Report = &report
		iv.CompletedAt = &now
	})
}

func (r *MemoryRepo) MarkExported(ctx context.Context, id string, at time.Time) error {
	_, err := r.update(ctx, id, false, func(iv *Interview) {
		at := at.UTC()
		iv.ExportedAt = &at
	})
	return err
}

func (r *MemoryRepo) ListPendingExport(ctx context.Context, limit int) ([]Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	out := make([]Interview, 0)
	for _, iv := range r.data {
		if iv.Completed() && iv.ExportedAt == nil {
			out = append(out, clone(iv))
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) DeleteByCandidate(ctx context.Context, candidateID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, iv := range r.data {
		if iv.CandidateID == candidateID {
			delete(r.data, id)
		}
	}
	return nil
}

// update applies fn under the lock; runningOnly rejects completed interviews.
func (r *MemoryRepo) update(ctx context.Context, id string, runningOnly bool, fn func(iv *Interview)) (Interview, error) {
	if err := ctx.Err(); err != nil {
		return Interview{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.data[id]
	if !ok {
		return Interview{}, ErrNotFound
	}
	if runningOnly && iv.Completed() {
		return Interview{}, ErrAlreadyCompleted
	}
	fn(&iv)
	iv.UpdatedAt = r.now()
	r.data[id] = iv
	return clone(iv), nil
}

func clone(iv Interview) Interview {
	if iv.Report != nil {
		v := *iv.Report
		iv.Report = &v
	}
	if iv.VideoURL != nil {
		v := *iv.VideoURL
		iv.VideoURL = &v
	}
	if iv.CompletedAt != nil {
		v := *iv.CompletedAt
		iv.CompletedAt = &v
	}
	if iv.ExportedAt != nil {
		v := *iv.ExportedAt
		iv.ExportedAt = &v
	}
	return iv
}
