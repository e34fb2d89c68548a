package interviews

import (
	"context"
	"time"
)

// Repo defines persistence operations for interviews. Mutations that only
// apply to a running interview return ErrAlreadyCompleted once it finished.
type Repo interface {
	// Create inserts iv unless an interview with the same id exists, and
	// returns the stored record either way.
	Create(ctx context.Context, iv Interview) (stored Interview, created bool, err error)
	GetByID(ctx context.Context, id string) (Interview, error)
	AppendAnswer(ctx context.Context, id, text string) (Interview, error)
	AppendQuestion(ctx context.Context, id, text string) (Interview, error)
	SetVideoURL(ctx context.Context, id, url string) (Interview, error)
	// Complete stores the report and moves the interview to completed, once.
	Complete(ctx context.Context, id, report string) (Interview, error)
	MarkExported(ctx context.Context, id string, at time.Time) error
	ListPendingExport(ctx context.Context, limit int) ([]Interview, error)
	DeleteByCandidate(ctx context.Context, candidateID string) error
}
