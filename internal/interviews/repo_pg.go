package interviews

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const selectColumns = `id, candidate_id, status, questions, answers, report, video_url, completed_at, exported_at, created_at, updated_at`

// PGRepo implements Repo using Postgres. Appends and completion are single
// conditional UPDATE statements, so concurrent writers cannot lose updates.
type PGRepo struct {
	DB *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (Interview, error) {
	var (
		iv          Interview
		status      string
		report      sql.NullString
		videoURL    sql.NullString
		completedAt sql.NullTime
		exportedAt  sql.NullTime
	)
	if err := row.Scan(&iv.ID, &iv.CandidateID, &status, &iv.Questions, &iv.Answers, &report, &videoURL, &completedAt, &exportedAt, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
		return Interview{}, err
	}
	iv.Status = Status(status)
	if report.Valid {
		iv.Report = &report.String
	}
	if videoURL.Valid {
		iv.VideoURL = &videoURL.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		iv.CompletedAt = &t
	}
	if exportedAt.Valid {
		t := exportedAt.Time
		iv.ExportedAt = &t
	}
	return iv, nil
}

// Create inserts the interview if absent and returns the stored row.
func (r *PGRepo) Create(ctx context.Context, iv Interview) (Interview, bool, error) {
	const query = `
INSERT INTO interviews (id, candidate_id, status, questions, answers)
VALUES ($1, $2, $3, $4, '')
ON CONFLICT (id) DO NOTHING`

	res, err := r.DB.ExecContext(ctx, query, iv.ID, iv.CandidateID, string(StatusInProgress), iv.Questions)
	if err != nil {
		return Interview{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Interview{}, false, err
	}
	stored, err := r.GetByID(ctx, iv.ID)
	if err != nil {
		return Interview{}, false, err
	}
	return stored, n > 0, nil
}

// GetByID returns an interview by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Interview, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM interviews WHERE id = $1`, id)
	iv, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Interview{}, ErrNotFound
	}
	return iv, err
}

// AppendAnswer appends a newline-separated answer to a running interview.
func (r *PGRepo) AppendAnswer(ctx context.Context, id, text string) (Interview, error) {
	const query = `
UPDATE interviews
SET answers = CASE WHEN answers = '' THEN $2 ELSE answers || E'\n' || $2 END,
    updated_at = now()
WHERE id = $1 AND status = 'in_progress'
RETURNING ` + selectColumns
	return r.updateRunning(ctx, id, query, id, text)
}

// AppendQuestion appends a newline-separated question to a running interview.
func (r *PGRepo) AppendQuestion(ctx context.Context, id, text string) (Interview, error) {
	const query = `
UPDATE interviews
SET questions = CASE WHEN questions = '' THEN $2 ELSE questions || E'\n' || $2 END,
    updated_at = now()
WHERE id = $1 AND status = 'in_progress'
RETURNING ` + selectColumns
	return r.updateRunning(ctx, id, query, id, text)
}

// Complete moves a running interview to completed with its report.
func (r *PGRepo) Complete(ctx context.Context, id, report string) (Interview, error) {
	const query = `
UPDATE interviews
SET status = 'completed', report = $2, completed_at = now(), updated_at = now()
WHERE id = $1 AND status = 'in_progress'
RETURNING ` + selectColumns
	return r.updateRunning(ctx, id, query, id, report)
}

// SetVideoURL overwrites the recording reference.
func (r *PGRepo) SetVideoURL(ctx context.Context, id, url string) (Interview, error) {
	const query = `
UPDATE interviews
SET video_url = $2, updated_at = now()
WHERE id = $1
RETURNING ` + selectColumns
	iv, err := scanInterview(r.DB.QueryRowContext(ctx, query, id, url))
	if errors.Is(err, sql.ErrNoRows) {
		return Interview{}, ErrNotFound
	}
	return iv, err
}

// MarkExported records a successful spreadsheet export.
func (r *PGRepo) MarkExported(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE interviews SET exported_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingExport returns completed interviews never exported, oldest first.
func (r *PGRepo) ListPendingExport(ctx context.Context, limit int) ([]Interview, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + selectColumns + `
FROM interviews
WHERE status = 'completed' AND exported_at IS NULL
ORDER BY updated_at ASC
LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// DeleteByCandidate removes the candidate's interview, if any.
func (r *PGRepo) DeleteByCandidate(ctx context.Context, candidateID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM interviews WHERE candidate_id = $1`, candidateID)
	return err
}

// updateRunning runs a RETURNING update guarded by status = 'in_progress' and
// tells a missing interview apart from a completed one.
func (r *PGRepo) updateRunning(ctx context.Context, id, query string, args ...any) (Interview, error) {
	iv, err := scanInterview(r.DB.QueryRowContext(ctx, query, args...))
	if err == nil {
		return iv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Interview{}, err
	}
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return Interview{}, getErr
	}
	if existing.Completed() {
		return Interview{}, ErrAlreadyCompleted
	}
	return Interview{}, ErrNotFound
}
