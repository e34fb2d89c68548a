package interviews

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("interview not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyCompleted  = errors.New("interview already completed")
	ErrEmptyTranscript   = errors.New("empty transcript")
)

// ExportError is returned by Finish when the report was committed but the
// spreadsheet export failed.
type ExportError struct {
	Interview Interview
	Err       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export interview %s: %v", e.Interview.ID, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// NextQuestionError is returned by SubmitAnswer when the answer was stored
// but generating the follow-up question failed.
type NextQuestionError struct {
	Transcript string
	Err        error
}

func (e *NextQuestionError) Error() string {
	return fmt.Sprintf("generate next question: %v", e.Err)
}

func (e *NextQuestionError) Unwrap() error { return e.Err }
