package interviews

import "time"

// Status is the interview lifecycle state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Interview is one candidate's question/answer/report session. Its id is the
// candidate id, so a candidate has at most one interview.
type Interview struct {
	ID          string     `json:"id"`
	CandidateID string     `json:"candidate_id"`
	Status      Status     `json:"status"`
	Questions   string     `json:"questions"`
	Answers     string     `json:"answers"`
	Report      *string    `json:"report"`
	VideoURL    *string    `json:"video_url"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExportedAt  *time.Time `json:"exported_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Completed reports whether the interview reached its terminal state.
func (iv Interview) Completed() bool {
	return iv.Status == StatusCompleted
}

// CurrentQuestion is the most recently asked question.
func (iv Interview) CurrentQuestion() string {
	return lastLine(iv.Questions)
}

// LastAnswer is the most recent transcribed answer.
func (iv Interview) LastAnswer() string {
	return lastLine(iv.Answers)
}

func appendLine(transcript, line string) string {
	if transcript == "" {
		return line
	}
	return transcript + "\n" + line
}

func lastLine(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return s[i+1:]
		}
	}
	return s
}
