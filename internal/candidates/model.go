package candidates

import "time"

// Candidate is a person registered for an automated interview.
type Candidate struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Gender        string    `json:"gender"`
	InterviewLink string    `json:"interview_link"`
	CreatedAt     time.Time `json:"created_at"`
}
