package rooms

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when the candidate does not exist.
var ErrNotFound = errors.New("candidate not found")

// CandidateChecker reports whether a candidate is registered.
type CandidateChecker interface {
	CandidateExists(ctx context.Context, id string) (bool, error)
}

// Session is what a client needs to join an interview room.
type Session struct {
	Room  string `json:"room"`
	SID   string `json:"sid,omitempty"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

// Service creates one room per candidate, named after the candidate id.
type Service struct {
	Provider   Provider
	Candidates CandidateChecker
}

// Open creates the candidate's room and a join token.
func (s *Service) Open(ctx context.Context, candidateID string) (*Session, error) {
	id, err := s.check(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	room, err := s.Provider.CreateRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := s.Provider.ParticipantToken(room.Name, id)
	if err != nil {
		return nil, err
	}
	return &Session{Room: room.Name, SID: room.SID, Token: token, URL: s.Provider.URL()}, nil
}

// Token issues a join token without touching the room service.
func (s *Service) Token(ctx context.Context, candidateID string) (*Session, error) {
	id, err := s.check(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	token, err := s.Provider.ParticipantToken(id, id)
	if err != nil {
		return nil, err
	}
	return &Session{Room: id, Token: token, URL: s.Provider.URL()}, nil
}

func (s *Service) check(ctx context.Context, candidateID string) (string, error) {
	id := strings.TrimSpace(candidateID)
	if id == "" {
		return "", ErrNotFound
	}
	ok, err := s.Candidates.CandidateExists(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}
