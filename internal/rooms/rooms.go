// Package rooms creates video rooms for interviews and issues participant tokens.
package rooms

import "context"

// Room is a created video room.
type Room struct {
	SID  string `json:"sid"`
	Name string `json:"name"`
}

// Provider is the video-room backend.
type Provider interface {
	CreateRoom(ctx context.Context, name string) (Room, error)
	ParticipantToken(room, identity string) (string, error)
	URL() string
}
