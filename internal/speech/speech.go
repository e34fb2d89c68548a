// Package speech wraps the speech-to-text and text-to-speech providers.
package speech

import (
	"context"
	"errors"
)

// ErrEmptyTranscript is returned when the provider recognised no speech.
var ErrEmptyTranscript = errors.New("empty transcript")

// Transcriber turns a reachable audio URL into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// Synthesizer turns text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (audio []byte, contentType string, err error)
}
