package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"aihr-backend/internal/shared/storage/object"
	"aihr-backend/internal/shared/telemetry"
)

const (
	clipScope      = "speech"
	maxSynthesize  = 5000
	maxAudioRef    = 2048
)

// ErrInvalidInput is returned for malformed audio URLs or text.
var ErrInvalidInput = errors.New("invalid input")

// ErrAudioNotFound is returned when a stored clip cannot be opened.
var ErrAudioNotFound = errors.New("audio not found")

// Clip is synthesized audio plus where it was stored, if anywhere.
type Clip struct {
	Audio       []byte
	ContentType string
	StorageKey  string
	SizeBytes   int64
}

// Service exposes transcription and synthesis to HTTP callers.
type Service struct {
	Transcriber Transcriber
	Synthesizer Synthesizer
	Store       object.ClipStore
}

// ValidateAudioRef checks that an audio reference was given. The reference is
// opaque here; the transcription provider rejects ones it cannot fetch.
func ValidateAudioRef(ref string) error {
	return validation.Validate(strings.TrimSpace(ref), validation.Required, validation.RuneLength(1, maxAudioRef))
}

// Transcribe returns the recognised text of the referenced audio.
func (s *Service) Transcribe(ctx context.Context, audioURL string) (string, error) {
	audioURL = strings.TrimSpace(audioURL)
	if err := ValidateAudioRef(audioURL); err != nil {
		return "", fmt.Errorf("%w: audio_url %s", ErrInvalidInput, err.Error())
	}
	return s.Transcriber.Transcribe(ctx, audioURL)
}

// Synthesize voices text and keeps a copy in the object store.
// A storage failure is logged and the audio is still returned.
func (s *Service) Synthesize(ctx context.Context, text string) (*Clip, error) {
	text = strings.TrimSpace(text)
	if err := validation.Validate(text, validation.Required, validation.RuneLength(1, maxSynthesize)); err != nil {
		return nil, fmt.Errorf("%w: text %s", ErrInvalidInput, err.Error())
	}
	audio, contentType, err := s.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	clip := &Clip{Audio: audio, ContentType: contentType, SizeBytes: int64(len(audio))}
	if s.Store == nil {
		return clip, nil
	}
	key := object.ClipKey(clipScope, contentType, time.Now())
	size, err := s.Store.Put(ctx, key, contentType, bytes.NewReader(audio))
	if err != nil {
		telemetry.Error("speech.store_failed", map[string]any{"key": key, "error": err})
		return clip, nil
	}
	clip.StorageKey = key
	clip.SizeBytes = size
	return clip, nil
}

// OpenAudio streams a previously stored clip and reports its content type.
func (s *Service) OpenAudio(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if s.Store == nil {
		return nil, "", ErrAudioNotFound
	}
	rc, contentType, err := s.Store.Get(ctx, key)
	if errors.Is(err, object.ErrNotFound) || errors.Is(err, object.ErrInvalidKey) {
		return nil, "", fmt.Errorf("%w: %v", ErrAudioNotFound, err)
	}
	if err != nil {
		return nil, "", err
	}
	return rc, contentType, nil
}
