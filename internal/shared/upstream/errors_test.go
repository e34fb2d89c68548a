package upstream

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{Provider: "openai", Op: "complete", StatusCode: 503, Message: "overloaded"}
	want := "openai complete failed (http 503): overloaded"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapKeepsProviderErrors(t *testing.T) {
	inner := &Error{Provider: "deepgram", Op: "transcribe", Message: "bad audio"}
	wrapped := Wrap("openai", "complete", fmt.Errorf("call: %w", inner))
	if got := Provider(wrapped); got != "deepgram" {
		t.Fatalf("expected deepgram provider, got %q", got)
	}

	cfgErr := NotConfigured("elevenlabs", "ELEVENLABS_API_KEY")
	if Wrap("x", "y", cfgErr) != cfgErr {
		t.Fatalf("expected config errors to pass through")
	}
	if !errors.Is(cfgErr, ErrNotConfigured) {
		t.Fatalf("expected config error to match ErrNotConfigured")
	}
	if Provider(cfgErr) != "elevenlabs" {
		t.Fatalf("expected provider from config error")
	}
}

func TestWrapPlainError(t *testing.T) {
	err := Wrap("livekit", "create_room", context.DeadlineExceeded)
	var upErr *Error
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped cause to be preserved")
	}
	if Wrap("livekit", "create_room", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate([]byte("  abcdef  "), 3); got != "abc..." {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate([]byte("abc"), 0); got != "abc" {
		t.Fatalf("Truncate without limit = %q", got)
	}
}
