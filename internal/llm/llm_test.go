package llm

import (
	"context"
	"errors"
	"testing"

	"aihr-backend/internal/shared/upstream"
)

func TestUnconfiguredReturnsConfigError(t *testing.T) {
	client := Unconfigured{Provider: "openai", Missing: []string{"OPENAI_API_KEY"}}
	_, err := client.Complete(context.Background(), Request{User: "hi"})
	if !errors.Is(err, upstream.ErrNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
	var cfgErr *upstream.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Missing[0] != "OPENAI_API_KEY" {
		t.Fatalf("expected missing key in error, got %v", err)
	}
}

func TestFlatten(t *testing.T) {
	if got := Flatten(Request{User: "prompt"}); got != "prompt" {
		t.Fatalf("unexpected flatten without system: %q", got)
	}
	if got := Flatten(Request{System: "rules", User: "prompt"}); got != "rules\n\nprompt" {
		t.Fatalf("unexpected flatten: %q", got)
	}
}
