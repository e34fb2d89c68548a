package llm

import (
	"context"
	"strings"

	"aihr-backend/internal/shared/upstream"
)

// Request is a single text-generation call: a fixed instruction preamble and
// the rendered prompt.
type Request struct {
	System string
	User   string
}

// Client abstracts LLM providers used for interview questions and reports.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Unconfigured is used when no provider credentials are set. Every call fails
// with a configuration error naming the missing keys.
type Unconfigured struct {
	Provider string
	Missing  []string
}

func (u Unconfigured) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", upstream.NotConfigured(u.Name(), u.Missing...)
}

func (u Unconfigured) Name() string {
	if strings.TrimSpace(u.Provider) == "" {
		return "llm"
	}
	return u.Provider
}

// Flatten joins the system preamble and prompt for providers that accept a
// single text input.
func Flatten(req Request) string {
	system := strings.TrimSpace(req.System)
	if system == "" {
		return req.User
	}
	return system + "\n\n" + req.User
}
