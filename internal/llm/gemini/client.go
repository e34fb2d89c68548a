package gemini

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	"aihr-backend/internal/llm"
	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/upstream"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.0-flash"
)

// Client implements llm.Client on the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a Gemini client. An empty model falls back to gemini-2.0-flash.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, upstream.NotConfigured(providerName, "GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &upstream.Error{Provider: providerName, Op: "init", Message: "failed to create client", Err: err}
	}
	return newWithClient(client, model), nil
}

func newWithClient(client *genai.Client, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model}
}

func (c *Client) Name() string { return providerName }

// Complete sends the flattened prompt and returns the generated text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (text string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(providerName, "complete", start, err) }()

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(llm.Flatten(req)), nil)
	if err != nil {
		return "", &upstream.Error{Provider: providerName, Op: "complete", Err: err}
	}
	if result == nil {
		return "", &upstream.Error{Provider: providerName, Op: "complete", Message: "no response generated"}
	}
	text, err = result.Text()
	if err != nil {
		return "", &upstream.Error{Provider: providerName, Op: "complete", Message: "failed to extract response text", Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &upstream.Error{Provider: providerName, Op: "complete", Message: "empty response generated"}
	}
	return text, nil
}

var _ llm.Client = (*Client)(nil)
