package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aihr-backend/internal/llm"
	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/telemetry"
	"aihr-backend/internal/shared/upstream"
)

const (
	providerName = "openai"
	defaultModel = "gpt-4o"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client. An empty model falls back to gpt-4o.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, upstream.NotConfigured(providerName, "OPENAI_API_KEY")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *Client) Name() string { return providerName }

// Complete returns the model's free-text answer for the request.
func (c *Client) Complete(ctx context.Context, in llm.Request) (text string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(providerName, "complete", start, err) }()

	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(in.System) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: in.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: in.User})

	reqBody := chatRequest{Model: c.model, Messages: messages}
	if !isGPT5(c.model) {
		temp := float32(0.7)
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", &upstream.Error{Provider: providerName, Op: "complete", Message: "request timeout", Err: err}
		}
		return "", upstream.Wrap(providerName, "complete", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstream.Wrap(providerName, "complete", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", &upstream.Error{Provider: providerName, Op: "complete", StatusCode: resp.StatusCode, Message: upstream.Truncate(body, 300)}
		}
		return "", &upstream.Error{Provider: providerName, Op: "complete", Message: "response parse", Err: err}
	}
	if parsed.Error != nil {
		return "", &upstream.Error{
			Provider:   providerName,
			Op:         "complete",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s (%s)", parsed.Error.Message, parsed.Error.Type),
		}
	}
	if resp.StatusCode >= 400 {
		return "", &upstream.Error{Provider: providerName, Op: "complete", StatusCode: resp.StatusCode, Message: upstream.Truncate(body, 300)}
	}
	if len(parsed.Choices) == 0 {
		return "", &upstream.Error{Provider: providerName, Op: "complete", Message: "response missing choices"}
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &upstream.Error{Provider: providerName, Op: "complete", Message: "response empty content"}
	}
	logUsage(ctx, c.model, parsed)
	return content, nil
}

func logUsage(ctx context.Context, model string, parsed chatResponse) {
	fields := map[string]any{"provider": providerName, "model": model}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.InfoCtx(ctx, "llm.response", fields)
}

// gpt-5 models only accept the default temperature.
func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*Client)(nil)
