package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/upstream"
	"aihr-backend/internal/speech"
)

const providerName = "deepgram"

const transcriptPath = "results.channels.0.alternatives.0.transcript"

// Client transcribes pre-recorded audio with the Deepgram listen API.
type Client struct {
	apiKey     string
	language   string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New constructs a client. An empty key is reported on first use.
func New(apiKey, language, model string, opts ...Option) *Client {
	if strings.TrimSpace(language) == "" {
		language = "ru"
	}
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		language:   language,
		model:      strings.TrimSpace(model),
		baseURL:    "https://api.deepgram.com",
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transcribe asks Deepgram to fetch and transcribe audioURL.
func (c *Client) Transcribe(ctx context.Context, audioURL string) (text string, err error) {
	if c.apiKey == "" {
		return "", upstream.NotConfigured(providerName, "DEEPGRAM_API_KEY")
	}
	start := time.Now()
	defer func() { metrics.ObserveUpstream(providerName, "transcribe", start, err) }()

	q := url.Values{}
	q.Set("punctuate", "true")
	q.Set("language", c.language)
	if c.model != "" {
		q.Set("model", c.model)
	}
	payload, err := json.Marshal(map[string]string{"url": audioURL})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/listen?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", upstream.Wrap(providerName, "transcribe", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstream.Wrap(providerName, "transcribe", err)
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(body, "err_msg").String()
		if msg == "" {
			msg = upstream.Truncate(body, 300)
		}
		return "", &upstream.Error{Provider: providerName, Op: "transcribe", StatusCode: resp.StatusCode, Message: msg}
	}
	if !gjson.ValidBytes(body) {
		return "", &upstream.Error{Provider: providerName, Op: "transcribe", Message: "invalid JSON response"}
	}
	result := gjson.GetBytes(body, transcriptPath)
	if !result.Exists() {
		return "", &upstream.Error{Provider: providerName, Op: "transcribe", Message: "response missing transcript"}
	}
	text = strings.TrimSpace(result.String())
	if text == "" {
		return "", speech.ErrEmptyTranscript
	}
	return text, nil
}

var _ speech.Transcriber = (*Client)(nil)
