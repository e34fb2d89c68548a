package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/upstream"
	"aihr-backend/internal/speech"
)

const providerName = "elevenlabs"

// Client synthesizes speech with the ElevenLabs text-to-speech API.
type Client struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// New constructs a client. Missing credentials are reported on first use.
func New(apiKey, voiceID string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		voiceID:    strings.TrimSpace(voiceID),
		baseURL:    "https://api.elevenlabs.io",
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize returns MPEG audio for text.
func (c *Client) Synthesize(ctx context.Context, text string) (audio []byte, contentType string, err error) {
	var missing []string
	if c.apiKey == "" {
		missing = append(missing, "ELEVENLABS_API_KEY")
	}
	if c.voiceID == "" {
		missing = append(missing, "ELEVENLABS_VOICE_ID")
	}
	if len(missing) > 0 {
		return nil, "", upstream.NotConfigured(providerName, missing...)
	}
	start := time.Now()
	defer func() { metrics.ObserveUpstream(providerName, "synthesize", start, err) }()

	payload, err := json.Marshal(ttsRequest{
		Text:          text,
		VoiceSettings: voiceSettings{Stability: 0.75, SimilarityBoost: 0.9},
	})
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/text-to-speech/"+c.voiceID, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", upstream.Wrap(providerName, "synthesize", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", upstream.Wrap(providerName, "synthesize", err)
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(body, "detail.message").String()
		if msg == "" {
			msg = upstream.Truncate(body, 300)
		}
		return nil, "", &upstream.Error{Provider: providerName, Op: "synthesize", StatusCode: resp.StatusCode, Message: msg}
	}
	if len(body) == 0 {
		return nil, "", &upstream.Error{Provider: providerName, Op: "synthesize", Message: "empty audio"}
	}
	contentType = resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return body, contentType, nil
}

var _ speech.Synthesizer = (*Client)(nil)
