package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aihr-backend/internal/shared/upstream"
)

func TestSynthesizeSendsVoiceSettings(t *testing.T) {
	var got ttsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "el-key" {
			t.Errorf("missing api key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer server.Close()

	client := New("el-key", "voice-1", WithBaseURL(server.URL))
	audio, contentType, err := client.Synthesize(context.Background(), "Hello, Ann!")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !bytes.Equal(audio, []byte("ID3audio")) || contentType != "audio/mpeg" {
		t.Fatalf("unexpected audio %q %q", audio, contentType)
	}
	if got.Text != "Hello, Ann!" || got.VoiceSettings.Stability != 0.75 || got.VoiceSettings.SimilarityBoost != 0.9 {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestSynthesizeProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`))
	}))
	defer server.Close()

	_, _, err := New("bad", "voice-1", WithBaseURL(server.URL)).Synthesize(context.Background(), "x")
	var upErr *upstream.Error
	if !errors.As(err, &upErr) || upErr.Message != "Invalid API key" || upErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSynthesizeRequiresVoice(t *testing.T) {
	_, _, err := New("key", "").Synthesize(context.Background(), "x")
	var cfgErr *upstream.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Missing[0] != "ELEVENLABS_VOICE_ID" {
		t.Fatalf("expected missing voice id, got %v", err)
	}
}
