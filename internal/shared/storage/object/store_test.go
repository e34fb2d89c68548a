package object

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestClipKey(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.FixedZone("x", 3*3600))
	a := ClipKey("Speech", "audio/mpeg", now)
	b := ClipKey("Speech", "audio/mpeg", now)
	if a == b {
		t.Fatalf("expected unique keys, got %q twice", a)
	}
	if !strings.HasPrefix(a, "speech/2026/03/09/") || !strings.HasSuffix(a, ".mp3") {
		t.Fatalf("unexpected key %q", a)
	}
	if got := ClipKey("", "application/json", now); !strings.HasPrefix(got, "clips/") || !strings.HasSuffix(got, ".bin") {
		t.Fatalf("unexpected fallback key %q", got)
	}
}

func TestContentTypeRoundTrip(t *testing.T) {
	for _, ct := range []string{"audio/mpeg", "audio/wav", "audio/ogg"} {
		if got := ContentTypeFor("x/y" + ExtensionFor(ct)); got != ct {
			t.Fatalf("%s: got %s", ct, got)
		}
	}
	if got := ExtensionFor("Audio/MPEG; charset=binary"); got != ".mp3" {
		t.Fatalf("parameters should be ignored, got %s", got)
	}
}

func TestCleanKey(t *testing.T) {
	ok := map[string]string{
		"/speech/2026/01/02/a.mp3": "speech/2026/01/02/a.mp3",
		" speech/a.mp3 ":           "speech/a.mp3",
	}
	for in, want := range ok {
		got, err := CleanKey(in)
		if err != nil || got != want {
			t.Fatalf("CleanKey(%q) = %q, %v", in, got, err)
		}
	}
	for _, bad := range []string{"", "/", "../etc/passwd", "speech/../../x", "speech//a", `speech\a`, "./a"} {
		if _, err := CleanKey(bad); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("CleanKey(%q) should be rejected, got %v", bad, err)
		}
	}
}
