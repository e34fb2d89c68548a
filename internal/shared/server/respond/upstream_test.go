package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"aihr-backend/internal/shared/upstream"
)

func runError(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	fn(c)
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec, body
}

func TestUpstreamMapsConfigError(t *testing.T) {
	rec, body := runError(t, func(c *gin.Context) {
		if !Upstream(c, upstream.NotConfigured("deepgram", "DEEPGRAM_API_KEY")) {
			t.Fatalf("expected config error to be handled")
		}
	})
	if rec.Code != http.StatusInternalServerError || body.Error.Code != "configuration_error" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestUpstreamMapsProviderError(t *testing.T) {
	rec, body := runError(t, func(c *gin.Context) {
		err := &upstream.Error{Provider: "openai", Op: "complete", StatusCode: 503}
		Upstream(c, err)
	})
	if rec.Code != http.StatusBadGateway || body.Error.Code != "upstream_error" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
	details, _ := body.Error.Details.(map[string]any)
	if details["provider"] != "openai" {
		t.Fatalf("expected provider detail, got %v", body.Error.Details)
	}
}

func TestUpstreamIgnoresOtherErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	if Upstream(c, errors.New("boom")) {
		t.Fatalf("plain errors must not be handled")
	}
}

func TestValidationIncludesFields(t *testing.T) {
	rec, body := runError(t, func(c *gin.Context) {
		Validation(c, validation.Errors{"email": errors.New("must be a valid email address")})
	})
	if rec.Code != http.StatusBadRequest || body.Error.Code != "validation_error" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
	details, _ := body.Error.Details.(map[string]any)
	if details["email"] != "must be a valid email address" {
		t.Fatalf("expected field message, got %v", body.Error.Details)
	}
}
