package speech

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aihr-backend/internal/shared/server/respond"
	"aihr-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches speech routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/transcribe/", h.transcribe)
	rg.POST("/transcribe", h.transcribe)
	rg.POST("/synthesize/", h.synthesize)
	rg.POST("/synthesize", h.synthesize)
	rg.GET("/audio/*key", h.audio)
}

type transcribeRequest struct {
	AudioURL string `json:"audio_url" form:"audio_url"`
}

func (h *Handler) transcribe(c *gin.Context) {
	var req transcribeRequest
	if !bindOptional(c, &req) {
		return
	}
	if req.AudioURL == "" {
		req.AudioURL = c.Query("audio_url")
	}
	text, err := h.Svc.Transcribe(c.Request.Context(), req.AudioURL)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"transcription": text})
}

type synthesizeRequest struct {
	Text string `json:"text" form:"text"`
}

func (h *Handler) synthesize(c *gin.Context) {
	var req synthesizeRequest
	if !bindOptional(c, &req) {
		return
	}
	if req.Text == "" {
		req.Text = c.Query("text")
	}
	clip, err := h.Svc.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"audio":        base64.StdEncoding.EncodeToString(clip.Audio),
		"content_type": clip.ContentType,
		"storage_key":  clip.StorageKey,
		"size_bytes":   clip.SizeBytes,
	})
}

func (h *Handler) audio(c *gin.Context) {
	rc, contentType, err := h.Svc.OpenAudio(c.Request.Context(), c.Param("key"))
	if errors.Is(err, ErrAudioNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "audio not found", nil)
		return
	}
	if err != nil {
		telemetry.Error("speech.audio_open_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to open audio", nil)
		return
	}
	defer rc.Close()
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

// bindOptional binds a JSON or form body when one was sent; query parameters
// fill in what the body leaves empty.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBind(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "), nil)
	case errors.Is(err, ErrEmptyTranscript):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_transcript", "no speech recognised in audio", nil)
	case respond.Upstream(c, err):
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "speech request failed", nil)
	}
}
