package interviews

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aihr-backend/internal/shared/server/middleware"
	"aihr-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches interview routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/interview/:id", h.start)
	rg.POST("/interview/:id/answer", h.answer)
	rg.POST("/interview/:id/next_question", h.nextQuestion)
	rg.POST("/interview/:id/save_video", h.saveVideo)
	rg.POST("/interview/:id/finish", h.finish)
}

func (h *Handler) start(c *gin.Context) {
	id := tagRequest(c)
	iv, created, err := h.Svc.Start(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	message := "Interview in progress"
	if created {
		message = "Interview started"
		c.Set(middleware.StatusTransitionKey, "->"+string(StatusInProgress))
	}
	if iv.Completed() {
		message = "Interview completed"
	}
	respond.OK(c, gin.H{
		"message":   message,
		"question":  iv.CurrentQuestion(),
		"interview": iv,
	})
}

type answerRequest struct {
	AudioURL string `json:"audio_url" form:"audio_url"`
}

func (h *Handler) answer(c *gin.Context) {
	id := tagRequest(c)
	var req answerRequest
	if !bindOptional(c, &req) {
		return
	}
	if req.AudioURL == "" {
		req.AudioURL = c.Query("audio_url")
	}

	result, err := h.Svc.SubmitAnswer(c.Request.Context(), id, req.AudioURL)
	if err != nil {
		var nqErr *NextQuestionError
		if errors.As(err, &nqErr) {
			respond.Error(c, http.StatusBadGateway, "next_question_failed", "answer saved, next question generation failed", gin.H{
				"transcript": nqErr.Transcript,
				"error":      nqErr.Err.Error(),
			})
			return
		}
		writeError(c, err)
		return
	}
	body := gin.H{"transcript": result.Transcript}
	if result.NextQuestion != "" {
		body["next_question"] = result.NextQuestion
	}
	respond.OK(c, body)
}

func (h *Handler) nextQuestion(c *gin.Context) {
	id := tagRequest(c)
	question, _, err := h.Svc.NextQuestion(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"question": question})
}

type saveVideoRequest struct {
	VideoURL string `json:"video_url" form:"video_url"`
}

func (h *Handler) saveVideo(c *gin.Context) {
	id := tagRequest(c)
	var req saveVideoRequest
	if !bindOptional(c, &req) {
		return
	}
	if req.VideoURL == "" {
		req.VideoURL = c.Query("video_url")
	}

	iv, err := h.Svc.AttachVideo(c.Request.Context(), id, req.VideoURL)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"message": "Interview video saved", "video_url": iv.VideoURL})
}

func (h *Handler) finish(c *gin.Context) {
	id := tagRequest(c)
	iv, err := h.Svc.Finish(c.Request.Context(), id)
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		c.Set(middleware.StatusTransitionKey, string(StatusInProgress)+"->"+string(StatusCompleted))
		respond.Error(c, http.StatusBadGateway, "export_failed", "report saved, spreadsheet export failed", gin.H{
			"status": exportErr.Interview.Status,
			"report": exportErr.Interview.Report,
			"error":  exportErr.Err.Error(),
		})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.StatusTransitionKey, string(StatusInProgress)+"->"+string(StatusCompleted))
	respond.OK(c, gin.H{
		"message": "Interview completed, report saved",
		"status":  iv.Status,
		"report":  iv.Report,
	})
}

func tagRequest(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.InterviewIDKey, id)
	c.Set(middleware.CandidateIDKey, id)
	return id
}

// bindOptional binds a JSON or form body when one was sent.
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
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrCandidateNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "interview not found", nil)
	case errors.Is(err, ErrAlreadyCompleted):
		respond.Error(c, http.StatusConflict, "interview_completed", "interview already completed", nil)
	case errors.Is(err, ErrEmptyTranscript):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_transcript", "no speech recognised in audio", nil)
	case respond.Upstream(c, err):
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "interview request failed", nil)
	}
}
