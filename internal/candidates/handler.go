package candidates

import (
	"errors"
	"net/http"

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

// RegisterRoutes attaches candidate routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register/", h.register)
	rg.POST("/register", h.register)
	rg.GET("/candidates/:id", h.get)
	rg.DELETE("/candidates/:id", h.delete)
}

func (h *Handler) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	candidate, err := h.Svc.Register(c.Request.Context(), form)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Validation(c, err)
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "conflict", "email already registered", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to register candidate", nil)
		}
		return
	}
	c.Set(middleware.CandidateIDKey, candidate.ID)

	respond.Created(c, "/candidates/"+candidate.ID, gin.H{
		"message":        "Candidate registered",
		"candidate":      candidate,
		"interview_link": candidate.InterviewLink,
	})
}

func (h *Handler) get(c *gin.Context) {
	c.Set(middleware.CandidateIDKey, c.Param("id"))
	candidate, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	respond.OK(c, candidate)
}

func (h *Handler) delete(c *gin.Context) {
	c.Set(middleware.CandidateIDKey, c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal", "candidate request failed", nil)
}
