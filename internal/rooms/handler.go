package rooms

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

// RegisterRoutes attaches video-room routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/livekit/:id", h.open)
	rg.GET("/livekit/token/:id", h.token)
}

func (h *Handler) open(c *gin.Context) {
	c.Set(middleware.CandidateIDKey, c.Param("id"))
	session, err := h.Svc.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, session)
}

func (h *Handler) token(c *gin.Context) {
	c.Set(middleware.CandidateIDKey, c.Param("id"))
	session, err := h.Svc.Token(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, session)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
	case respond.Upstream(c, err):
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to open video room", nil)
	}
}
