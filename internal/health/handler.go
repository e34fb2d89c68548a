package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aihr-backend/internal/shared/server/respond"
)

// Handler exposes the landing and health endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches health routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.landing)
	rg.GET("/health", h.health)
}

func (h *Handler) landing(c *gin.Context) {
	respond.OK(c, gin.H{"message": "AI HR interview service is running"})
}

func (h *Handler) health(c *gin.Context) {
	status := h.Svc.Check(c.Request.Context())
	code := http.StatusOK
	if !status.OK {
		code = http.StatusServiceUnavailable
	}
	respond.JSON(c, code, status)
}
