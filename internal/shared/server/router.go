package server

import (
	"github.com/gin-gonic/gin"

	"aihr-backend/internal/candidates"
	"aihr-backend/internal/health"
	"aihr-backend/internal/interviews"
	"aihr-backend/internal/rooms"
	"aihr-backend/internal/shared/config"
	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/server/middleware"
	"aihr-backend/internal/speech"
)

// RouterDeps carries the handlers mounted on the engine. Nil handlers are skipped.
type RouterDeps struct {
	Config           config.Config
	HealthHandler    *health.Handler
	CandidateHandler *candidates.Handler
	InterviewHandler *interviews.Handler
	SpeechHandler    *speech.Handler
	RoomHandler      *rooms.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	root := r.Group("")
	root.GET("/metrics", metrics.Handler())
	if deps.HealthHandler != nil {
		deps.HealthHandler.RegisterRoutes(root)
	}
	if deps.CandidateHandler != nil {
		deps.CandidateHandler.RegisterRoutes(root)
	}
	if deps.InterviewHandler != nil {
		deps.InterviewHandler.RegisterRoutes(root)
	}
	if deps.SpeechHandler != nil {
		deps.SpeechHandler.RegisterRoutes(root)
	}
	if deps.RoomHandler != nil {
		deps.RoomHandler.RegisterRoutes(root)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
