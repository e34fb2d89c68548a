package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"aihr-backend/internal/shared/server/respond"
	"aihr-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 error envelope. When the handler
// already streamed part of a body (audio, for instance) the connection is
// only aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("request.panic", map[string]any{
				"request_id":   RequestIDFromContext(c),
				"route":        c.FullPath(),
				"method":       c.Request.Method,
				"interview_id": c.GetString(InterviewIDKey),
				"candidate_id": c.GetString(CandidateIDKey),
				"panic":        rec,
				"stack":        string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
			c.Abort()
		}()
		c.Next()
	}
}
