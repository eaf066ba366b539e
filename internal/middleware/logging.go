package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/logger"
)

// RequestID propagates or assigns an X-Request-Id and attaches it to the
// request context logger.
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(constants.RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(constants.RequestIDHeader, reqID)

		if log != nil {
			ctx := log.WithRequestID(c.Request.Context(), reqID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// Logging emits request.start and request.complete entries.
func Logging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log == nil {
			c.Next()
			return
		}

		ctx := log.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		log.Info(ctx, "request.start")

		c.Next()

		fields := map[string]any{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}
		log.Info(log.WithFields(ctx, fields), "request.complete")
	}
}
