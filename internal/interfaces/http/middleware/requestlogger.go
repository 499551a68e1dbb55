package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"clarion/internal/shared/logger"
)

// RequestLogger logs one line per request through the shared slog logger.
func RequestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		if c.Writer.Status() >= 500 {
			log.Errorw("request", fields...)
		} else {
			log.Infow("request", fields...)
		}
	}
}
