package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// RequestLogger emits one structured log line per request and tags the
// request with an id for correlation
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		event := pkglogger.GetLogger().Info()
		if c.Writer.Status() >= 500 {
			event = pkglogger.GetLogger().Error()
		} else if c.Writer.Status() >= 400 {
			event = pkglogger.GetLogger().Warn()
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
