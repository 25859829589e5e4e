package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitalflow/analytics/internal/logger"
)

// Logger middleware for structured request logging.
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		)
	}
}
