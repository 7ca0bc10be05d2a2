// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"iot-hub/internal/utils"
)

// Liveness and scrape endpoints poll constantly; logging them drowns out
// real traffic.
var quietPaths = map[string]bool{
	"/live":    true,
	"/ready":   true,
	"/metrics": true,
}

// LoggingMiddleware logs each API request with its outcome and latency
func LoggingMiddleware(logger *utils.ServiceLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		start := time.Now()
		c.Next()

		if quietPaths[path] {
			return
		}

		logger.LogAPIRequest(
			c.Request.Method,
			path,
			c.Request.UserAgent(),
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
