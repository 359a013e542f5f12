package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jhawaritvik/CreatorPulse/internal/logger"
)

// userIDKey is the gin context key carrying the authenticated user id.
const userIDKey = "user_id"

// requireUser extracts the caller identity from the X-User-ID header.
// Authentication proper is terminated upstream; the service trusts the
// header.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing X-User-ID header",
			})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// requestLogger logs each request with latency and status.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		)
	}
}
