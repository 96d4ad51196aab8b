package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RequestLogger logs one structured entry per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now() // Request start time
		c.Next()            // Process request
		logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,           // Request method
			"path":     c.Request.URL.Path,         // Request path
			"status":   c.Writer.Status(),          // Response status
			"latency":  time.Since(start).String(), // Time spent
			"clientIP": c.ClientIP(),               // Caller address
		}).Info("HTTP request")
	}
}
