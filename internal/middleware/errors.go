package middleware

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"bank_ledger/internal/ledger" // Ledger error types

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ErrorHandler turns the last error a handler attached with c.Error into a JSON response
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Run the handler first
		if len(c.Errors) == 0 || c.Writer.Written() {
			return // Nothing to report or response already sent
		}
		err := c.Errors.Last().Err
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			logrus.WithFields(logrus.Fields{
				"method": c.Request.Method,   // Request method
				"path":   c.Request.URL.Path, // Request path
				"error":  err.Error(),        // Error message
			}).Error("Request failed") // Log server-side failure
		}
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// StatusFor maps ledger errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case ledger.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Recovery converts panics into the same JSON 500 shape as returned errors
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path, // Request path
			"panic": recovered,          // Recovered value
		}).Error("Handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
