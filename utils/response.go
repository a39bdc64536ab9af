package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the current request ID
const RequestIDKey = "request_id"

// JSONResponse writes the {status, message, data} envelope every endpoint returns
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError aborts with the error envelope. Client errors carry err's text;
// server errors only carry the request ID, so storage details stay in the logs.
func JSONError(c *gin.Context, status int, err error, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
	}
	if status < http.StatusInternalServerError {
		body["error"] = err.Error()
	}
	if requestID := c.GetString(RequestIDKey); requestID != "" {
		body[RequestIDKey] = requestID
	}
	c.AbortWithStatusJSON(status, body)
}
