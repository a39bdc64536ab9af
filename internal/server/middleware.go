package server

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/repository"
	"auction-marketplace/services/auctions/helpers"
	"auction-marketplace/utils"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	requestIDHeader = "X-Request-ID"
	authHeader      = "X-Authorization"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	requestID := utils.RequestID(c.GetHeader(requestIDHeader))
	c.Set(utils.RequestIDKey, requestID)
	c.Header(requestIDHeader, requestID)

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"request_id": requestID,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
	})
}

// AuthRequired resolves the X-Authorization token to a user and stores it on the context.
// Requests without a valid token are rejected with 401.
func AuthRequired(users repository.UserDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(authHeader)
		if token == "" {
			helpers.HandleServiceError(c, "AuthRequired", fmt.Errorf("missing token: %w", auctionerrors.ErrUnauthorized), nil)
			return
		}

		user, err := users.GetUserByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auctionerrors.ErrUserNotFound) {
				err = fmt.Errorf("unknown token: %w", auctionerrors.ErrUnauthorized)
			}
			helpers.HandleServiceError(c, "AuthRequired", err, nil)
			return
		}

		c.Set(helpers.UserContextKey, user)
		c.Next()
	}
}
