package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// UserContextKey is the gin context key holding the authenticated models.User
const UserContextKey = "user"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// specificMessages gives the client-facing text for errors whose message matters
var specificMessages = []struct {
	err     error
	message string
}{
	{auctionerrors.ErrSelfBid, "cannot bid on own auction"},
	{auctionerrors.ErrBidTooLow, "bid must exceed current highest"},
	{auctionerrors.ErrChangeWithBids, "cannot change an auction with bids"},
	{auctionerrors.ErrDeleteWithBids, "cannot delete an auction with bids"},
	{auctionerrors.ErrNotSeller, "only the seller may modify this auction"},
	{auctionerrors.ErrImageNotFound, "auction has no image"},
	{auctionerrors.ErrInvalidCategories, "one or more invalid category IDs"},
	{auctionerrors.ErrInvalidSortKey, "sortBy should be equal to one of the allowed values"},
	{auctionerrors.ErrInvalidReserve, "reserve must be a number"},
	{auctionerrors.ErrInvalidImageType, "image must be jpeg, png or gif"},
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	status := statusFor(err)
	for _, m := range specificMessages {
		if errors.Is(err, m.err) {
			return status, m.message
		}
	}

	switch {
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return status, "authentication required"
	case errors.Is(err, auctionerrors.ErrNotFound):
		return status, "auction not found"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return status, "forbidden"
	case errors.Is(err, auctionerrors.ErrConflict):
		return status, "auction title must be unique"
	case errors.Is(err, auctionerrors.ErrInvalidCategory):
		return status, "categoryId does not match any existing category"
	case errors.Is(err, auctionerrors.ErrBadRequest):
		return status, "bad request"
	default:
		return status, "internal server error"
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auctionerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auctionerrors.ErrForbidden), errors.Is(err, auctionerrors.ErrConflict):
		return http.StatusForbidden
	case errors.Is(err, auctionerrors.ErrInvalidCategory), errors.Is(err, auctionerrors.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError sends the mapped error response and logs it
func HandleServiceError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["handler"] = handlerName
	ctx["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", ctx)
	} else {
		utils.Warn(handlerName+": request rejected", ctx)
	}
}

// ParseAuctionID reads the :id path parameter as a positive integer
func ParseAuctionID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("auction id %q: %w", c.Param("id"), auctionerrors.ErrBadRequest)
	}
	return id, nil
}

// CurrentUser returns the authenticated user set by the auth middleware
func CurrentUser(c *gin.Context) (models.User, error) {
	v, ok := c.Get(UserContextKey)
	if !ok {
		return models.User{}, auctionerrors.ErrUnauthorized
	}
	user, ok := v.(models.User)
	if !ok {
		return models.User{}, auctionerrors.ErrUnauthorized
	}
	return user, nil
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
