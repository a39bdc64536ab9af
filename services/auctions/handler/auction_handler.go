package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/auctions/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 10 << 20

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, sellerID int64, req model.NewAuction) (int64, error)
	GetAuction(ctx context.Context, auctionID int64) (model.AuctionDetails, error)
	UpdateAuction(ctx context.Context, auctionID, callerID int64, patch model.AuctionPatch) error
	DeleteAuction(ctx context.Context, auctionID, callerID int64) error
	SetAuctionImage(ctx context.Context, auctionID, callerID int64, contentType string, data []byte) (bool, error)
	GetAuctionImage(ctx context.Context, auctionID int64) ([]byte, string, error)
}

type ListingServiceInterface interface {
	ListAuctions(ctx context.Context, req model.AuctionListRequest) (model.AuctionPage, error)
}

type CategoryServiceInterface interface {
	List(ctx context.Context) ([]model.Category, error)
}

type AuctionHandler struct {
	auctions   AuctionServiceInterface
	listing    ListingServiceInterface
	categories CategoryServiceInterface
	now        func() time.Time
}

func NewAuctionHandler(auctions AuctionServiceInterface, listing ListingServiceInterface, categories CategoryServiceInterface) *AuctionHandler {
	return &AuctionHandler{
		auctions:   auctions,
		listing:    listing,
		categories: categories,
		now:        time.Now,
	}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	user, err := helpers.CurrentUser(c)
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, nil)
		return
	}

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	if !req.EndDate.After(h.now()) {
		helpers.HandleBindError(c, "CreateAuctionHandler", errors.New("end_date must be in the future"))
		return
	}

	id, err := h.auctions.CreateAuction(c.Request.Context(), user.UserID, model.NewAuction{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		EndDate:     req.EndDate,
		Reserve:     helpers.RawReserve(req.Reserve),
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{
			"seller_id": user.UserID,
			"title":     req.Title,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.CreateAuctionResponse{AuctionID: id}, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": id,
		"seller_id":  user.UserID,
	})
}

// GetAuctionHandler handles GET /auctions/:id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID, err := helpers.ParseAuctionID(c)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, nil)
		return
	}

	details, err := h.auctions.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, details, "auction retrieved successfully")
}

// UpdateAuctionHandler handles PATCH /auctions/:id
func (h *AuctionHandler) UpdateAuctionHandler(c *gin.Context) {
	auctionID, err := helpers.ParseAuctionID(c)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateAuctionHandler", err, nil)
		return
	}

	user, err := helpers.CurrentUser(c)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateAuctionHandler", err, nil)
		return
	}

	var req helpers.UpdateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}

	patch := model.AuctionPatch{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		EndDate:     req.EndDate,
	}
	if req.Reserve != nil {
		raw := helpers.RawReserve(req.Reserve)
		patch.Reserve = &raw
	}

	if err := h.auctions.UpdateAuction(c.Request.Context(), auctionID, user.UserID, patch); err != nil {
		helpers.HandleServiceError(c, "UpdateAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"caller_id":  user.UserID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction updated successfully")
	helpers.LogSuccess("UpdateAuctionHandler", "auction updated successfully", map[string]any{"auction_id": auctionID})
}

// DeleteAuctionHandler handles DELETE /auctions/:id
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID, err := helpers.ParseAuctionID(c)
	if err != nil {
		helpers.HandleServiceError(c, "DeleteAuctionHandler", err, nil)
		return
	}

	user, err := helpers.CurrentUser(c)
	if err != nil {
		helpers.HandleServiceError(c, "DeleteAuctionHandler", err, nil)
		return
	}

	if err := h.auctions.DeleteAuction(c.Request.Context(), auctionID, user.UserID); err != nil {
		helpers.HandleServiceError(c, "DeleteAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"caller_id":  user.UserID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction deleted successfully")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted successfully", map[string]any{"auction_id": auctionID})
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	var q helpers.ListAuctionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		helpers.HandleBindError(c, "ListAuctionsHandler", err)
		return
	}

	page, err := h.listing.ListAuctions(c.Request.Context(), model.AuctionListRequest{
		StartIndex:  q.StartIndex,
		Count:       q.Count,
		Query:       q.Q,
		CategoryIDs: q.CategoryIDs,
		SellerID:    q.SellerID,
		BidderID:    q.BidderID,
		SortBy:      q.SortBy,
	})
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, map[string]any{"sort_by": q.SortBy})
		return
	}

	if page.Auctions == nil {
		page.Auctions = []model.AuctionOverview{}
	}

	utils.JSONResponse(c, http.StatusOK, page, "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"count":     page.Count,
		"page_size": len(page.Auctions),
	})
}

// ListCategoriesHandler handles GET /auctions/categories
func (h *AuctionHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ListCategoriesHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
}

// PutImageHandler handles PUT /auctions/:id/image
func (h *AuctionHandler) PutImageHandler(c *gin.Context) {
	auctionID, err := helpers.ParseAuctionID(c)
	if err != nil {
		helpers.HandleServiceError(c, "PutImageHandler", err, nil)
		return
	}

	user, err := helpers.CurrentUser(c)
	if err != nil {
		helpers.HandleServiceError(c, "PutImageHandler", err, nil)
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImageBytes+1))
	if err != nil || len(data) == 0 || len(data) > maxImageBytes {
		helpers.HandleBindError(c, "PutImageHandler", fmt.Errorf("image body must be 1 to %d bytes", maxImageBytes))
		return
	}

	created, err := h.auctions.SetAuctionImage(c.Request.Context(), auctionID, user.UserID, c.ContentType(), data)
	if err != nil {
		helpers.HandleServiceError(c, "PutImageHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.JSONResponse(c, status, nil, "image stored successfully")
	helpers.LogSuccess("PutImageHandler", "image stored successfully", map[string]any{
		"auction_id": auctionID,
		"created":    created,
	})
}

// GetImageHandler handles GET /auctions/:id/image
func (h *AuctionHandler) GetImageHandler(c *gin.Context) {
	auctionID, err := helpers.ParseAuctionID(c)
	if err != nil {
		helpers.HandleServiceError(c, "GetImageHandler", err, nil)
		return
	}

	data, contentType, err := h.auctions.GetAuctionImage(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrImageNotFound) {
			utils.Info("GetImageHandler: no image for auction", map[string]any{"auction_id": auctionID})
		}
		helpers.HandleServiceError(c, "GetImageHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	c.Data(http.StatusOK, contentType, data)
}
