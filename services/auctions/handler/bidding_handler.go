package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/auctions/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, auctionID, bidderID, amount int64) (model.Bid, error)
	ListBids(ctx context.Context, auctionID int64) ([]model.BidView, error)
	GetHighestBid(ctx context.Context, auctionID int64) (int64, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /auctions/:id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	auctionID, err := helpers.ParseAuctionID(c)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, nil)
		return
	}

	user, err := helpers.CurrentUser(c)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, nil)
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), auctionID, user.UserID, *req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  user.UserID,
			"amount":     *req.Amount,
		})
		return
	}

	resp := helpers.BidResponse{
		AuctionID: bid.AuctionID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		Timestamp: bid.Timestamp.UTC().Format(time.RFC3339),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"auction_id": bid.AuctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
	})
}

// GetBidsHandler handles GET /auctions/:id/bids
func (h *BiddingHandler) GetBidsHandler(c *gin.Context) {
	auctionID, err := helpers.ParseAuctionID(c)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidsHandler", err, nil)
		return
	}

	bids, err := h.service.ListBids(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	if bids == nil {
		bids = []model.BidView{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetHighestBidHandler handles GET /auctions/:id/bids/highest
func (h *BiddingHandler) GetHighestBidHandler(c *gin.Context) {
	auctionID, err := helpers.ParseAuctionID(c)
	if err != nil {
		helpers.HandleServiceError(c, "GetHighestBidHandler", err, nil)
		return
	}

	amount, err := h.service.GetHighestBid(c.Request.Context(), auctionID)
	if err != nil {
		// an auction without bids has no highest bid -> 404
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, fmt.Errorf("no bids found: %w", err), "no bids found")
			utils.Info("GetHighestBidHandler: no bids found", map[string]any{"auction_id": auctionID})
			return
		}
		helpers.HandleServiceError(c, "GetHighestBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.HighestBidResponse{AuctionID: auctionID, Amount: amount}, "highest bid retrieved successfully")
	helpers.LogSuccess("GetHighestBidHandler", "highest bid retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"amount":     amount,
	})
}
