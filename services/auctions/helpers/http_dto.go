package helpers

import (
	"fmt"
	"strconv"
	"time"
)

// Request/Response DTOs
type CreateAuctionRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	CategoryID  int64     `json:"category_id" binding:"required,gt=0"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	Reserve     any       `json:"reserve"`
}

// UpdateAuctionRequest is a partial update; absent fields stay unchanged
type UpdateAuctionRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1"`
	Description *string    `json:"description"`
	CategoryID  *int64     `json:"category_id"`
	EndDate     *time.Time `json:"end_date"`
	Reserve     any        `json:"reserve"`
}

type PlaceBidRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

type ListAuctionsQuery struct {
	StartIndex  int     `form:"startIndex" binding:"omitempty,min=0"`
	Count       *int    `form:"count" binding:"omitempty,min=0"`
	Q           string  `form:"q"`
	CategoryIDs []int64 `form:"categoryIds"`
	SellerID    *int64  `form:"sellerId"`
	BidderID    *int64  `form:"bidderId"`
	SortBy      string  `form:"sortBy"`
}

type CreateAuctionResponse struct {
	AuctionID int64 `json:"auction_id"`
}

type BidResponse struct {
	AuctionID int64  `json:"auction_id"`
	BidderID  int64  `json:"bidder_id"`
	Amount    int64  `json:"amount"`
	Timestamp string `json:"timestamp"`
}

// HighestBidResponse is the current highest bid on an auction
type HighestBidResponse struct {
	AuctionID int64 `json:"auction_id"`
	Amount    int64 `json:"amount"`
}

// RawReserve renders a JSON reserve value (number or string) as text for
// the service to parse. A missing value yields "".
func RawReserve(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case float64:
		return strconv.FormatFloat(r, 'f', -1, 64)
	default:
		return fmt.Sprint(r)
	}
}
