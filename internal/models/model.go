package models

import "time"

// User represents a registered marketplace participant
type User struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	AuthToken string `json:"-"`
}

// Category groups auctions; categories are read-only reference data
type Category struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

// Auction represents a seller's listing
type Auction struct {
	AuctionID     int64     `json:"auction_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CategoryID    int64     `json:"category_id"`
	SellerID      int64     `json:"seller_id"`
	EndDate       time.Time `json:"end_date"`
	Reserve       int64     `json:"reserve"`
	ImageFilename string    `json:"-"`
}

// Bid represents an accepted offer against an auction
type Bid struct {
	AuctionID int64     `json:"auction_id"`
	BidderID  int64     `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAuction holds the fields a seller submits when listing an item.
// Reserve is the raw client value; it is parsed by the lifecycle service.
type NewAuction struct {
	Title       string
	Description string
	CategoryID  int64
	EndDate     time.Time
	Reserve     string
}

// AuctionPatch is a partial update. Nil fields are left unchanged.
type AuctionPatch struct {
	Title       *string
	Description *string
	CategoryID  *int64
	EndDate     *time.Time
	Reserve     *string
}

// AuctionDetails is the enriched single-auction view
type AuctionDetails struct {
	AuctionID       int64     `json:"auction_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CategoryID      int64     `json:"category_id"`
	SellerID        int64     `json:"seller_id"`
	SellerFirstName string    `json:"seller_first_name"`
	SellerLastName  string    `json:"seller_last_name"`
	Reserve         int64     `json:"reserve"`
	NumBids         int       `json:"num_bids"`
	HighestBid      *int64    `json:"highest_bid"`
	EndDate         time.Time `json:"end_date"`
}

// AuctionOverview is a single row of a listing result
type AuctionOverview struct {
	AuctionID       int64     `json:"auction_id"`
	Title           string    `json:"title"`
	CategoryID      int64     `json:"category_id"`
	SellerID        int64     `json:"seller_id"`
	SellerFirstName string    `json:"seller_first_name"`
	SellerLastName  string    `json:"seller_last_name"`
	Reserve         int64     `json:"reserve"`
	NumBids         int       `json:"num_bids"`
	HighestBid      *int64    `json:"highest_bid"`
	EndDate         time.Time `json:"end_date"`
}

// AuctionPage is one page of a listing plus the total filtered count
type AuctionPage struct {
	Auctions []AuctionOverview `json:"auctions"`
	Count    int               `json:"count"`
}

// AuctionListRequest carries the listing query parameters
type AuctionListRequest struct {
	StartIndex  int
	Count       *int
	Query       string
	CategoryIDs []int64
	SellerID    *int64
	BidderID    *int64
	SortBy      string
}

// BidView is a bid annotated with the bidder's display name
type BidView struct {
	BidderID  int64     `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Timestamp time.Time `json:"timestamp"`
}
