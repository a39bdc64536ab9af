package repository

import (
	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// AuctionDB defines the auction and bid storage interface for the marketplace
type AuctionDB interface {
	GetAuction(ctx context.Context, auctionID int64) (model.Auction, error)
	CreateAuction(ctx context.Context, auction model.Auction) (int64, error)
	UpdateAuction(ctx context.Context, auction model.Auction) error
	DeleteAuction(ctx context.Context, auctionID int64) error
	SetAuctionImage(ctx context.Context, auctionID int64, filename string) error
	TitleTaken(ctx context.Context, title string, sellerID, excludeAuctionID int64) (bool, error)
	ListAuctions(ctx context.Context, pattern string, order model.SortOrder) ([]model.Auction, error)

	GetHighestBid(ctx context.Context, auctionID int64) (int64, error)
	GetBidCount(ctx context.Context, auctionID int64) (int, error)
	HasBidFrom(ctx context.Context, auctionID, bidderID int64) (bool, error)
	GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error)
	RecordBidIfHigher(ctx context.Context, bid model.Bid) error
}

// CategoryDB defines read access to auction categories
type CategoryDB interface {
	GetCategory(ctx context.Context, categoryID int64) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// UserDB defines read access to registered users
type UserDB interface {
	GetUser(ctx context.Context, userID int64) (model.User, error)
	GetUserByToken(ctx context.Context, token string) (model.User, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB, CategoryDB and UserDB
type MemoryRepo struct {
	mu         sync.RWMutex
	nextID     int64
	auctions   map[int64]model.Auction // key: auctionID -> value: auction
	bids       map[int64][]model.Bid   // key: auctionID -> value: bids in acceptance order
	categories map[int64]model.Category
	users      map[int64]model.User
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:   make(map[int64]model.Auction),
		bids:       make(map[int64][]model.Bid),
		categories: make(map[int64]model.Category),
		users:      make(map[int64]model.User),
	}
}

// GetAuction returns the auction with the given ID
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID int64) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// CreateAuction stores a new auction and returns its assigned ID
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTakenLocked(auction.Title, auction.SellerID, 0) {
		return 0, fmt.Errorf("create auction %q: %w", auction.Title, auctionerrors.ErrDuplicateTitle)
	}

	r.nextID++
	auction.AuctionID = r.nextID
	r.auctions[auction.AuctionID] = auction
	return auction.AuctionID, nil
}

// UpdateAuction replaces a stored auction. It refuses to write once the auction has bids.
func (r *MemoryRepo) UpdateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.auctions[auction.AuctionID]
	if !ok {
		return fmt.Errorf("update auction %d: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if len(r.bids[auction.AuctionID]) > 0 {
		return fmt.Errorf("update auction %d: %w", auction.AuctionID, auctionerrors.ErrChangeWithBids)
	}
	if r.titleTakenLocked(auction.Title, auction.SellerID, auction.AuctionID) {
		return fmt.Errorf("update auction %d: %w", auction.AuctionID, auctionerrors.ErrDuplicateTitle)
	}

	auction.ImageFilename = existing.ImageFilename
	r.auctions[auction.AuctionID] = auction
	return nil
}

// DeleteAuction removes an auction that has no bids
func (r *MemoryRepo) DeleteAuction(_ context.Context, auctionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return fmt.Errorf("delete auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if len(r.bids[auctionID]) > 0 {
		return fmt.Errorf("delete auction %d: %w", auctionID, auctionerrors.ErrDeleteWithBids)
	}

	delete(r.auctions, auctionID)
	delete(r.bids, auctionID)
	return nil
}

// SetAuctionImage records the stored image filename for an auction
func (r *MemoryRepo) SetAuctionImage(_ context.Context, auctionID int64, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return fmt.Errorf("set image for auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	a.ImageFilename = filename
	r.auctions[auctionID] = a
	return nil
}

// TitleTaken reports whether the seller already has another auction with this title
func (r *MemoryRepo) TitleTaken(_ context.Context, title string, sellerID, excludeAuctionID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.titleTakenLocked(title, sellerID, excludeAuctionID), nil
}

func (r *MemoryRepo) titleTakenLocked(title string, sellerID, excludeAuctionID int64) bool {
	for id, a := range r.auctions {
		if id != excludeAuctionID && a.SellerID == sellerID && a.Title == title {
			return true
		}
	}
	return false
}

// ListAuctions returns auctions whose title or description contains pattern
// (case-insensitive), ordered by the given sort order. Ties keep ID order.
func (r *MemoryRepo) ListAuctions(_ context.Context, pattern string, order model.SortOrder) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(pattern)
	auctions := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		if strings.Contains(strings.ToLower(a.Title), needle) || strings.Contains(strings.ToLower(a.Description), needle) {
			auctions = append(auctions, a)
		}
	}

	sort.Slice(auctions, func(i, j int) bool {
		return auctions[i].AuctionID < auctions[j].AuctionID
	})
	sort.SliceStable(auctions, func(i, j int) bool {
		c := r.compareLocked(auctions[i], auctions[j], order.Field)
		if order.Descending {
			return c > 0
		}
		return c < 0
	})
	return auctions, nil
}

func (r *MemoryRepo) compareLocked(a, b model.Auction, field model.SortField) int {
	switch field {
	case model.SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case model.SortByBids:
		return len(r.bids[a.AuctionID]) - len(r.bids[b.AuctionID])
	case model.SortByReserve:
		return cmpInt64(a.Reserve, b.Reserve)
	default:
		return a.EndDate.Compare(b.EndDate)
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// GetHighestBid returns the highest accepted amount for an auction
func (r *MemoryRepo) GetHighestBid(_ context.Context, auctionID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	highest, ok := r.highestLocked(auctionID)
	if !ok {
		return 0, fmt.Errorf("get highest bid for auction %d: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return highest, nil
}

func (r *MemoryRepo) highestLocked(auctionID int64) (int64, bool) {
	bids := r.bids[auctionID]
	if len(bids) == 0 {
		return 0, false
	}
	highest := bids[0].Amount
	for _, b := range bids[1:] {
		if b.Amount > highest {
			highest = b.Amount
		}
	}
	return highest, true
}

// GetBidCount returns the number of bids placed on an auction
func (r *MemoryRepo) GetBidCount(_ context.Context, auctionID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bids[auctionID]), nil
}

// HasBidFrom reports whether the bidder has placed at least one bid on the auction
func (r *MemoryRepo) HasBidFrom(_ context.Context, auctionID, bidderID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bids[auctionID] {
		if b.BidderID == bidderID {
			return true, nil
		}
	}
	return false, nil
}

// GetBidsByAuction returns all bids for an auction, highest amount first
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID int64) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := append([]model.Bid(nil), r.bids[auctionID]...)
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Amount > bids[j].Amount
	})
	return bids, nil
}

// RecordBidIfHigher appends the bid only if it strictly exceeds the current highest
// bid. The comparison and the append happen under one lock.
func (r *MemoryRepo) RecordBidIfHigher(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	highest, _ := r.highestLocked(bid.AuctionID)
	if bid.Amount <= highest {
		return fmt.Errorf("record bid for auction %d: %w - current highest bid is %d", bid.AuctionID, auctionerrors.ErrBidTooLow, highest)
	}

	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)
	return nil
}

// GetCategory returns the category with the given ID
func (r *MemoryRepo) GetCategory(_ context.Context, categoryID int64) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[categoryID]
	if !ok {
		return model.Category{}, fmt.Errorf("get category %d: %w", categoryID, auctionerrors.ErrCategoryNotFound)
	}
	return c, nil
}

// ListCategories returns all categories ordered by ID
func (r *MemoryRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].CategoryID < categories[j].CategoryID
	})
	return categories, nil
}

// GetUser returns the user with the given ID
func (r *MemoryRepo) GetUser(_ context.Context, userID int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %d: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return u, nil
}

// GetUserByToken returns the user holding the given auth token
func (r *MemoryRepo) GetUserByToken(_ context.Context, token string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if token != "" {
		for _, u := range r.users {
			if u.AuthToken == token {
				return u, nil
			}
		}
	}
	return model.User{}, fmt.Errorf("get user by token: %w", auctionerrors.ErrUserNotFound)
}

// AddCategory adds a category to the repository. Categories are owned externally;
// this is used for seeding and tests.
func (r *MemoryRepo) AddCategory(category model.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.CategoryID] = category
}

// AddUser adds a user to the repository. Used for seeding and tests.
func (r *MemoryRepo) AddUser(user model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
}
