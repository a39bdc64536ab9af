package listing

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"errors"
	"fmt"
)

// SortKey is a client-facing listing order
type SortKey string

const (
	AlphabeticalAsc  SortKey = "ALPHABETICAL_ASC"
	AlphabeticalDesc SortKey = "ALPHABETICAL_DESC"
	BidsAsc          SortKey = "BIDS_ASC"
	BidsDesc         SortKey = "BIDS_DESC"
	ClosingSoon      SortKey = "CLOSING_SOON"
	ClosingLast      SortKey = "CLOSING_LAST"
	ReserveAsc       SortKey = "RESERVE_ASC"
	ReserveDesc      SortKey = "RESERVE_DESC"
)

// sortOrders is the closed set of accepted sort keys.
// BIDS_DESC resolves to ascending bid count; existing clients depend on it.
var sortOrders = map[SortKey]models.SortOrder{
	AlphabeticalAsc:  {Field: models.SortByTitle},
	AlphabeticalDesc: {Field: models.SortByTitle, Descending: true},
	BidsAsc:          {Field: models.SortByBids},
	BidsDesc:         {Field: models.SortByBids},
	ClosingSoon:      {Field: models.SortByEndDate},
	ClosingLast:      {Field: models.SortByEndDate, Descending: true},
	ReserveAsc:       {Field: models.SortByReserve},
	ReserveDesc:      {Field: models.SortByReserve, Descending: true},
}

// ParseSortKey resolves a client sort key. An empty key means CLOSING_SOON.
func ParseSortKey(key string) (models.SortOrder, error) {
	if key == "" {
		return sortOrders[ClosingSoon], nil
	}
	order, ok := sortOrders[SortKey(key)]
	if !ok {
		return models.SortOrder{}, fmt.Errorf("sort key %q: %w", key, auctionerrors.ErrInvalidSortKey)
	}
	return order, nil
}

// CategoryValidator checks that every requested category exists
type CategoryValidator interface {
	ValidateAll(ctx context.Context, categoryIDs []int64) error
}

// ListingService filters, enriches, orders and paginates auction listings
type ListingService struct {
	repo       repository.AuctionDB
	users      repository.UserDB
	categories CategoryValidator
}

// NewListingService creates a new ListingService instance
func NewListingService(repo repository.AuctionDB, users repository.UserDB, categories CategoryValidator) *ListingService {
	return &ListingService{
		repo:       repo,
		users:      users,
		categories: categories,
	}
}

// ListAuctions returns one page of auctions matching req. Count is the size of
// the whole filtered set, not of the page.
func (s *ListingService) ListAuctions(ctx context.Context, req models.AuctionListRequest) (models.AuctionPage, error) {
	order, err := ParseSortKey(req.SortBy)
	if err != nil {
		return models.AuctionPage{}, fmt.Errorf("service: %w", err)
	}
	if req.StartIndex < 0 || (req.Count != nil && *req.Count < 0) {
		return models.AuctionPage{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidPage)
	}
	if err := s.categories.ValidateAll(ctx, req.CategoryIDs); err != nil {
		return models.AuctionPage{}, err
	}

	base, err := s.repo.ListAuctions(ctx, req.Query, order)
	if err != nil {
		return models.AuctionPage{}, fmt.Errorf("service: failed to list auctions: %w", err)
	}

	filtered, err := s.filter(ctx, base, req)
	if err != nil {
		return models.AuctionPage{}, err
	}

	page := paginate(filtered, req.StartIndex, req.Count)
	overviews, err := s.enrich(ctx, page)
	if err != nil {
		return models.AuctionPage{}, err
	}

	return models.AuctionPage{Auctions: overviews, Count: len(filtered)}, nil
}

func (s *ListingService) filter(ctx context.Context, auctions []models.Auction, req models.AuctionListRequest) ([]models.Auction, error) {
	categories := make(map[int64]struct{}, len(req.CategoryIDs))
	for _, id := range req.CategoryIDs {
		categories[id] = struct{}{}
	}

	kept := make([]models.Auction, 0, len(auctions))
	for _, a := range auctions {
		if len(categories) > 0 {
			if _, ok := categories[a.CategoryID]; !ok {
				continue
			}
		}
		if req.SellerID != nil && a.SellerID != *req.SellerID {
			continue
		}
		if req.BidderID != nil {
			ok, err := s.repo.HasBidFrom(ctx, a.AuctionID, *req.BidderID)
			if err != nil {
				return nil, fmt.Errorf("service: failed to check bidder %d on auction %d: %w", *req.BidderID, a.AuctionID, err)
			}
			if !ok {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept, nil
}

// enrich attaches live bid aggregates and seller names to each auction
func (s *ListingService) enrich(ctx context.Context, auctions []models.Auction) ([]models.AuctionOverview, error) {
	sellers := make(map[int64]models.User)
	overviews := make([]models.AuctionOverview, 0, len(auctions))

	for _, a := range auctions {
		numBids, err := s.repo.GetBidCount(ctx, a.AuctionID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to count bids for auction %d: %w", a.AuctionID, err)
		}

		var highestBid *int64
		highest, err := s.repo.GetHighestBid(ctx, a.AuctionID)
		switch {
		case err == nil:
			highestBid = &highest
		case !errors.Is(err, auctionerrors.ErrNoBids):
			return nil, fmt.Errorf("service: failed to get highest bid for auction %d: %w", a.AuctionID, err)
		}

		seller, ok := sellers[a.SellerID]
		if !ok {
			seller, err = s.users.GetUser(ctx, a.SellerID)
			if err != nil && !errors.Is(err, auctionerrors.ErrUserNotFound) {
				return nil, fmt.Errorf("service: failed to get seller %d: %w", a.SellerID, err)
			}
			sellers[a.SellerID] = seller
		}

		overviews = append(overviews, models.AuctionOverview{
			AuctionID:       a.AuctionID,
			Title:           a.Title,
			CategoryID:      a.CategoryID,
			SellerID:        a.SellerID,
			SellerFirstName: seller.FirstName,
			SellerLastName:  seller.LastName,
			Reserve:         a.Reserve,
			NumBids:         numBids,
			HighestBid:      highestBid,
			EndDate:         a.EndDate,
		})
	}
	return overviews, nil
}

// paginate returns auctions[start : start+count], clamped to the slice.
// A nil count means to the end.
func paginate(auctions []models.Auction, start int, count *int) []models.Auction {
	if start >= len(auctions) {
		return nil
	}
	end := len(auctions)
	if count != nil && *count < end-start {
		end = start + *count
	}
	return auctions[start:end]
}
