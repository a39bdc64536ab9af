package lifecycle

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/images"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const defaultReserve int64 = 1

// CategoryDirectory resolves category identifiers
type CategoryDirectory interface {
	Exists(ctx context.Context, categoryID int64) (bool, error)
}

// LifecycleService enforces the create, update and delete rules for auctions
type LifecycleService struct {
	repo       repository.AuctionDB
	users      repository.UserDB
	categories CategoryDirectory
	images     *images.Store
}

// NewLifecycleService creates a new LifecycleService instance
func NewLifecycleService(repo repository.AuctionDB, users repository.UserDB, categories CategoryDirectory, imageStore *images.Store) *LifecycleService {
	return &LifecycleService{
		repo:       repo,
		users:      users,
		categories: categories,
		images:     imageStore,
	}
}

// CreateAuction lists a new auction for the seller and returns its ID
func (s *LifecycleService) CreateAuction(ctx context.Context, sellerID int64, req models.NewAuction) (int64, error) {
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return 0, err
	}

	taken, err := s.repo.TitleTaken(ctx, req.Title, sellerID, 0)
	if err != nil {
		return 0, fmt.Errorf("service: failed to check title: %w", err)
	}
	if taken {
		return 0, fmt.Errorf("service: %q: %w", req.Title, auctionerrors.ErrDuplicateTitle)
	}

	reserve, ok := parseReserve(req.Reserve)
	if !ok {
		reserve = defaultReserve
	}

	id, err := s.repo.CreateAuction(ctx, models.Auction{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		SellerID:    sellerID,
		EndDate:     req.EndDate.UTC(),
		Reserve:     reserve,
	})
	if err != nil {
		return 0, fmt.Errorf("service: failed to create auction: %w", err)
	}

	utils.Info("auction created", map[string]any{"auction_id": id, "seller_id": sellerID})
	return id, nil
}

// GetAuction returns an auction enriched with its seller's name and bid aggregates
func (s *LifecycleService) GetAuction(ctx context.Context, auctionID int64) (models.AuctionDetails, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.AuctionDetails{}, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}

	seller, err := s.users.GetUser(ctx, auction.SellerID)
	if err != nil && !errors.Is(err, auctionerrors.ErrUserNotFound) {
		return models.AuctionDetails{}, fmt.Errorf("service: failed to get seller %d: %w", auction.SellerID, err)
	}

	numBids, highest, err := bidAggregates(ctx, s.repo, auctionID)
	if err != nil {
		return models.AuctionDetails{}, err
	}

	return models.AuctionDetails{
		AuctionID:       auction.AuctionID,
		Title:           auction.Title,
		Description:     auction.Description,
		CategoryID:      auction.CategoryID,
		SellerID:        auction.SellerID,
		SellerFirstName: seller.FirstName,
		SellerLastName:  seller.LastName,
		Reserve:         auction.Reserve,
		NumBids:         numBids,
		HighestBid:      highest,
		EndDate:         auction.EndDate,
	}, nil
}

// UpdateAuction applies the fields present in patch. Every check runs before the
// single write, and nothing is written once the auction has bids.
func (s *LifecycleService) UpdateAuction(ctx context.Context, auctionID, callerID int64, patch models.AuctionPatch) error {
	auction, err := s.loadOwned(ctx, auctionID, callerID)
	if err != nil {
		return err
	}

	numBids, err := s.repo.GetBidCount(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to count bids: %w", err)
	}
	if numBids > 0 {
		return fmt.Errorf("service: auction %d: %w", auctionID, auctionerrors.ErrChangeWithBids)
	}

	if patch.Title != nil {
		taken, err := s.repo.TitleTaken(ctx, *patch.Title, auction.SellerID, auctionID)
		if err != nil {
			return fmt.Errorf("service: failed to check title: %w", err)
		}
		if taken {
			return fmt.Errorf("service: %q: %w", *patch.Title, auctionerrors.ErrDuplicateTitle)
		}
		auction.Title = *patch.Title
	}
	if patch.CategoryID != nil {
		if err := s.requireCategory(ctx, *patch.CategoryID); err != nil {
			return err
		}
		auction.CategoryID = *patch.CategoryID
	}
	if patch.Description != nil {
		auction.Description = *patch.Description
	}
	if patch.EndDate != nil {
		auction.EndDate = patch.EndDate.UTC()
	}
	if patch.Reserve != nil {
		reserve, ok := parseReserve(*patch.Reserve)
		if !ok {
			return fmt.Errorf("service: reserve %q: %w", *patch.Reserve, auctionerrors.ErrInvalidReserve)
		}
		auction.Reserve = reserve
	}

	if err := s.repo.UpdateAuction(ctx, auction); err != nil {
		return fmt.Errorf("service: failed to update auction %d: %w", auctionID, err)
	}

	utils.Info("auction updated", map[string]any{"auction_id": auctionID, "seller_id": callerID})
	return nil
}

// DeleteAuction removes an auction owned by the caller that has no bids
func (s *LifecycleService) DeleteAuction(ctx context.Context, auctionID, callerID int64) error {
	if _, err := s.loadOwned(ctx, auctionID, callerID); err != nil {
		return err
	}

	numBids, err := s.repo.GetBidCount(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to count bids: %w", err)
	}
	if numBids > 0 {
		return fmt.Errorf("service: auction %d: %w", auctionID, auctionerrors.ErrDeleteWithBids)
	}

	if err := s.repo.DeleteAuction(ctx, auctionID); err != nil {
		return fmt.Errorf("service: failed to delete auction %d: %w", auctionID, err)
	}

	utils.Info("auction deleted", map[string]any{"auction_id": auctionID, "seller_id": callerID})
	return nil
}

// loadOwned fetches an auction and checks the caller is its seller
func (s *LifecycleService) loadOwned(ctx context.Context, auctionID, callerID int64) (models.Auction, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}
	if auction.SellerID != callerID {
		return models.Auction{}, fmt.Errorf("service: auction %d, user %d: %w", auctionID, callerID, auctionerrors.ErrNotSeller)
	}
	return auction, nil
}

func (s *LifecycleService) requireCategory(ctx context.Context, categoryID int64) error {
	ok, err := s.categories.Exists(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("service: failed to resolve category: %w", err)
	}
	if !ok {
		return fmt.Errorf("service: category %d: %w", categoryID, auctionerrors.ErrUnknownCategory)
	}
	return nil
}

// bidAggregates returns the bid count and the highest bid (nil when there are no bids)
func bidAggregates(ctx context.Context, repo repository.AuctionDB, auctionID int64) (int, *int64, error) {
	numBids, err := repo.GetBidCount(ctx, auctionID)
	if err != nil {
		return 0, nil, fmt.Errorf("service: failed to count bids for auction %d: %w", auctionID, err)
	}

	highest, err := repo.GetHighestBid(ctx, auctionID)
	if errors.Is(err, auctionerrors.ErrNoBids) {
		return numBids, nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("service: failed to get highest bid for auction %d: %w", auctionID, err)
	}
	return numBids, &highest, nil
}

var leadingInteger = regexp.MustCompile(`^[+-]?[0-9]+`)

// parseReserve reads the leading integer of raw in whole currency units, so
// "12.9" and "12abc" are 12 and "1e3" is 1. Input without a leading integer,
// or one outside int64, is rejected.
func parseReserve(raw string) (int64, bool) {
	digits := leadingInteger.FindString(strings.TrimSpace(raw))
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
