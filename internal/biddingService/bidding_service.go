package bidding

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
	"context"
	"errors"
	"fmt"
	"time"
)

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo  repository.AuctionDB
	users repository.UserDB
	now   func() time.Time
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, users repository.UserDB) *BiddingService {
	return &BiddingService{
		repo:  repo,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// PlaceBid validates and records a bid on an auction.
// The reserve price is informational and does not act as a floor.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID, amount int64) (models.Bid, error) {
	if err := s.validateBid(ctx, auctionID, bidderID, amount); err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Timestamp: s.now(),
	}

	// the repository repeats the highest-bid comparison atomically with the append
	if err := s.repo.RecordBidIfHigher(ctx, bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for auction %d by user %d: %w", auctionID, bidderID, err)
	}

	utils.Info("bid accepted", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"amount":     amount,
	})
	return bid, nil
}

// validateBid checks the auction exists, the bidder is not the seller and the
// amount beats the current highest bid
func (s *BiddingService) validateBid(ctx context.Context, auctionID, bidderID, amount int64) error {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}
	if auction.SellerID == bidderID {
		return fmt.Errorf("service: %w", auctionerrors.ErrSelfBid)
	}

	highest, err := s.repo.GetHighestBid(ctx, auctionID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return fmt.Errorf("service: failed to check highest bid: %w", err)
	}
	if amount <= highest {
		return fmt.Errorf("service: %w - current highest bid is %d", auctionerrors.ErrBidTooLow, highest)
	}

	return nil
}

// ListBids returns all bids for an auction, highest first, annotated with bidder names
func (s *BiddingService) ListBids(ctx context.Context, auctionID int64) ([]models.BidView, error) {
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %d: %w", auctionID, err)
	}

	names := make(map[int64]models.User)
	views := make([]models.BidView, 0, len(bids))
	for _, b := range bids {
		bidder, ok := names[b.BidderID]
		if !ok {
			bidder, err = s.users.GetUser(ctx, b.BidderID)
			if err != nil {
				if !errors.Is(err, auctionerrors.ErrUserNotFound) {
					return nil, fmt.Errorf("service: failed to get bidder %d: %w", b.BidderID, err)
				}
				utils.Warn("bidder not found", map[string]any{"auction_id": auctionID, "bidder_id": b.BidderID})
			}
			names[b.BidderID] = bidder
		}

		views = append(views, models.BidView{
			BidderID:  b.BidderID,
			Amount:    b.Amount,
			FirstName: bidder.FirstName,
			LastName:  bidder.LastName,
			Timestamp: b.Timestamp,
		})
	}

	return views, nil
}

// GetHighestBid returns the highest bid amount for an auction, or ErrNoBids
func (s *BiddingService) GetHighestBid(ctx context.Context, auctionID int64) (int64, error) {
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return 0, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}

	highest, err := s.repo.GetHighestBid(ctx, auctionID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to get highest bid for auction %d: %w", auctionID, err)
	}
	return highest, nil
}
