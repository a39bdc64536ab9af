package lifecycle

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/images"
	"auction-marketplace/utils"
	"context"
	"fmt"
)

// SetAuctionImage stores the hero image for an auction owned by the caller.
// It reports whether the image is new (true) or replaced an earlier one (false).
// The new file is written and recorded before an older file is removed.
func (s *LifecycleService) SetAuctionImage(ctx context.Context, auctionID, callerID int64, contentType string, data []byte) (bool, error) {
	auction, err := s.loadOwned(ctx, auctionID, callerID)
	if err != nil {
		return false, err
	}
	if _, err := images.Extension(contentType); err != nil {
		return false, fmt.Errorf("service: %w", err)
	}

	filename, err := s.images.Put(auctionID, contentType, data)
	if err != nil {
		return false, fmt.Errorf("service: failed to store image: %w", err)
	}

	if err := s.repo.SetAuctionImage(ctx, auctionID, filename); err != nil {
		return false, fmt.Errorf("service: failed to record image for auction %d: %w", auctionID, err)
	}

	removed, err := s.images.RemoveStale(auctionID, filename)
	if err != nil {
		utils.Warn("failed to remove previous auction image", map[string]any{"auction_id": auctionID, "error": err.Error()})
	}
	replaced := auction.ImageFilename != "" || removed

	utils.Info("auction image stored", map[string]any{"auction_id": auctionID, "filename": filename, "replaced": replaced})
	return !replaced, nil
}

// GetAuctionImage returns the stored image bytes and their content type
func (s *LifecycleService) GetAuctionImage(ctx context.Context, auctionID int64) ([]byte, string, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, "", fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}
	if auction.ImageFilename == "" {
		return nil, "", fmt.Errorf("service: auction %d has no image: %w", auctionID, auctionerrors.ErrImageNotFound)
	}

	data, err := s.images.Get(auction.ImageFilename)
	if err != nil {
		return nil, "", fmt.Errorf("service: %w", err)
	}
	return data, images.ContentType(auction.ImageFilename), nil
}
