package auctionerrors

import (
	"errors"
	"fmt"
)

// Error classes. Every failure the core reports wraps exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidCategory = errors.New("invalid category")
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Repository-level errors
var (
	ErrAuctionNotFound  = fmt.Errorf("auction %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrImageNotFound    = fmt.Errorf("image %w", ErrNotFound)
	ErrNoBids           = errors.New("no bids found for auction")
)

// business logic errors
var (
	ErrNotSeller         = fmt.Errorf("%w: only the seller may modify this auction", ErrForbidden)
	ErrSelfBid           = fmt.Errorf("%w: cannot bid on own auction", ErrForbidden)
	ErrBidTooLow         = fmt.Errorf("%w: bid must exceed current highest", ErrForbidden)
	ErrChangeWithBids    = fmt.Errorf("%w: cannot change an auction with bids", ErrForbidden)
	ErrDeleteWithBids    = fmt.Errorf("%w: cannot delete an auction with bids", ErrForbidden)
	ErrDuplicateTitle    = fmt.Errorf("%w: title must be unique", ErrConflict)
	ErrUnknownCategory   = fmt.Errorf("%w: categoryId does not match any existing category", ErrInvalidCategory)
	ErrInvalidReserve    = fmt.Errorf("%w: reserve must be a number", ErrBadRequest)
	ErrInvalidSortKey    = fmt.Errorf("%w: sortBy should be equal to one of the allowed values", ErrBadRequest)
	ErrInvalidCategories = fmt.Errorf("%w: one or more invalid category IDs", ErrBadRequest)
	ErrInvalidPage       = fmt.Errorf("%w: startIndex and count must not be negative", ErrBadRequest)
	ErrInvalidImageType  = fmt.Errorf("%w: image must be jpeg, png or gif", ErrBadRequest)
)
