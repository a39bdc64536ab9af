package listing

import (
	"auction-marketplace/internal/auctionerrors"
	category "auction-marketplace/internal/categoryService"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func ptr[T any](v T) *T { return &v }

// fixture IDs, assigned in creation order
const (
	lampID int64 = iota + 1
	deskID
	chairID
	bookID
)

// newSeededService builds a listing over four auctions:
//
//	Lamp   seller 1, category 1, reserve 30, ends +3h, 1 bid
//	desk   seller 1, category 2, reserve 10, ends +1h, 0 bids
//	Chair  seller 2, category 2, reserve 20, ends +4h, 3 bids
//	Book   seller 2, category 1, reserve 40, ends +2h, 2 bids
func newSeededService(t *testing.T) *ListingService {
	t.Helper()

	repo := repository.NewMemoryRepo()
	repo.AddCategory(models.Category{CategoryID: 1, Name: "Books"})
	repo.AddCategory(models.Category{CategoryID: 2, Name: "Furniture"})
	repo.AddUser(models.User{UserID: 1, FirstName: "Ada", LastName: "Lovelace"})
	repo.AddUser(models.User{UserID: 2, FirstName: "Alan", LastName: "Turing"})

	now := time.Now().UTC()
	seed := []models.Auction{
		{Title: "Lamp", Description: "brass reading lamp", SellerID: 1, CategoryID: 1, Reserve: 30, EndDate: now.Add(3 * time.Hour)},
		{Title: "desk", Description: "oak writing desk", SellerID: 1, CategoryID: 2, Reserve: 10, EndDate: now.Add(1 * time.Hour)},
		{Title: "Chair", Description: "oak chair", SellerID: 2, CategoryID: 2, Reserve: 20, EndDate: now.Add(4 * time.Hour)},
		{Title: "Book", Description: "first edition", SellerID: 2, CategoryID: 1, Reserve: 40, EndDate: now.Add(2 * time.Hour)},
	}
	for _, a := range seed {
		_, err := repo.CreateAuction(ctx, a)
		require.NoError(t, err)
	}

	bids := []models.Bid{
		{AuctionID: lampID, BidderID: 3, Amount: 5},
		{AuctionID: chairID, BidderID: 1, Amount: 5},
		{AuctionID: chairID, BidderID: 3, Amount: 6},
		{AuctionID: chairID, BidderID: 1, Amount: 7},
		{AuctionID: bookID, BidderID: 1, Amount: 50},
		{AuctionID: bookID, BidderID: 4, Amount: 55},
	}
	for _, b := range bids {
		b.Timestamp = now
		require.NoError(t, repo.RecordBidIfHigher(ctx, b))
	}

	return NewListingService(repo, repo, category.NewCategoryService(repo))
}

func ids(page models.AuctionPage) []int64 {
	out := make([]int64, 0, len(page.Auctions))
	for _, a := range page.Auctions {
		out = append(out, a.AuctionID)
	}
	return out
}

// Tests every accepted sort key
func TestListingService_SortKeys(t *testing.T) {
	t.Parallel()

	service := newSeededService(t)

	tests := []struct {
		name   string
		sortBy string
		want   []int64
	}{
		{name: "default_is_closing_soon", sortBy: "", want: []int64{deskID, bookID, lampID, chairID}},
		{name: "closing_soon", sortBy: "CLOSING_SOON", want: []int64{deskID, bookID, lampID, chairID}},
		{name: "closing_last", sortBy: "CLOSING_LAST", want: []int64{chairID, lampID, bookID, deskID}},
		{name: "alphabetical_asc", sortBy: "ALPHABETICAL_ASC", want: []int64{bookID, chairID, deskID, lampID}},
		{name: "alphabetical_desc", sortBy: "ALPHABETICAL_DESC", want: []int64{lampID, deskID, chairID, bookID}},
		{name: "bids_asc", sortBy: "BIDS_ASC", want: []int64{deskID, lampID, bookID, chairID}},
		{name: "bids_desc_matches_bids_asc", sortBy: "BIDS_DESC", want: []int64{deskID, lampID, bookID, chairID}},
		{name: "reserve_asc", sortBy: "RESERVE_ASC", want: []int64{deskID, chairID, lampID, bookID}},
		{name: "reserve_desc", sortBy: "RESERVE_DESC", want: []int64{bookID, lampID, chairID, deskID}},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			page, err := service.ListAuctions(ctx, models.AuctionListRequest{SortBy: tc.sortBy})
			require.NoError(t, err)
			require.Equal(t, tc.want, ids(page))
			require.Equal(t, 4, page.Count)
		})
	}
}

// Tests filters and the free-text query
func TestListingService_Filters(t *testing.T) {
	t.Parallel()

	service := newSeededService(t)

	tests := []struct {
		name      string
		req       models.AuctionListRequest
		want      []int64
		wantCount int
	}{
		{name: "query_matches_description", req: models.AuctionListRequest{Query: "OAK"}, want: []int64{deskID, chairID}, wantCount: 2},
		{name: "query_matches_title", req: models.AuctionListRequest{Query: "lamp"}, want: []int64{lampID}, wantCount: 1},
		{name: "query_no_match", req: models.AuctionListRequest{Query: "piano"}, want: []int64{}, wantCount: 0},
		{name: "single_category", req: models.AuctionListRequest{CategoryIDs: []int64{1}}, want: []int64{bookID, lampID}, wantCount: 2},
		{name: "category_set", req: models.AuctionListRequest{CategoryIDs: []int64{1, 2}}, want: []int64{deskID, bookID, lampID, chairID}, wantCount: 4},
		{name: "seller", req: models.AuctionListRequest{SellerID: ptr(int64(2))}, want: []int64{bookID, chairID}, wantCount: 2},
		{name: "bidder", req: models.AuctionListRequest{BidderID: ptr(int64(3))}, want: []int64{lampID, chairID}, wantCount: 2},
		{name: "bidder_without_bids", req: models.AuctionListRequest{BidderID: ptr(int64(2))}, want: []int64{}, wantCount: 0},
		{
			name:      "filters_combine",
			req:       models.AuctionListRequest{Query: "oak", CategoryIDs: []int64{2}, SellerID: ptr(int64(2)), BidderID: ptr(int64(1))},
			want:      []int64{chairID},
			wantCount: 1,
		},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			page, err := service.ListAuctions(ctx, tc.req)
			require.NoError(t, err)
			require.Equal(t, tc.want, ids(page))
			require.Equal(t, tc.wantCount, page.Count)
		})
	}
}

// Tests pagination and the total count
func TestListingService_Pagination(t *testing.T) {
	t.Parallel()

	service := newSeededService(t)

	tests := []struct {
		name  string
		start int
		count *int
		want  []int64
	}{
		{name: "first_page", start: 0, count: ptr(2), want: []int64{deskID, bookID}},
		{name: "second_page", start: 2, count: ptr(2), want: []int64{lampID, chairID}},
		{name: "short_last_page", start: 3, count: ptr(2), want: []int64{chairID}},
		{name: "no_count_to_end", start: 1, want: []int64{bookID, lampID, chairID}},
		{name: "zero_count", start: 0, count: ptr(0), want: []int64{}},
		{name: "start_past_end", start: 10, count: ptr(2), want: []int64{}},
		{name: "huge_count_to_end", start: 1, count: ptr(math.MaxInt), want: []int64{bookID, lampID, chairID}},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			page, err := service.ListAuctions(ctx, models.AuctionListRequest{StartIndex: tc.start, Count: tc.count})
			require.NoError(t, err)
			require.Equal(t, tc.want, ids(page))
			require.Equal(t, 4, page.Count, "count is the size of the filtered set")
		})
	}
}

// Tests the enriched overview fields
func TestListingService_Enrichment(t *testing.T) {
	t.Parallel()

	service := newSeededService(t)

	page, err := service.ListAuctions(ctx, models.AuctionListRequest{SortBy: "CLOSING_SOON"})
	require.NoError(t, err)
	require.Len(t, page.Auctions, 4)

	desk := page.Auctions[0]
	require.Equal(t, deskID, desk.AuctionID)
	require.Equal(t, 0, desk.NumBids)
	require.Nil(t, desk.HighestBid)
	require.Equal(t, "Ada", desk.SellerFirstName)

	book := page.Auctions[1]
	require.Equal(t, bookID, book.AuctionID)
	require.Equal(t, 2, book.NumBids)
	require.NotNil(t, book.HighestBid)
	require.Equal(t, int64(55), *book.HighestBid)
	require.Equal(t, "Turing", book.SellerLastName)
	require.Equal(t, int64(40), book.Reserve)
}

// Tests rejected requests
func TestListingService_InvalidRequests(t *testing.T) {
	t.Parallel()

	service := newSeededService(t)

	tests := []struct {
		name          string
		req           models.AuctionListRequest
		expectedError error
	}{
		{name: "unknown_sort_key", req: models.AuctionListRequest{SortBy: "PRICE_ASC"}, expectedError: auctionerrors.ErrInvalidSortKey},
		{name: "lowercase_sort_key", req: models.AuctionListRequest{SortBy: "closing_soon"}, expectedError: auctionerrors.ErrInvalidSortKey},
		{name: "unknown_category", req: models.AuctionListRequest{CategoryIDs: []int64{1, 99}}, expectedError: auctionerrors.ErrInvalidCategories},
		{name: "negative_start", req: models.AuctionListRequest{StartIndex: -1}, expectedError: auctionerrors.ErrInvalidPage},
		{name: "negative_count", req: models.AuctionListRequest{Count: ptr(-1)}, expectedError: auctionerrors.ErrInvalidPage},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := service.ListAuctions(ctx, tc.req)
			require.ErrorIs(t, err, tc.expectedError)
			require.ErrorIs(t, err, auctionerrors.ErrBadRequest)
		})
	}
}

// Tests that repository failures surface wrapped
func TestListingService_RepositoryError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockAuctionDB(ctrl)
	mockUsers := repository.NewMockUserDB(ctrl)
	mockCategories := repository.NewMockCategoryDB(ctrl)
	service := NewListingService(mockRepo, mockUsers, category.NewCategoryService(mockCategories))

	dbErr := errors.New("connection reset")
	mockRepo.EXPECT().ListAuctions(gomock.Any(), "x", models.SortOrder{Field: models.SortByTitle, Descending: true}).Return(nil, dbErr)

	_, err := service.ListAuctions(ctx, models.AuctionListRequest{Query: "x", SortBy: "ALPHABETICAL_DESC"})
	require.ErrorIs(t, err, dbErr)
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	order, err := ParseSortKey("")
	require.NoError(t, err)
	require.Equal(t, models.SortOrder{Field: models.SortByEndDate}, order)

	order, err = ParseSortKey(string(BidsDesc))
	require.NoError(t, err)
	require.Equal(t, models.SortOrder{Field: models.SortByBids}, order)

	_, err = ParseSortKey("RANDOM")
	require.ErrorIs(t, err, auctionerrors.ErrInvalidSortKey)
}
