package integrationtests

import (
	bidding "auction-marketplace/internal/biddingService"
	category "auction-marketplace/internal/categoryService"
	"auction-marketplace/internal/images"
	lifecycle "auction-marketplace/internal/lifecycleService"
	listing "auction-marketplace/internal/listingService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
)

const apiPrefix = "/api/v1"

// Demo users and their tokens
const (
	sellerToken = "token-seller"
	bidderToken = "token-bidder"
	rivalToken  = "token-rival"
)

// SetupTestRouter initializes the router with a seeded in-memory repository for integration testing.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, c := range []model.Category{{CategoryID: 1, Name: "Books"}, {CategoryID: 2, Name: "Furniture"}} {
		repo.AddCategory(c)
	}
	for _, u := range []model.User{
		{UserID: 1, FirstName: "Ada", LastName: "Lovelace", AuthToken: sellerToken},
		{UserID: 2, FirstName: "Alan", LastName: "Turing", AuthToken: bidderToken},
		{UserID: 3, FirstName: "Grace", LastName: "Hopper", AuthToken: rivalToken},
	} {
		repo.AddUser(u)
	}

	categories := category.NewCategoryService(repo)
	return server.SetupRouter(apiPrefix, server.Services{
		Auctions:   lifecycle.NewLifecycleService(repo, repo, categories, images.NewStore(afero.NewMemMapFs(), "images")),
		Listing:    listing.NewListingService(repo, repo, categories),
		Categories: categories,
		Bidding:    bidding.NewBiddingService(repo, repo),
		Users:      repo,
	})
}

// ExecuteRequest executes an HTTP request with an optional auth token and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	return ExecuteRequestWithContentType(t, router, method, url, token, "application/json", body)
}

// ExecuteRequestWithContentType is ExecuteRequest for non-JSON bodies such as images.
func ExecuteRequestWithContentType(t *testing.T, router *gin.Engine, method, url, token, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, apiPrefix+url, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("X-Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, token, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// CreateAuction lists an auction as the seller and returns its ID
func CreateAuction(t *testing.T, router *gin.Engine, body map[string]any) int64 {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, "POST", "/auctions", sellerToken, body)
	if w.Code != 201 {
		t.Fatalf("create auction: status %d: %s", w.Code, w.Body.String())
	}
	data := resp["data"].(map[string]any)
	return int64(data["auction_id"].(float64))
}

func auctionPath(id int64, suffix string) string {
	return fmt.Sprintf("/auctions/%d%s", id, suffix)
}
