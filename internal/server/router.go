package server

import (
	"auction-marketplace/internal/repository"
	handler "auction-marketplace/services/auctions/handler"

	"github.com/gin-gonic/gin"
)

// Services bundles what the router needs to serve the API
type Services struct {
	Auctions   handler.AuctionServiceInterface
	Listing    handler.ListingServiceInterface
	Categories handler.CategoryServiceInterface
	Bidding    handler.BiddingServiceInterface
	Users      repository.UserDB
}

// SetupRouter configures all Gin routes for the application under prefix (e.g. "/api/v1")
func SetupRouter(prefix string, svc Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(svc.Auctions, svc.Listing, svc.Categories)
	biddingHandler := handler.NewBiddingHandler(svc.Bidding)
	auth := AuthRequired(svc.Users)

	auctions := router.Group(prefix + "/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.POST("", auth, auctionHandler.CreateAuctionHandler)
		auctions.GET("/categories", auctionHandler.ListCategoriesHandler)

		auctions.GET("/:id", auctionHandler.GetAuctionHandler)
		auctions.PATCH("/:id", auth, auctionHandler.UpdateAuctionHandler)
		auctions.DELETE("/:id", auth, auctionHandler.DeleteAuctionHandler)

		auctions.GET("/:id/bids", biddingHandler.GetBidsHandler)
		auctions.POST("/:id/bids", auth, biddingHandler.PlaceBidHandler)
		auctions.GET("/:id/bids/highest", biddingHandler.GetHighestBidHandler)

		auctions.GET("/:id/image", auctionHandler.GetImageHandler)
		auctions.PUT("/:id/image", auth, auctionHandler.PutImageHandler)
	}

	return router
}
