package main

import (
	bidding "auction-marketplace/internal/biddingService"
	category "auction-marketplace/internal/categoryService"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/images"
	lifecycle "auction-marketplace/internal/lifecycleService"
	listing "auction-marketplace/internal/listingService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"auction-marketplace/utils"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// store is everything the services need from persistence
type store interface {
	repository.AuctionDB
	repository.CategoryDB
	repository.UserDB
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Fatal("Failed to load config", map[string]any{"error": err.Error()})
	}
	if err := cfg.Validate(); err != nil {
		utils.Fatal("Invalid config", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.Logging.Level); err != nil {
		utils.Warn("Falling back to info log level", map[string]any{"error": err.Error()})
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, db, err := openStore(ctx, cfg)
	if err != nil {
		utils.Fatal("Failed to open store", map[string]any{"store": cfg.Database.Store, "error": err.Error()})
	}
	if db != nil {
		defer db.Close()
	}

	imageStore, err := images.NewOsStore(cfg.Images.Dir)
	if err != nil {
		utils.Fatal("Failed to prepare image storage", map[string]any{"error": err.Error()})
	}

	categorySvc := category.NewCategoryService(repo)
	router := server.SetupRouter(cfg.Server.APIPrefix, server.Services{
		Auctions:   lifecycle.NewLifecycleService(repo, repo, categorySvc, imageStore),
		Listing:    listing.NewListingService(repo, repo, categorySvc),
		Categories: categorySvc,
		Bidding:    bidding.NewBiddingService(repo, repo),
		Users:      repo,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("Starting auction server", map[string]any{"addr": srv.Addr, "store": cfg.Database.Store})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("Failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("Shutting down auction server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("Graceful shutdown failed", map[string]any{"error": err.Error()})
	}
}

// openStore builds the configured repository. The returned *sql.DB is nil for the memory store.
func openStore(ctx context.Context, cfg *config.Config) (store, *sql.DB, error) {
	if cfg.Database.Store == config.StorePostgres {
		db, err := repository.OpenPostgres(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	}

	repo := repository.NewMemoryRepo()
	if cfg.Database.SeedData {
		prepopulate(repo)
	}
	return repo, nil, nil
}

// prepopulate adds reference categories and demo users to the in-memory repo
func prepopulate(repo *repository.MemoryRepo) {
	categories := []model.Category{
		{CategoryID: 1, Name: "Smartphones"},
		{CategoryID: 2, Name: "Computers & Laptops"},
		{CategoryID: 3, Name: "Books"},
		{CategoryID: 4, Name: "CDs"},
		{CategoryID: 5, Name: "Furniture"},
	}
	for _, c := range categories {
		repo.AddCategory(c)
	}

	users := []model.User{
		{UserID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", AuthToken: "demo-token-ada"},
		{UserID: 2, FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", AuthToken: "demo-token-alan"},
		{UserID: 3, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", AuthToken: "demo-token-grace"},
	}
	for _, u := range users {
		repo.AddUser(u)
	}
}
