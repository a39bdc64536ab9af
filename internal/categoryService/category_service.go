package category

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"errors"
	"fmt"
)

// CategoryService resolves category identifiers for the mutation and listing paths
type CategoryService struct {
	repo repository.CategoryDB
}

// NewCategoryService creates a new CategoryService instance
func NewCategoryService(repo repository.CategoryDB) *CategoryService {
	return &CategoryService{repo: repo}
}

// Exists reports whether a category with the given ID exists
func (s *CategoryService) Exists(ctx context.Context, categoryID int64) (bool, error) {
	_, err := s.repo.GetCategory(ctx, categoryID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, auctionerrors.ErrCategoryNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("service: failed to look up category %d: %w", categoryID, err)
	}
}

// List returns all categories ordered by ID
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// ValidateAll fails with ErrInvalidCategories if any of the IDs does not resolve
func (s *CategoryService) ValidateAll(ctx context.Context, categoryIDs []int64) error {
	for _, id := range categoryIDs {
		ok, err := s.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("service: category %d: %w", id, auctionerrors.ErrInvalidCategories)
		}
	}
	return nil
}
