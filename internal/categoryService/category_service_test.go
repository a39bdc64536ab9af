package category

import (
	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

// Tests Exists
func TestCategoryService_Exists(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("db down")

	tests := []struct {
		name          string
		categoryID    int64
		mockSetup     func(repo *repository.MockCategoryDB)
		want          bool
		expectedError error
	}{
		{
			name:       "known_category",
			categoryID: 1,
			mockSetup: func(repo *repository.MockCategoryDB) {
				repo.EXPECT().GetCategory(gomock.Any(), int64(1)).Return(model.Category{CategoryID: 1, Name: "Books"}, nil)
			},
			want: true,
		},
		{
			name:       "unknown_category",
			categoryID: 2,
			mockSetup: func(repo *repository.MockCategoryDB) {
				repo.EXPECT().GetCategory(gomock.Any(), int64(2)).Return(model.Category{}, auctionerrors.ErrCategoryNotFound)
			},
			want: false,
		},
		{
			name:       "repo_error",
			categoryID: 3,
			mockSetup: func(repo *repository.MockCategoryDB) {
				repo.EXPECT().GetCategory(gomock.Any(), int64(3)).Return(model.Category{}, dbErr)
			},
			expectedError: dbErr,
		},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockRepo := repository.NewMockCategoryDB(ctrl)
			tc.mockSetup(mockRepo)

			got, err := NewCategoryService(mockRepo).Exists(ctx, tc.categoryID)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// Tests List
func TestCategoryService_List(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockCategoryDB(ctrl)
	service := NewCategoryService(mockRepo)

	mockRepo.EXPECT().ListCategories(gomock.Any()).Return(nil, nil)
	categories, err := service.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, categories)
	require.Empty(t, categories)

	all := []model.Category{{CategoryID: 1, Name: "Books"}, {CategoryID: 2, Name: "CDs"}}
	mockRepo.EXPECT().ListCategories(gomock.Any()).Return(all, nil)
	categories, err = service.List(ctx)
	require.NoError(t, err)
	require.Equal(t, all, categories)
}

// Tests ValidateAll
func TestCategoryService_ValidateAll(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	repo.AddCategory(model.Category{CategoryID: 1, Name: "Books"})
	repo.AddCategory(model.Category{CategoryID: 2, Name: "CDs"})
	service := NewCategoryService(repo)

	tests := []struct {
		name          string
		ids           []int64
		expectedError error
	}{
		{name: "no_ids", ids: nil},
		{name: "all_known", ids: []int64{1, 2}},
		{name: "one_unknown", ids: []int64{1, 9}, expectedError: auctionerrors.ErrInvalidCategories},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateAll(ctx, tc.ids)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				require.ErrorIs(t, err, auctionerrors.ErrBadRequest)
				return
			}
			require.NoError(t, err)
		})
	}
}
