package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/cremfish/storefront/internal/cache"
	"github.com/cremfish/storefront/internal/config"
	appErrors "github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/models"
	service "github.com/cremfish/storefront/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductService() (service.ProductService, *mockProductRepo, *mockCache) {
	repo := &mockProductRepo{}
	productCache := &mockCache{}
	cfg := &config.CacheConfig{DefaultTTL: 5 * time.Minute, ProductTTL: 10 * time.Minute}
	svc := service.NewProductService(repo, productCache, cfg)

	return svc, repo, productCache
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Applies Defaults", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newProductService()

		repo.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		req := &models.CreateProductRequest{
			Name:        "Carbon Spin Rod",
			Brand:       "RiverWorks",
			Category:    "Rods",
			Price:       129.99,
			Description: "Two-piece carbon rod",
		}

		// Act
		product, err := svc.CreateProduct(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, product.ID)
		assert.Equal(t, models.DefaultProductImage, product.Image)
		assert.Zero(t, product.Stock)
		assert.Zero(t, product.AverageRating)
		assert.Zero(t, product.ReviewCount)
		repo.AssertExpectations(t)
	})

	t.Run("Sanitizes Description Markup", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newProductService()

		repo.On("CreateProduct", ctx, mock.MatchedBy(func(p *models.Product) bool {
			return p.Description == "crisp action"
		})).Return(nil).Once()

		req := &models.CreateProductRequest{
			Name:        "Carbon Spin Rod",
			Brand:       "RiverWorks",
			Category:    "Rods",
			Price:       129.99,
			Description: `<script>alert(1)</script>crisp action`,
		}

		// Act
		_, err := svc.CreateProduct(ctx, req)

		// Assert
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestGetProductByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Cache Miss Falls Through And Populates", func(t *testing.T) {
		// Arrange
		svc, repo, productCache := newProductService()

		product := newTestProduct(59.0, 10)
		cacheKey := cache.Key(cache.ProductKeyPrefix, product.ID.String())

		productCache.On("Get", ctx, cacheKey, mock.Anything).Return(false, nil).Once()
		repo.On("GetProductByID", ctx, product.ID).Return(product, nil).Once()
		productCache.On("Set", ctx, cacheKey, product, 10*time.Minute).Return(nil).Once()

		// Act
		got, err := svc.GetProductByID(ctx, product.ID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, product.ID, got.ID)
		productCache.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Cache Hit Skips Repository", func(t *testing.T) {
		// Arrange
		svc, repo, productCache := newProductService()

		id := uuid.New()
		cacheKey := cache.Key(cache.ProductKeyPrefix, id.String())

		productCache.On("Get", ctx, cacheKey, mock.Anything).Return(true, nil).Once()

		// Act
		_, err := svc.GetProductByID(ctx, id)

		// Assert
		require.NoError(t, err)
		repo.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		svc, repo, productCache := newProductService()

		id := uuid.New()
		productCache.On("Get", ctx, mock.AnythingOfType("string"), mock.Anything).Return(false, nil).Once()
		repo.On("GetProductByID", ctx, id).Return(nil, sql.ErrNoRows).Once()

		// Act
		product, err := svc.GetProductByID(ctx, id)

		// Assert
		require.Error(t, err)
		assert.Nil(t, product)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Partial Update Invalidates Cache", func(t *testing.T) {
		// Arrange
		svc, repo, productCache := newProductService()

		product := newTestProduct(59.0, 10)
		newPrice := 49.0

		repo.On("GetProductByID", ctx, product.ID).Return(product, nil).Once()
		repo.On("UpdateProduct", ctx, product).Return(nil).Once()
		productCache.On("Delete", ctx, cache.Key(cache.ProductKeyPrefix, product.ID.String())).Return(nil).Once()

		// Act
		updated, err := svc.UpdateProduct(ctx, product.ID, &models.UpdateProductRequest{Price: &newPrice})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 49.0, updated.Price)
		assert.Equal(t, "Carbon Spin Rod", updated.Name, "unset fields keep their values")
		productCache.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newProductService()

		id := uuid.New()
		repo.On("GetProductByID", ctx, id).Return(nil, sql.ErrNoRows).Once()

		// Act
		updated, err := svc.UpdateProduct(ctx, id, &models.UpdateProductRequest{})

		// Assert
		require.Error(t, err)
		assert.Nil(t, updated)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Invalidates Cache", func(t *testing.T) {
		// Arrange
		svc, repo, productCache := newProductService()

		id := uuid.New()
		repo.On("DeleteProduct", ctx, id).Return(nil).Once()
		productCache.On("Delete", ctx, cache.Key(cache.ProductKeyPrefix, id.String())).Return(nil).Once()

		// Act
		err := svc.DeleteProduct(ctx, id)

		// Assert
		require.NoError(t, err)
		productCache.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newProductService()

		id := uuid.New()
		repo.On("DeleteProduct", ctx, id).Return(sql.ErrNoRows).Once()

		// Act
		err := svc.DeleteProduct(ctx, id)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Normalizes Page And Limit", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newProductService()

		repo.On("ListProducts", ctx, mock.MatchedBy(func(f *models.ProductFilter) bool {
			return f.Page == 1 && f.Limit == 20
		})).Return([]*models.Product{}, 0, nil).Once()

		// Act
		page, err := svc.ListProducts(ctx, &models.ProductFilter{Page: -3, Limit: 500})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		repo.AssertExpectations(t)
	})

	t.Run("Computes Total Pages", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newProductService()

		products := []*models.Product{newTestProduct(10, 1)}
		repo.On("ListProducts", ctx, mock.AnythingOfType("*models.ProductFilter")).Return(products, 45, nil).Once()

		// Act
		page, err := svc.ListProducts(ctx, &models.ProductFilter{Page: 2, Limit: 20})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 45, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 2, page.Page)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		svc, repo, _ := newProductService()

		repo.On("ListProducts", ctx, mock.AnythingOfType("*models.ProductFilter")).
			Return(nil, 0, errors.New("query timeout")).Once()

		// Act
		page, err := svc.ListProducts(ctx, &models.ProductFilter{})

		// Assert
		require.Error(t, err)
		assert.Nil(t, page)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
	})
}
