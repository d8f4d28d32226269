package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cremfish/storefront/internal/api/handlers"
	appErrors "github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/models"
	"github.com/cremfish/storefront/internal/testutils"
	"github.com/cremfish/storefront/internal/utils/response"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProductService struct{ mock.Mock }

func (m *mockProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductService) ListProducts(ctx context.Context, filter *models.ProductFilter) (*models.ProductPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ProductPage), args.Error(1)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()

	var resp response.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return resp
}

func TestListProductsHandler(t *testing.T) {
	t.Run("Parses Query Parameters Into Filter", func(t *testing.T) {
		// Arrange
		svc := &mockProductService{}
		handler := handlers.NewProductHandler(svc)

		svc.On("ListProducts", mock.Anything, mock.MatchedBy(func(f *models.ProductFilter) bool {
			return f.Category == "Rods" &&
				f.Search == "carbon" &&
				f.MinPrice != nil && *f.MinPrice == 20 &&
				f.MaxPrice != nil && *f.MaxPrice == 150 &&
				f.InStock &&
				f.MinRating != nil && *f.MinRating == 4 &&
				len(f.Brands) == 2 && f.Brands[0] == "RiverWorks" && f.Brands[1] == "LunkerHouse" &&
				f.Sort == models.SortPriceAsc &&
				f.Page == 2 && f.Limit == 10
		})).Return(&models.ProductPage{Products: []*models.Product{}, Page: 2}, nil).Once()

		target := "/api/v1/products?category=Rods&search=carbon&minPrice=20&maxPrice=150&inStock=true&minRating=4&brands=RiverWorks,%20LunkerHouse&sort=priceAsc&page=2&limit=10"
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, target, nil, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.ListProducts().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeResponse(t, rec).Success)
		svc.AssertExpectations(t)
	})

	t.Run("Ignores Unparseable Values", func(t *testing.T) {
		// Arrange
		svc := &mockProductService{}
		handler := handlers.NewProductHandler(svc)

		svc.On("ListProducts", mock.Anything, mock.MatchedBy(func(f *models.ProductFilter) bool {
			return f.MinPrice == nil && f.Page == 0
		})).Return(&models.ProductPage{Products: []*models.Product{}}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products?minPrice=abc&page=xyz", nil, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.ListProducts().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestGetProductHandler(t *testing.T) {
	t.Run("Failure - Invalid ID", func(t *testing.T) {
		// Arrange
		svc := &mockProductService{}
		handler := handlers.NewProductHandler(svc)

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products/not-a-uuid", nil,
			map[string]string{"id": "not-a-uuid"})
		rec := httptest.NewRecorder()

		// Act
		handler.GetProduct().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		svc := &mockProductService{}
		handler := handlers.NewProductHandler(svc)

		id := uuid.New()
		svc.On("GetProductByID", mock.Anything, id).Return(nil, appErrors.NotFoundError("Product not found")).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products/"+id.String(), nil,
			map[string]string{"id": id.String()})
		rec := httptest.NewRecorder()

		// Act
		handler.GetProduct().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)

		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, appErrors.ErrCodeNotFound, resp.Error.Code)
	})
}

func TestCreateProductHandler(t *testing.T) {
	t.Run("Failure - Validation Error", func(t *testing.T) {
		// Arrange
		svc := &mockProductService{}
		handler := handlers.NewProductHandler(svc)

		body, err := json.Marshal(map[string]any{
			"name":        "R",
			"brand":       "RiverWorks",
			"category":    "Boats",
			"price":       -1,
			"description": "d",
		})
		require.NoError(t, err)

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products", bytes.NewReader(body), uuid.New(), true, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.CreateProduct().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, appErrors.ErrCodeValidation, resp.Error.Code)
		svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		// Arrange
		svc := &mockProductService{}
		handler := handlers.NewProductHandler(svc)

		created := &models.Product{ID: uuid.New(), Name: "Carbon Spin Rod"}
		svc.On("CreateProduct", mock.Anything, mock.AnythingOfType("*models.CreateProductRequest")).
			Return(created, nil).Once()

		body, err := json.Marshal(models.CreateProductRequest{
			Name:        "Carbon Spin Rod",
			Brand:       "RiverWorks",
			Category:    "Rods",
			Price:       129.99,
			Description: "Two-piece carbon rod",
		})
		require.NoError(t, err)

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/products", bytes.NewReader(body), uuid.New(), true, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.CreateProduct().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, decodeResponse(t, rec).Success)
		svc.AssertExpectations(t)
	})
}
