package service_test

import (
	"context"
	"time"

	"github.com/cremfish/storefront/internal/models"
	"github.com/cremfish/storefront/pkg/sendgrid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.User), args.Error(1)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepo) UpdateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]*models.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) UpdateRating(ctx context.Context, id uuid.UUID, averageRating float64, reviewCount int) error {
	return m.Called(ctx, id, averageRating, reviewCount).Error(0)
}

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) CreateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ProductRatingStats(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	args := m.Called(ctx, productID)

	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type mockCartRepo struct{ mock.Mock }

func (m *mockCartRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *mockCartRepo) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *mockCartRepo) UpdateCart(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) PlaceOrder(ctx context.Context, order *models.Order, cartID uuid.UUID) error {
	return m.Called(ctx, order, cartID).Error(0)
}

func (m *mockOrderRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListAllOrders(ctx context.Context) ([]*models.AdminOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.AdminOrder), args.Error(1)
}

type mockRateLimitRepo struct{ mock.Mock }

func (m *mockRateLimitRepo) CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error) {
	args := m.Called(ctx, username)

	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string, value any) (bool, error) {
	args := m.Called(ctx, key, value)

	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockCache) Close() error {
	return m.Called().Error(0)
}

type mockEmailService struct{ mock.Mock }

func (m *mockEmailService) Send(ctx context.Context, msg *sendgrid.Message) error {
	return m.Called(ctx, msg).Error(0)
}
