package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cremfish/storefront/internal/api/middleware"
	"github.com/cremfish/storefront/internal/cache"
	"github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/metrics"
	"github.com/cremfish/storefront/internal/models"
	repository "github.com/cremfish/storefront/internal/repositories"
	"github.com/cremfish/storefront/pkg/sendgrid"
	"github.com/google/uuid"
)

type OrderService interface {
	Checkout(ctx context.Context, userID uuid.UUID) (*models.OrderView, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*models.OrderView, error)
	ListAllOrders(ctx context.Context) ([]*models.AdminOrderView, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	productCache cache.Cache
	email        sendgrid.EmailService
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, productCache cache.Cache, email sendgrid.EmailService) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		productCache: productCache,
		email:        email,
	}
}

// Checkout converts the whole cart into an order or leaves everything
// untouched. Stock is validated up front for a friendly error, but the
// transactional decrement inside PlaceOrder is what actually guarantees no
// oversell under concurrent checkouts.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID) (*models.OrderView, error) {

	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
			return nil, errors.EmptyCartError()
		}

		metrics.CheckoutFailures.WithLabelValues("internal").Inc()

		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if len(cart.Items) == 0 {
		metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return nil, errors.EmptyCartError()
	}

	var (
		lines    []models.OrderLine
		products = make(map[uuid.UUID]*models.Product)
	)

	for _, item := range cart.Items {
		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			// a deleted product drops out of the order silently
			if stdErrors.Is(err, sql.ErrNoRows) {
				continue
			}

			metrics.CheckoutFailures.WithLabelValues("internal").Inc()

			return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
		}

		if product.Stock < item.Quantity {
			metrics.CheckoutFailures.WithLabelValues("insufficient_stock").Inc()
			return nil, errors.InsufficientStockError(product.Name)
		}

		products[product.ID] = product

		lines = append(lines, models.OrderLine{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	if len(lines) == 0 {
		metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return nil, errors.EmptyCartError()
	}

	order := &models.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Lines:     lines,
		CreatedAt: time.Now(),
	}

	if err := s.orderRepo.PlaceOrder(ctx, order, cart.ID); err != nil {

		var stockErr *repository.InsufficientStockError
		if stdErrors.As(err, &stockErr) {
			metrics.CheckoutFailures.WithLabelValues("insufficient_stock").Inc()

			name := stockErr.ProductID.String()
			if p, ok := products[stockErr.ProductID]; ok {
				name = p.Name
			}

			return nil, errors.InsufficientStockError(name)
		}

		metrics.CheckoutFailures.WithLabelValues("internal").Inc()

		return nil, errors.DatabaseError("Failed to place order").WithError(err)
	}

	metrics.OrdersPlaced.Inc()

	// the decrement committed, so any cached copies now carry stale stock
	s.invalidateProducts(ctx, order.Lines)

	// lines were built from live products, so the view needs no refetch
	view := newOrderView(order)
	for i := range view.Lines {
		if p, ok := products[view.Lines[i].ProductID]; ok {
			view.Lines[i].Name = p.Name
			view.Lines[i].Image = p.Image
		}
	}

	s.sendConfirmation(ctx, userID, order, view.Total)

	logger.Info("Order placed", slog.String("orderId", order.ID.String()), slog.Int("lines", len(order.Lines)))

	return view, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*models.OrderView, error) {

	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	views := make([]*models.OrderView, 0, len(orders))

	for _, order := range orders {
		view, err := s.orderView(ctx, order)
		if err != nil {
			return nil, err
		}

		views = append(views, view)
	}

	return views, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]*models.AdminOrderView, error) {

	orders, err := s.orderRepo.ListAllOrders(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	views := make([]*models.AdminOrderView, 0, len(orders))

	for _, order := range orders {
		view, err := s.orderView(ctx, &order.Order)
		if err != nil {
			return nil, err
		}

		views = append(views, &models.AdminOrderView{
			OrderView: *view,
			UserID:    order.UserID,
			Username:  order.Username,
		})
	}

	return views, nil
}

// orderView resolves each line against the live catalog; deleted products
// stay in the view, flagged, with the snapshotted price. Only a missing row
// means deleted; any other lookup failure aborts the view.
func (s *orderService) orderView(ctx context.Context, order *models.Order) (*models.OrderView, error) {

	view := newOrderView(order)

	for i := range view.Lines {
		product, err := s.productRepo.GetProductByID(ctx, view.Lines[i].ProductID)
		if err != nil {
			if stdErrors.Is(err, sql.ErrNoRows) {
				view.Lines[i].ProductDeleted = true
				continue
			}

			return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
		}

		view.Lines[i].Name = product.Name
		view.Lines[i].Image = product.Image
	}

	return view, nil
}

// newOrderView maps the order onto its view with totals from the snapshotted
// prices; product names and flags are filled in by the caller.
func newOrderView(order *models.Order) *models.OrderView {

	view := &models.OrderView{
		ID:        order.ID,
		Lines:     make([]models.OrderLineView, 0, len(order.Lines)),
		OrderedAt: order.CreatedAt,
	}

	for _, line := range order.Lines {
		view.Lines = append(view.Lines, models.OrderLineView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
		view.Total += line.UnitPrice * float64(line.Quantity)
	}

	return view
}

// invalidateProducts is best effort; a failed delete just means the cached
// product lingers until its TTL.
func (s *orderService) invalidateProducts(ctx context.Context, lines []models.OrderLine) {

	logger := middleware.LoggerFromContext(ctx)

	for _, line := range lines {
		key := cache.Key(cache.ProductKeyPrefix, line.ProductID.String())
		if err := s.productCache.Delete(ctx, key); err != nil {
			logger.Warn("Failed to invalidate product cache", slog.String("key", key), slog.Any("error", err))
		}
	}
}

// sendConfirmation is best effort; checkout never fails because the email
// provider is down.
func (s *orderService) sendConfirmation(ctx context.Context, userID uuid.UUID, order *models.Order, total float64) {

	if s.email == nil {
		return
	}

	logger := middleware.LoggerFromContext(ctx)

	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil || user.Email == "" {
		return
	}

	msg := &sendgrid.Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Order confirmation %s", order.ID),
		Content: fmt.Sprintf("Thanks for your order, %s! %d item(s), total $%.2f.", user.Username, len(order.Lines), total),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		logger.Warn("Order confirmation email failed", slog.String("orderId", order.ID.String()), slog.Any("error", err))
	}
}
