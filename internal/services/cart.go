package service

import (
	"context"
	"database/sql"
	stdErrors "errors"

	"github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/models"
	repository "github.com/cremfish/storefront/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.CartView, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.CartView, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.CartView, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return emptyCartView(), nil
		}

		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	return s.buildView(ctx, cart)
}

// AddItem merges a repeated product into its existing line rather than adding
// a duplicate entry.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.CartView, error) {

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := product.ID.String()

	line, exists := cart.Items[key]
	if exists {
		line.Quantity += req.Quantity
	} else {
		line = models.CartLine{ProductID: product.ID, Quantity: req.Quantity}
	}

	cart.Items[key] = line

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return s.buildView(ctx, cart)
}

// UpdateQuantity sets a line to an absolute quantity; zero or below removes
// the line. Updating a product that is not in the cart is a no-op.
func (s *cartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.CartView, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return emptyCartView(), nil
		}

		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	key := req.ProductID.String()

	line, exists := cart.Items[key]
	if !exists {
		return s.buildView(ctx, cart)
	}

	if req.Quantity <= 0 {
		delete(cart.Items, key)
	} else {
		line.Quantity = req.Quantity
		cart.Items[key] = line
	}

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return s.buildView(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.CartView, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return emptyCartView(), nil
		}

		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	key := productID.String()

	if _, exists := cart.Items[key]; !exists {
		return s.buildView(ctx, cart)
	}

	delete(cart.Items, key)

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return s.buildView(ctx, cart)
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return emptyCartView(), nil
		}

		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	cart.Items = make(map[string]models.CartLine)

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to clear cart").WithError(err)
	}

	return emptyCartView(), nil
}

func (s *cartService) getOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !stdErrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	cart = &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items:  make(map[string]models.CartLine),
	}

	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to create cart").WithError(err)
	}

	return cart, nil
}

// buildView resolves each line against the live catalog. Lines whose product
// has been deleted are dropped from the view silently.
func (s *cartService) buildView(ctx context.Context, cart *models.Cart) (*models.CartView, error) {

	view := emptyCartView()

	for _, line := range cart.Items {
		product, err := s.productRepo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if stdErrors.Is(err, sql.ErrNoRows) {
				continue
			}

			return nil, errors.DatabaseError("Failed to fetch cart product").WithError(err)
		}

		view.Items = append(view.Items, models.CartLineView{Product: product, Quantity: line.Quantity})
		view.Subtotal += product.Price * float64(line.Quantity)
	}

	return view, nil
}

func emptyCartView() *models.CartView {
	return &models.CartView{Items: []models.CartLineView{}}
}
