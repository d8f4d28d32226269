package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"
	"math"

	"github.com/cremfish/storefront/internal/api/middleware"
	"github.com/cremfish/storefront/internal/cache"
	"github.com/cremfish/storefront/internal/config"
	"github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/models"
	repository "github.com/cremfish/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter *models.ProductFilter) (*models.ProductPage, error)
}

type productService struct {
	repo      repository.ProductRepository
	cache     cache.Cache
	cacheCfg  *config.CacheConfig
	sanitizer *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository, productCache cache.Cache, cacheCfg *config.CacheConfig) ProductService {
	return &productService{
		repo:      repo,
		cache:     productCache,
		cacheCfg:  cacheCfg,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := &models.Product{
		ID:               uuid.New(),
		Name:             req.Name,
		Brand:            req.Brand,
		Category:         req.Category,
		Price:            req.Price,
		Stock:            req.Stock,
		Description:      s.sanitizer.Sanitize(req.Description),
		Summary:          s.sanitizer.Sanitize(req.Summary),
		Image:            req.Image,
		AvailabilityDate: req.AvailabilityDate,
	}

	if product.Image == "" {
		product.Image = models.DefaultProductImage
	}

	err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	logger := middleware.LoggerFromContext(ctx)

	cacheKey := cache.Key(cache.ProductKeyPrefix, id.String())

	product := &models.Product{}

	found, err := s.cache.Get(ctx, cacheKey, product)
	if err != nil {
		logger.Warn("Product cache read failed", slog.String("key", cacheKey), slog.Any("error", err))
	}

	if found {
		return product, nil
	}

	product, err = s.repo.GetProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if err := s.cache.Set(ctx, cacheKey, product, s.cacheCfg.ProductTTL); err != nil {
		logger.Warn("Product cache write failed", slog.String("key", cacheKey), slog.Any("error", err))
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.Brand != nil {
		product.Brand = *req.Brand
	}

	if req.Category != nil {
		product.Category = *req.Category
	}

	if req.Price != nil {
		product.Price = *req.Price
	}

	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if req.Description != nil {
		product.Description = s.sanitizer.Sanitize(*req.Description)
	}

	if req.Summary != nil {
		product.Summary = s.sanitizer.Sanitize(*req.Summary)
	}

	if req.Image != nil {
		product.Image = *req.Image
	}

	if req.AvailabilityDate != nil {
		product.AvailabilityDate = req.AvailabilityDate
	}

	err = s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidate(ctx, id)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {

	err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found").WithError(err)
		}

		return errors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *productService) ListProducts(ctx context.Context, filter *models.ProductFilter) (*models.ProductPage, error) {

	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list products").WithError(err)
	}

	return &models.ProductPage{
		Products:   products,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Page:       filter.Page,
	}, nil
}

// Stale cache entries only ever survive until the next mutation, so a failed
// invalidation is logged, not surfaced.
func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {

	logger := middleware.LoggerFromContext(ctx)

	cacheKey := cache.Key(cache.ProductKeyPrefix, id.String())

	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		logger.Warn("Product cache invalidation failed", slog.String("key", cacheKey), slog.Any("error", err))
	}
}
