package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"math"
	"strings"

	"github.com/cremfish/storefront/internal/cache"
	"github.com/cremfish/storefront/internal/errors"
	"github.com/cremfish/storefront/internal/models"
	repository "github.com/cremfish/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ReviewService interface {
	AddReview(ctx context.Context, productID uuid.UUID, req *models.AddReviewRequest) (*models.Review, error)
	ListReviews(ctx context.Context, productID uuid.UUID) (*models.ReviewList, error)
}

type reviewService struct {
	reviewRepo   repository.ReviewRepository
	productRepo  repository.ProductRepository
	productCache cache.Cache
	sanitizer    *bluemonday.Policy
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, productCache cache.Cache) ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		productRepo:  productRepo,
		productCache: productCache,
		sanitizer:    bluemonday.UGCPolicy(),
	}
}

func (s *reviewService) AddReview(ctx context.Context, productID uuid.UUID, req *models.AddReviewRequest) (*models.Review, error) {

	if req.Rating < 1 || req.Rating > 5 {
		return nil, errors.AddValidationError("rating", "must be between 1 and 5")
	}

	if strings.TrimSpace(req.Author) == "" {
		return nil, errors.AddValidationError("author", "is required")
	}

	if strings.TrimSpace(req.Comment) == "" {
		return nil, errors.AddValidationError("comment", "is required")
	}

	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: productID,
		Author:    strings.TrimSpace(req.Author),
		Rating:    req.Rating,
		Comment:   s.sanitizer.Sanitize(strings.TrimSpace(req.Comment)),
	}

	if err := s.reviewRepo.CreateReview(ctx, review); err != nil {
		return nil, errors.DatabaseError("Failed to create review").WithError(err)
	}

	if err := s.refreshAggregate(ctx, productID); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) ListReviews(ctx context.Context, productID uuid.UUID) (*models.ReviewList, error) {

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	reviews, err := s.reviewRepo.ListReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list reviews").WithError(err)
	}

	return &models.ReviewList{
		Reviews:       reviews,
		AverageRating: product.AverageRating,
		ReviewCount:   product.ReviewCount,
	}, nil
}

// refreshAggregate recomputes the stored average from all persisted reviews
// and writes it back, rounded to one decimal place.
func (s *reviewService) refreshAggregate(ctx context.Context, productID uuid.UUID) error {

	average, count, err := s.reviewRepo.ProductRatingStats(ctx, productID)
	if err != nil {
		return errors.DatabaseError("Failed to compute rating").WithError(err)
	}

	rounded := math.Round(average*10) / 10

	if err := s.productRepo.UpdateRating(ctx, productID, rounded, count); err != nil {
		return errors.DatabaseError("Failed to update product rating").WithError(err)
	}

	cacheKey := cache.Key(cache.ProductKeyPrefix, productID.String())
	_ = s.productCache.Delete(ctx, cacheKey)

	return nil
}
