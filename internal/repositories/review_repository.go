package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cremfish/storefront/internal/models"
	"github.com/cremfish/storefront/internal/utils"
	"github.com/google/uuid"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error)
	ProductRatingStats(ctx context.Context, productID uuid.UUID) (float64, int, error)
}

type reviewRepository struct {
	DB *sql.DB
}

func NewReviewRepo(db *sql.DB) ReviewRepository {
	return &reviewRepository{DB: db}
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *models.Review) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO reviews (id, product_id, author, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, review.ID, review.ProductID, review.Author, review.Rating, review.Comment).
		Scan(&review.CreatedAt)
}

func (r *reviewRepository) ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, product_id, author, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	defer rows.Close()

	var reviews []*models.Review

	for rows.Next() {
		review := &models.Review{}

		err := rows.Scan(&review.ID, &review.ProductID, &review.Author, &review.Rating, &review.Comment, &review.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

// ProductRatingStats recomputes the aggregate from every persisted review of
// the product in one scan. Always a full recompute, never an incremental
// running average, so the stored aggregate cannot drift.
func (r *reviewRepository) ProductRatingStats(ctx context.Context, productID uuid.UUID) (float64, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var (
		average float64
		count   int
	)

	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE product_id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, productID).Scan(&average, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute rating stats: %w", err)
	}

	return average, count, nil
}
