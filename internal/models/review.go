package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is immutable once created; there is no update or delete path.
type Review struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type AddReviewRequest struct {
	Author  string `json:"author" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// ReviewList carries the reviews for a product (newest first) together with
// the product's stored aggregates.
type ReviewList struct {
	Reviews       []*Review `json:"reviews"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
}
