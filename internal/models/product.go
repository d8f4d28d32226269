package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultProductImage is stored when an admin creates a product without an
// image; the upload endpoint returns the real reference later.
const DefaultProductImage = "/uploads/placeholder.png"

type Product struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Brand            string     `json:"brand"`
	Category         string     `json:"category"`
	Price            float64    `json:"price"`
	Stock            int        `json:"stock"`
	Description      string     `json:"description"`
	Summary          string     `json:"summary,omitempty"`
	Image            string     `json:"image"`
	AvailabilityDate *time.Time `json:"availability_date,omitempty"`
	AverageRating    float64    `json:"average_rating"`
	ReviewCount      int        `json:"review_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type CreateProductRequest struct {
	Name             string     `json:"name" validate:"required,min=2,max=200"`
	Brand            string     `json:"brand" validate:"required"`
	Category         string     `json:"category" validate:"required,oneof=Rods Reels Lines Lures Tackle"`
	Price            float64    `json:"price" validate:"required,gt=0"`
	Stock            int        `json:"stock" validate:"gte=0"`
	Description      string     `json:"description" validate:"required"`
	Summary          string     `json:"summary,omitempty"`
	Image            string     `json:"image,omitempty"`
	AvailabilityDate *time.Time `json:"availability_date,omitempty"`
}

type UpdateProductRequest struct {
	Name             *string    `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Brand            *string    `json:"brand,omitempty"`
	Category         *string    `json:"category,omitempty" validate:"omitempty,oneof=Rods Reels Lines Lures Tackle"`
	Price            *float64   `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock            *int       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Description      *string    `json:"description,omitempty"`
	Summary          *string    `json:"summary,omitempty"`
	Image            *string    `json:"image,omitempty"`
	AvailabilityDate *time.Time `json:"availability_date,omitempty"`
}

// Sort orders accepted by the product listing.
const (
	SortNameAsc   = "name"
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
	SortStockDesc = "stockDesc"
)

// ProductFilter is built from listing query parameters; zero values mean
// "no constraint".
type ProductFilter struct {
	Category  string
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	InStock   bool
	MinRating *float64
	Brands    []string
	Sort      string
	Page      int
	Limit     int
}

type ProductPage struct {
	Products   []*Product `json:"products"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	Page       int        `json:"page"`
}
