package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine holds the product id as a weak reference; the product may be
// deleted while the line still exists.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart keeps at most one line per product: Items is keyed by the product id
// string, which makes the merge-by-product invariant structural.
type Cart struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	Items     map[string]CartLine `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// Quantity has no lower bound here: zero or negative means "remove the line".
type UpdateQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

// CartLineView is a cart line joined with the current product record.
type CartLineView struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

type CartView struct {
	Items    []CartLineView `json:"items"`
	Subtotal float64        `json:"subtotal"`
}
