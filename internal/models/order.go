package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLine snapshots the unit price at checkout time, so historical order
// totals do not drift when the product's price changes later.
type OrderLine struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

// Order is an append-only historical record; it is never mutated or deleted.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Lines     []OrderLine `json:"lines"`
	CreatedAt time.Time   `json:"ordered_at"`
}

// AdminOrder is an order with the owning username attached, for the
// admin-wide listing.
type AdminOrder struct {
	Order
	Username string `json:"username"`
}

// OrderLineView resolves a line against the current product catalogue.
// ProductDeleted marks lines whose product no longer exists; Name and Image
// are zero in that case.
type OrderLineView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	Name           string    `json:"name,omitempty"`
	Image          string    `json:"image,omitempty"`
	ProductDeleted bool      `json:"product_deleted,omitempty"`
}

type OrderView struct {
	ID        uuid.UUID       `json:"id"`
	Lines     []OrderLineView `json:"lines"`
	Total     float64         `json:"total"`
	OrderedAt time.Time       `json:"ordered_at"`
}

type AdminOrderView struct {
	OrderView
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}
