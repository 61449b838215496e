package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is either a component line or a build-bundle line (spec.md §3
// "Cart"). Exactly one of ComponentID or BuildID is set, distinguished by
// Category == CategoryBuildBundle.
type CartItem struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Category string    `json:"category" db:"category"`

	// Component line fields.
	ComponentID *uuid.UUID      `json:"component_id,omitempty" db:"component_id"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`

	// Build bundle line fields.
	BuildID          *uuid.UUID      `json:"build_id,omitempty" db:"build_id"`
	BuildName        *string         `json:"build_name,omitempty" db:"build_name"`
	BuildTotalPrice  decimal.Decimal `json:"build_total_price,omitempty" db:"build_total_price"`
	BundleItemCount  int             `json:"bundle_item_count,omitempty" db:"bundle_item_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsBundle reports whether this cart item is a build-bundle line.
func (c *CartItem) IsBundle() bool {
	return c.Category == CategoryBuildBundle
}
