package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses (spec.md §3).
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
	OrderRefunded  = "refunded"
)

// ValidOrderStatuses is the fixed set updateStatus validates against
// (spec.md §4.5, §7 "invalid status").
var ValidOrderStatuses = map[string]bool{
	OrderPending:   true,
	OrderPaid:      true,
	OrderShipped:   true,
	OrderCompleted: true,
	OrderCancelled: true,
	OrderRefunded:  true,
}

// DefaultPaymentMethod is used when checkout omits payment_method (spec.md §4.5).
const DefaultPaymentMethod = "cod"

// Order is the durable record produced by checkout (spec.md §3 "Order").
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	Total         decimal.Decimal `json:"total" db:"total"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	Status        string          `json:"status" db:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	ShippedAt     *time.Time      `json:"shipped_at,omitempty" db:"shipped_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty" db:"refunded_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line of a durable order, either a component line or a
// bundle-expansion line, with snapshot fields captured at order time (spec.md
// §3 "Order Item", §9 "Component snapshotting in order items").
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ComponentID *uuid.UUID      `json:"component_id,omitempty" db:"component_id"`
	BuildID     *uuid.UUID      `json:"build_id,omitempty" db:"build_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	PriceEach   decimal.Decimal `json:"price_each" db:"price_each"`
	Category    string          `json:"category" db:"category"`

	// Snapshot fields, copied from the live catalog at order-creation time so
	// later catalog edits or deletions cannot corrupt order history.
	ComponentName     string `json:"component_name" db:"component_name"`
	ComponentImage    *string `json:"component_image,omitempty" db:"component_image"`
	ComponentCategory string `json:"component_category" db:"component_category"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StatusTimestampField returns the *_at column name that updateStatus should
// stamp for a given status, or "" if that status has no associated timestamp
// (spec.md §4.5: paid/shipped/completed/cancelled/refunded each get one).
func StatusTimestampField(status string) string {
	switch status {
	case OrderPaid:
		return "paid_at"
	case OrderShipped:
		return "shipped_at"
	case OrderCompleted:
		return "completed_at"
	case OrderCancelled:
		return "cancelled_at"
	case OrderRefunded:
		return "refunded_at"
	default:
		return ""
	}
}
