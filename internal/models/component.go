package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Component statuses (spec.md §3).
const (
	ComponentActive   = "active"
	ComponentInactive = "inactive"
)

// Component is a single sellable part belonging to one category.
//
// Visibility invariant (spec.md §3): status = active and stock > 0 is the
// necessary condition for appearing in user-facing listings.
type Component struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	CategoryID        uuid.UUID       `json:"category_id" db:"category_id"`
	CategorySlug      string          `json:"category" db:"-"`
	Name              string          `json:"name" db:"name" validate:"required,max=200"`
	Brand             string          `json:"brand" db:"brand"`
	Price             decimal.Decimal `json:"price" db:"price"`
	Stock             int             `json:"stock" db:"stock"`
	Status            string          `json:"status" db:"status"`
	LowStockThreshold int             `json:"low_stock_threshold" db:"low_stock_threshold"`
	Vendor            *string         `json:"vendor,omitempty" db:"vendor"`
	ImageBucketPath   *string         `json:"-" db:"image_bucket_path"`
	ImageURL          *string         `json:"image_url,omitempty" db:"-"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// IsVisible implements the spec.md §3 visibility invariant.
func (c *Component) IsVisible() bool {
	return c.Status == ComponentActive && c.Stock > 0
}

// RoundedPrice normalizes Price to two fractional digits (spec.md §3:
// "non-negative decimal, two fractional digits").
func (c *Component) RoundedPrice() decimal.Decimal {
	return c.Price.Round(2)
}

// ComponentWithSpecs is a Component joined with its resolved, category-typed
// specs map (spec.md §4.1 getComponentById).
type ComponentWithSpecs struct {
	Component
	Specs SpecMap `json:"specs"`
}

// ExpandedComponent is the placeholder-aware view the Build Workspace and
// Auto-Builder pass to the Compatibility Engine: either a real component with
// specs, or the "Missing Component" placeholder spec.md §4.3 expand()
// describes for allowMissing mode.
type ExpandedComponent struct {
	ID       *uuid.UUID `json:"id"`
	Name     string     `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string     `json:"category"`
	Specs    SpecMap    `json:"specs"`
}

// MissingComponentPlaceholder builds the sentinel record spec.md §4.3 expand()
// emits for a missing or dangling id in allowMissing mode.
func MissingComponentPlaceholder(category string) ExpandedComponent {
	return ExpandedComponent{
		ID:       nil,
		Name:     "Missing Component",
		Price:    decimal.Zero,
		Category: category,
		Specs:    SpecMap{},
	}
}

// IsPlaceholder reports whether this expanded component is a stand-in for a
// missing or dangling component id.
func (e ExpandedComponent) IsPlaceholder() bool {
	return e.ID == nil
}

// ExpandedBuild is a category -> expanded component map, the "build" argument
// the Compatibility Engine's check() receives (spec.md §4.2).
type ExpandedBuild map[string]ExpandedComponent
