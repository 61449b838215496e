package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compatibility states persisted on a saved build (spec.md §3, §6).
const (
	CompatibilityOK         = "ok"
	CompatibilityIncomplete = "incomplete"
	CompatibilityInvalid    = "invalid"
	CompatibilityUnknown    = "unknown"
)

// SavedBuild is a named snapshot of a workspace with denormalized totals
// (spec.md §3 "Saved Build").
type SavedBuild struct {
	ID            uuid.UUID            `json:"id" db:"id"`
	UserID        uuid.UUID            `json:"user_id" db:"user_id"`
	Name          string               `json:"name" db:"name" validate:"required,max=200"`
	Components    ComponentMap         `json:"components" db:"components"`
	TotalPrice    decimal.Decimal      `json:"total_price" db:"total_price"`
	PowerUsageW   int                  `json:"power_usage" db:"power_usage"`
	Compatibility string               `json:"compatibility" db:"compatibility"`
	ImageComponentID *uuid.UUID        `json:"-" db:"image_component_id"`
	ImageURL      *string              `json:"image_url,omitempty" db:"-"`
	CreatedAt     time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" db:"updated_at"`
	IsSaved       bool                 `json:"-" db:"is_saved"`
}

// ImagePriorityOrder is the category priority spec.md §4.3 save() uses to
// pick a saved build's representative image: "case -> gpu -> cpu ->
// motherboard -> memory".
var ImagePriorityOrder = []string{
	CategoryCase,
	CategoryGPU,
	CategoryCPU,
	CategoryMotherboard,
	CategoryMemory,
}
