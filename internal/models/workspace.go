package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TempBuild is the per-user transient workspace (spec.md §3 "Temp Build").
// The __source_build_id sentinel from the source system is modeled as a
// typed companion field, never stored inside the Components map (spec.md
// §9 "sentinel key in workspace map -> a typed companion field").
type TempBuild struct {
	UserID        uuid.UUID    `json:"user_id" db:"user_id"`
	Components    ComponentMap `json:"components" db:"components"`
	SourceBuildID *uuid.UUID   `json:"source_build_id,omitempty" db:"source_build_id"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// NewTempBuild returns an empty workspace for a user.
func NewTempBuild(userID uuid.UUID) *TempBuild {
	return &TempBuild{
		UserID:     userID,
		Components: make(ComponentMap),
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the
// caller's map.
func (t *TempBuild) Clone() *TempBuild {
	clone := &TempBuild{
		UserID:        t.UserID,
		Components:    make(ComponentMap, len(t.Components)),
		SourceBuildID: t.SourceBuildID,
		UpdatedAt:     t.UpdatedAt,
	}
	for k, v := range t.Components {
		clone.Components[k] = v
	}
	return clone
}

// CategoryKeySet returns the set of category keys currently populated, used
// by updateSaved's tolerant sentinel-less matching (spec.md §4.3).
func (t *TempBuild) CategoryKeySet() map[string]struct{} {
	out := make(map[string]struct{}, len(t.Components))
	for k := range t.Components {
		out[k] = struct{}{}
	}
	return out
}

// Summary is the computed total_price / power_usage / compatibility for an
// expanded build (spec.md §4.3 summary()).
type Summary struct {
	TotalPrice    decimal.Decimal `json:"total_price"`
	PowerUsageW   int             `json:"power_usage"`
	Compatibility string          `json:"compatibility"`
}
