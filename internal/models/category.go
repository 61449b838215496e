package models

import "github.com/google/uuid"

// Category slugs, fixed at seed time and immutable during operation (spec.md §3).
const (
	CategoryCPU        = "cpu"
	CategoryCPUCooler   = "cpu_cooler"
	CategoryMotherboard = "motherboard"
	CategoryGPU         = "gpu"
	CategoryMemory      = "memory"
	CategoryStorage     = "storage"
	CategoryPSU         = "psu"
	CategoryCase        = "case"

	// CategoryBuildBundle is not a catalog category; it marks a cart item /
	// order item line whose payload is a saved-build bundle expansion.
	CategoryBuildBundle = "build_bundle"
)

// AllCategorySlugs lists every catalog category in probe order (spec.md §4.1:
// "the first that yields a row defines the specs").
var AllCategorySlugs = []string{
	CategoryCPU,
	CategoryCPUCooler,
	CategoryMotherboard,
	CategoryGPU,
	CategoryMemory,
	CategoryStorage,
	CategoryPSU,
	CategoryCase,
}

// RequiredCategorySlugs is the set of categories a saved build needs present
// to be considered "ok" rather than merely "incomplete" (spec.md §4.3 save()).
var RequiredCategorySlugs = []string{
	CategoryCPU,
	CategoryMotherboard,
	CategoryMemory,
	CategoryPSU,
	CategoryCase,
}

// IsValidCategorySlug reports whether slug names one of the eight catalog
// categories.
func IsValidCategorySlug(slug string) bool {
	for _, s := range AllCategorySlugs {
		if s == slug {
			return true
		}
	}
	return false
}

// Category is a component classification, created at seed and immutable
// thereafter.
type Category struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Slug string    `json:"slug" db:"slug"`
	Name string    `json:"name" db:"name"`
}
