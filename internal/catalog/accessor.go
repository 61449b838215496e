// Package catalog implements the Catalog Accessor (C1): read access to
// components and their typed specs, with a process-wide specs cache.
package catalog

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/models"
)

// reservedSpecKeys are stripped from every specs map returned to callers
// (spec.md §4.1, §8 "does not contain the reserved keys").
var reservedSpecKeys = []string{"id", "component_id", "created_at"}

// specTableBySlug is the category-slug-to-table dispatch map (spec.md §9
// "per-category table probing -> table dispatch"), replacing the source's
// eight-table probe with an O(1) lookup.
var specTableBySlug = map[string]string{
	models.CategoryCPU:         "cpu_specs",
	models.CategoryCPUCooler:   "cpu_cooler_specs",
	models.CategoryMotherboard: "motherboard_specs",
	models.CategoryGPU:         "gpu_specs",
	models.CategoryMemory:      "memory_specs",
	models.CategoryStorage:     "storage_specs",
	models.CategoryPSU:         "psu_specs",
	models.CategoryCase:        "case_specs",
}

// Accessor is the Catalog Accessor (C1).
type Accessor struct {
	db    *sql.DB
	cache *specsCache
}

// New builds a Catalog Accessor over the given database handle.
func New(db *sql.DB) *Accessor {
	return &Accessor{db: db, cache: newSpecsCache()}
}

// GetComponentByID returns a component joined with its category slug and
// specs, or (nil, nil) if the component does not exist (spec.md §4.1 "a
// missing component is not an error, it is a null return").
func (a *Accessor) GetComponentByID(id uuid.UUID) (*models.ComponentWithSpecs, error) {
	component, err := a.getComponent(id)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, nil
	}

	specs, err := a.GetSpecs(id, component.CategorySlug)
	if err != nil {
		return nil, err
	}

	return &models.ComponentWithSpecs{Component: *component, Specs: specs}, nil
}

// ListByCategory returns components of a category ordered by ascending
// price (spec.md §4.1).
func (a *Accessor) ListByCategory(categorySlug string) ([]models.ComponentWithSpecs, error) {
	query := `
		SELECT c.id, c.category_id, cat.slug, c.name, c.brand, c.price, c.stock,
		       c.status, c.low_stock_threshold, c.vendor, c.image_bucket_path,
		       c.created_at, c.updated_at
		FROM components c
		JOIN categories cat ON cat.id = c.category_id
		WHERE cat.slug = $1
		ORDER BY c.price ASC`

	rows, err := a.db.Query(query, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list components for category %s: %w", categorySlug, err)
	}
	defer rows.Close()

	var out []models.ComponentWithSpecs
	for rows.Next() {
		var comp models.Component
		if err := rows.Scan(
			&comp.ID, &comp.CategoryID, &comp.CategorySlug, &comp.Name, &comp.Brand,
			&comp.Price, &comp.Stock, &comp.Status, &comp.LowStockThreshold,
			&comp.Vendor, &comp.ImageBucketPath, &comp.CreatedAt, &comp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}

		specs, err := a.GetSpecs(comp.ID, categorySlug)
		if err != nil {
			return nil, err
		}

		out = append(out, models.ComponentWithSpecs{Component: comp, Specs: specs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate components: %w", err)
	}

	return out, nil
}

// GetSpecs resolves a component's typed specs by dispatching on its category
// slug to the matching spec table (spec.md §4.1, §9). A cache hit, including
// the empty-map sentinel for components with no specs row, short-circuits
// the database round trip.
func (a *Accessor) GetSpecs(id uuid.UUID, categorySlug string) (models.SpecMap, error) {
	if specs, ok := a.cache.get(id); ok {
		return specs, nil
	}

	table, ok := specTableBySlug[categorySlug]
	if !ok {
		// Unknown/non-spec category (e.g. build_bundle): treat as no specs.
		a.cache.set(id, models.SpecMap{})
		return models.SpecMap{}, nil
	}

	query := fmt.Sprintf(`SELECT attrs FROM %s WHERE component_id = $1`, table)

	var raw models.SpecMap
	err := a.db.QueryRow(query, id).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			a.cache.set(id, models.SpecMap{})
			return models.SpecMap{}, nil
		}
		return nil, fmt.Errorf("failed to get specs for component %s: %w", id, err)
	}

	if raw == nil {
		raw = models.SpecMap{}
	}
	for _, key := range reservedSpecKeys {
		delete(raw, key)
	}

	a.cache.set(id, raw)
	return raw, nil
}

// InvalidateSpecs drops a single component's cached specs. Admin CRUD calls
// this whenever it writes a component or its specs row (spec.md §4.1, §5).
func (a *Accessor) InvalidateSpecs(id uuid.UUID) {
	a.cache.invalidate(id)
}

// ListCategories returns every catalog category, ordered by slug. Backs the
// read-only admin catalog listing (SPEC_FULL.md "Supplemented features").
func (a *Accessor) ListCategories() ([]models.Category, error) {
	rows, err := a.db.Query(`SELECT id, slug, name FROM categories ORDER BY slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Slug, &cat.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return out, nil
}

func (a *Accessor) getComponent(id uuid.UUID) (*models.Component, error) {
	query := `
		SELECT c.id, c.category_id, cat.slug, c.name, c.brand, c.price, c.stock,
		       c.status, c.low_stock_threshold, c.vendor, c.image_bucket_path,
		       c.created_at, c.updated_at
		FROM components c
		JOIN categories cat ON cat.id = c.category_id
		WHERE c.id = $1`

	var comp models.Component
	err := a.db.QueryRow(query, id).Scan(
		&comp.ID, &comp.CategoryID, &comp.CategorySlug, &comp.Name, &comp.Brand,
		&comp.Price, &comp.Stock, &comp.Status, &comp.LowStockThreshold,
		&comp.Vendor, &comp.ImageBucketPath, &comp.CreatedAt, &comp.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get component %s: %w", id, err)
	}

	return &comp, nil
}
