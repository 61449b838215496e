package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partforge/configurator/internal/models"
)

// CartRepository persists cart lines (spec.md §3 "Cart"): a component line
// or a build-bundle line, distinguished by category.
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new cart repository.
func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// ListByUser returns every cart line for a user, oldest first.
func (r *CartRepository) ListByUser(userID uuid.UUID) ([]models.CartItem, error) {
	query := `
		SELECT id, user_id, category, component_id, price, quantity,
		       build_id, build_name, build_total_price, bundle_item_count,
		       created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var out []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err := scanCartItem(rows, &item); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}

	return out, nil
}

// ListSelected returns the owner-scoped cart lines among itemIDs (spec.md
// §4.5 step 1 "filter to itemIds when provided").
func (r *CartRepository) ListSelected(userID uuid.UUID, itemIDs []uuid.UUID) ([]models.CartItem, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, category, component_id, price, quantity,
		       build_id, build_name, build_total_price, bundle_item_count,
		       created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND id = ANY($2)`

	rows, err := r.db.Query(query, userID, pqUUIDArray(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list selected cart items: %w", err)
	}
	defer rows.Close()

	var out []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err := scanCartItem(rows, &item); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}

	return out, nil
}

// UpsertComponentLine adds a component to the cart, incrementing quantity on
// the existing line if one already exists (spec.md §8 "Cart item
// uniqueness").
func (r *CartRepository) UpsertComponentLine(userID, componentID uuid.UUID, category string, price decimal.Decimal, quantity int) (*models.CartItem, error) {
	query := `
		INSERT INTO cart_items (id, user_id, category, component_id, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, component_id) WHERE component_id IS NOT NULL DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			price = EXCLUDED.price,
			updated_at = NOW()
		RETURNING id, user_id, category, component_id, price, quantity,
		          build_id, build_name, build_total_price, bundle_item_count,
		          created_at, updated_at`

	item := &models.CartItem{}
	err := r.db.QueryRow(query, uuid.New(), userID, category, componentID, price, quantity).Scan(
		&item.ID, &item.UserID, &item.Category, &item.ComponentID, &item.Price, &item.Quantity,
		&item.BuildID, &item.BuildName, &item.BuildTotalPrice, &item.BundleItemCount,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart component line: %w", err)
	}

	return item, nil
}

// InsertBundleLine adds a build-bundle line to the cart (spec.md §6
// "POST /api/cart/add-build/:buildId", "POST /api/cart/addTempBuild").
// Bundle lines never collide on the component-line uniqueness constraint
// since component_id is NULL.
func (r *CartRepository) InsertBundleLine(userID, buildID uuid.UUID, buildName string, totalPrice decimal.Decimal, itemCount int) (*models.CartItem, error) {
	query := `
		INSERT INTO cart_items (id, user_id, category, build_id, build_name, build_total_price, bundle_item_count, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		RETURNING id, user_id, category, component_id, price, quantity,
		          build_id, build_name, build_total_price, bundle_item_count,
		          created_at, updated_at`

	item := &models.CartItem{}
	err := r.db.QueryRow(query, uuid.New(), userID, models.CategoryBuildBundle, buildID, buildName, totalPrice, itemCount).Scan(
		&item.ID, &item.UserID, &item.Category, &item.ComponentID, &item.Price, &item.Quantity,
		&item.BuildID, &item.BuildName, &item.BuildTotalPrice, &item.BundleItemCount,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert cart bundle line: %w", err)
	}

	return item, nil
}

// DecrementOrRemove implements spec.md §6 "DELETE /api/cart/:itemId
// (decrement or remove when qty=1)".
func (r *CartRepository) DecrementOrRemove(userID, itemID uuid.UUID) error {
	result, err := r.db.Exec(`
		UPDATE cart_items SET quantity = quantity - 1, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND quantity > 1`,
		itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to decrement cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	return r.RemoveRow(userID, itemID)
}

// RemoveRow deletes a cart line outright (spec.md §6 "DELETE
// /api/cart/deleteRow/:itemId").
func (r *CartRepository) RemoveRow(userID, itemID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("cart item not found")
	}

	return nil
}

// DeleteSelected removes exactly the given item ids, leaving the rest of the
// cart untouched (spec.md §4.5 step 7 "selective checkout").
func (r *CartRepository) DeleteSelected(tx *sql.Tx, userID uuid.UUID, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(`DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, userID, pqUUIDArray(itemIDs))
	if err != nil {
		return fmt.Errorf("failed to delete checked-out cart items: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCartItem(row rowScanner, item *models.CartItem) error {
	return row.Scan(
		&item.ID, &item.UserID, &item.Category, &item.ComponentID, &item.Price, &item.Quantity,
		&item.BuildID, &item.BuildName, &item.BuildTotalPrice, &item.BundleItemCount,
		&item.CreatedAt, &item.UpdatedAt,
	)
}

// pqUUIDArray adapts a []uuid.UUID for lib/pq's ANY($n) array binding.
func pqUUIDArray(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
