package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partforge/configurator/internal/models"
)

// LockedComponent is the row-locked snapshot of a component the Order Engine
// reads for stock validation and order-item snapshotting (spec.md §4.5 step
// 2, §9 "component snapshotting in order items").
type LockedComponent struct {
	ID              uuid.UUID
	Name            string
	Price           decimal.Decimal
	Stock           int
	CategorySlug    string
	ImageBucketPath *string
}

// OrderRepository persists orders and order items, and owns the row-level
// locking reads the Order Engine's checkout transaction depends on.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// BeginTx opens the single transaction the whole checkout protocol runs in
// (spec.md §4.5 "Both operations run inside a single database transaction").
func (r *OrderRepository) BeginTx() (*sql.Tx, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	return tx, nil
}

// LockComponent issues the locking read spec.md §4.5 step 2 requires before
// any stock decision: "SELECT stock ... FOR UPDATE". It also carries the
// snapshot fields order items freeze at order time.
func (r *OrderRepository) LockComponent(tx *sql.Tx, componentID uuid.UUID) (*LockedComponent, error) {
	query := `
		SELECT c.id, c.name, c.price, c.stock, cat.slug, c.image_bucket_path
		FROM components c
		JOIN categories cat ON cat.id = c.category_id
		WHERE c.id = $1
		FOR UPDATE`

	lc := &LockedComponent{}
	err := tx.QueryRow(query, componentID).Scan(
		&lc.ID, &lc.Name, &lc.Price, &lc.Stock, &lc.CategorySlug, &lc.ImageBucketPath,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock component %s: %w", componentID, err)
	}

	return lc, nil
}

// DecrementStock applies step 6's stock decrement to a single locked
// component. Callers must have already locked the row via LockComponent
// within the same transaction.
func (r *OrderRepository) DecrementStock(tx *sql.Tx, componentID uuid.UUID, quantity int) error {
	_, err := tx.Exec(
		`UPDATE components SET stock = stock - $1, updated_at = NOW() WHERE id = $2`,
		quantity, componentID,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for component %s: %w", componentID, err)
	}
	return nil
}

// CreateOrder inserts the order row (spec.md §4.5 step 4), defaulting
// payment method and status as the protocol specifies.
func (r *OrderRepository) CreateOrder(tx *sql.Tx, order *models.Order) error {
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.DefaultPaymentMethod
	}
	order.Status = models.OrderPending

	query := `
		INSERT INTO orders (id, user_id, total, payment_method, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := tx.QueryRow(
		query, order.ID, order.UserID, order.Total, order.PaymentMethod, order.Notes, order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// InsertOrderItem inserts one order item (spec.md §4.5 step 5), component or
// bundle-internal, carrying the snapshot fields captured at lock time.
func (r *OrderRepository) InsertOrderItem(tx *sql.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (
			id, order_id, component_id, build_id, quantity, price_each, category,
			component_name, component_image, component_category
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := tx.QueryRow(
		query, item.ID, item.OrderID, item.ComponentID, item.BuildID, item.Quantity, item.PriceEach,
		item.Category, item.ComponentName, item.ComponentImage, item.ComponentCategory,
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

// GetByID returns an owner-scoped order, or (nil, nil) if it does not exist
// or belongs to another user (spec.md §6 "GET /api/orders/:id (owner-scoped)").
func (r *OrderRepository) GetByID(userID, orderID uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, user_id, total, payment_method, notes, status,
		       paid_at, shipped_at, completed_at, cancelled_at, refunded_at,
		       created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2`

	err := r.db.QueryRow(query, orderID, userID).Scan(
		&order.ID, &order.UserID, &order.Total, &order.PaymentMethod, &order.Notes, &order.Status,
		&order.PaidAt, &order.ShippedAt, &order.CompletedAt, &order.CancelledAt, &order.RefundedAt,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetByIDAny returns an order regardless of owner, for use by admin status
// updates (spec.md §4.5 "updateStatus ... business workflow is admin-driven").
func (r *OrderRepository) GetByIDAny(orderID uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, user_id, total, payment_method, notes, status,
		       paid_at, shipped_at, completed_at, cancelled_at, refunded_at,
		       created_at, updated_at
		FROM orders
		WHERE id = $1`

	err := r.db.QueryRow(query, orderID).Scan(
		&order.ID, &order.UserID, &order.Total, &order.PaymentMethod, &order.Notes, &order.Status,
		&order.PaidAt, &order.ShippedAt, &order.CompletedAt, &order.CancelledAt, &order.RefundedAt,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// ListByUser returns every order placed by a user, most recent first
// (spec.md §6 "GET /api/orders").
func (r *OrderRepository) ListByUser(userID uuid.UUID) ([]models.Order, error) {
	query := `
		SELECT id, user_id, total, payment_method, notes, status,
		       paid_at, shipped_at, completed_at, cancelled_at, refunded_at,
		       created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(
			&order.ID, &order.UserID, &order.Total, &order.PaymentMethod, &order.Notes, &order.Status,
			&order.PaidAt, &order.ShippedAt, &order.CompletedAt, &order.CancelledAt, &order.RefundedAt,
			&order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return out, nil
}

// ListItems returns every item belonging to an order.
func (r *OrderRepository) ListItems(orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, component_id, build_id, quantity, price_each, category,
		       component_name, component_image, component_category, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var out []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ComponentID, &item.BuildID, &item.Quantity, &item.PriceEach,
			&item.Category, &item.ComponentName, &item.ComponentImage, &item.ComponentCategory, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return out, nil
}

// UpdateStatus validates status against the fixed vocabulary, updates status
// and updated_at, and stamps the matching lifecycle timestamp (spec.md §4.5
// "Status transitions").
func (r *OrderRepository) UpdateStatus(orderID uuid.UUID, status string) (*models.Order, error) {
	if !models.ValidOrderStatuses[status] {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}

	timestampField := models.StatusTimestampField(status)

	var query string
	if timestampField != "" {
		query = fmt.Sprintf(`
			UPDATE orders SET status = $2, updated_at = NOW(), %s = NOW()
			WHERE id = $1
			RETURNING id, user_id, total, payment_method, notes, status,
			          paid_at, shipped_at, completed_at, cancelled_at, refunded_at,
			          created_at, updated_at`, timestampField)
	} else {
		query = `
			UPDATE orders SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING id, user_id, total, payment_method, notes, status,
			          paid_at, shipped_at, completed_at, cancelled_at, refunded_at,
			          created_at, updated_at`
	}

	order := &models.Order{}
	err := r.db.QueryRow(query, orderID, status).Scan(
		&order.ID, &order.UserID, &order.Total, &order.PaymentMethod, &order.Notes, &order.Status,
		&order.PaidAt, &order.ShippedAt, &order.CompletedAt, &order.CancelledAt, &order.RefundedAt,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}
