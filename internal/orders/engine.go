// Package orders implements the Order Engine (C5): the transactional
// checkout protocol spec.md §4.5 describes, and the admin-driven status
// lifecycle that follows it.
package orders

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partforge/configurator/internal/blob"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/repository"
	"github.com/partforge/configurator/internal/services"
)

// InsufficientStockError is the recoverable 4xx spec.md §4.5 "Failure
// semantics" calls for: "Stock insufficiency is a recoverable 4xx returned
// to the client."
type InsufficientStockError struct {
	ComponentName string
	Remaining     int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d remaining", e.ComponentName, e.Remaining)
}

// Engine is the Order Engine (C5).
type Engine struct {
	cartRepo  *repository.CartRepository
	orderRepo *repository.OrderRepository
	buildRepo *repository.BuildRepository
	workspace *services.WorkspaceService
	images    *blob.Resolver
}

// NewEngine builds an Order Engine.
func NewEngine(cartRepo *repository.CartRepository, orderRepo *repository.OrderRepository, buildRepo *repository.BuildRepository, workspace *services.WorkspaceService, images *blob.Resolver) *Engine {
	return &Engine{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		buildRepo: buildRepo,
		workspace: workspace,
		images:    images,
	}
}

// checkoutLine is an internal, tx-independent view of one thing to be
// ordered: either a real component (quantity from the cart line) or a
// bundle-internal component (quantity always 1, tagged with its build).
type checkoutLine struct {
	componentID  uuid.UUID
	quantity     int
	lineCategory string
	buildID      *uuid.UUID
}

// CheckoutCart implements spec.md §4.5 checkoutCart(user, itemIds?,
// payment_method, notes).
func (e *Engine) CheckoutCart(userID uuid.UUID, itemIDs []uuid.UUID, paymentMethod, notes string) (*models.Order, []models.OrderItem, error) {
	var cartLines []models.CartItem
	var err error

	if len(itemIDs) > 0 {
		cartLines, err = e.cartRepo.ListSelected(userID, itemIDs)
		if err != nil {
			return nil, nil, err
		}
		if len(cartLines) == 0 {
			return nil, nil, fmt.Errorf("No valid items selected")
		}
	} else {
		cartLines, err = e.cartRepo.ListByUser(userID)
		if err != nil {
			return nil, nil, err
		}
		if len(cartLines) == 0 {
			return nil, nil, fmt.Errorf("Cart is empty")
		}
	}

	var lines []checkoutLine
	selectedIDs := make([]uuid.UUID, 0, len(cartLines))
	for _, item := range cartLines {
		selectedIDs = append(selectedIDs, item.ID)

		if item.IsBundle() {
			expanded, buildErr := e.expandBundle(*item.BuildID)
			if buildErr != nil {
				return nil, nil, buildErr
			}
			lines = append(lines, expanded...)
			continue
		}

		lines = append(lines, checkoutLine{
			componentID:  *item.ComponentID,
			quantity:     item.Quantity,
			lineCategory: item.Category,
		})
	}

	order, items, err := e.runCheckout(userID, lines, paymentMethod, notes, func(tx *sql.Tx) error {
		return e.cartRepo.DeleteSelected(tx, userID, selectedIDs)
	})
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// CheckoutSavedBuild implements spec.md §4.5 checkoutSavedBuild(user,
// buildId, payment_method, notes).
func (e *Engine) CheckoutSavedBuild(userID, buildID uuid.UUID, paymentMethod, notes string) (*models.Order, []models.OrderItem, error) {
	saved, err := e.buildRepo.GetByID(userID, buildID)
	if err != nil {
		return nil, nil, err
	}
	if saved == nil {
		return nil, nil, fmt.Errorf("build not found: %w", services.ErrNotFound)
	}

	lines, err := e.expandBundle(buildID)
	if err != nil {
		return nil, nil, err
	}

	return e.runCheckout(userID, lines, paymentMethod, notes, func(tx *sql.Tx) error {
		return e.buildRepo.SoftDeleteTx(tx, buildID)
	})
}

// expandBundle resolves a saved build's internal component list in strict
// mode (spec.md §4.5 step 1 "expand its component map (strict mode —
// placeholders excluded)"), tagging each with the build id so order items
// can carry it.
func (e *Engine) expandBundle(buildID uuid.UUID) ([]checkoutLine, error) {
	saved, err := e.buildRepo.GetByIDForOrder(buildID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("build not found: %w", services.ErrNotFound)
	}

	expanded, err := e.workspace.Expand(saved.Components, false)
	if err != nil {
		return nil, err
	}

	lines := make([]checkoutLine, 0, len(expanded))
	for _, component := range expanded {
		if component.IsPlaceholder() {
			continue
		}
		id := buildID
		lines = append(lines, checkoutLine{
			componentID:  *component.ID,
			quantity:     1,
			lineCategory: models.CategoryBuildBundle,
			buildID:      &id,
		})
	}

	return lines, nil
}

// runCheckout executes spec.md §4.5 steps 2-7 inside a single transaction:
// lock and validate stock, compute the total, insert the order and its
// items, decrement stock, then run the caller's finalize step (selective
// cart deletion or build soft-delete).
func (e *Engine) runCheckout(userID uuid.UUID, lines []checkoutLine, paymentMethod, notes string, finalize func(*sql.Tx) error) (*models.Order, []models.OrderItem, error) {
	tx, err := e.orderRepo.BeginTx()
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	locked := make([]*repository.LockedComponent, len(lines))
	total := decimal.Zero

	for i, line := range lines {
		lc, err := e.orderRepo.LockComponent(tx, line.componentID)
		if err != nil {
			return nil, nil, err
		}
		if lc == nil {
			return nil, nil, fmt.Errorf("component not found: %w", services.ErrNotFound)
		}
		if lc.Stock < line.quantity {
			return nil, nil, &InsufficientStockError{ComponentName: lc.Name, Remaining: lc.Stock}
		}

		locked[i] = lc
		total = total.Add(lc.Price.Mul(decimal.NewFromInt(int64(line.quantity))))
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Total:         total,
		PaymentMethod: paymentMethod,
	}
	if notes != "" {
		order.Notes = &notes
	}

	if err := e.orderRepo.CreateOrder(tx, order); err != nil {
		return nil, nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	for i, line := range lines {
		lc := locked[i]

		item := &models.OrderItem{
			ID:                uuid.New(),
			OrderID:           order.ID,
			ComponentID:       &lc.ID,
			BuildID:           line.buildID,
			Quantity:          line.quantity,
			PriceEach:         lc.Price,
			Category:          line.lineCategory,
			ComponentName:     lc.Name,
			ComponentCategory: lc.CategorySlug,
		}
		if url := e.images.URLFor(lc.ImageBucketPath); url != "" {
			item.ComponentImage = &url
		}

		if err := e.orderRepo.InsertOrderItem(tx, item); err != nil {
			return nil, nil, err
		}
		items = append(items, *item)

		if err := e.orderRepo.DecrementStock(tx, lc.ID, line.quantity); err != nil {
			return nil, nil, err
		}
	}

	if err := finalize(tx); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	return order, items, nil
}

// UpdateStatus implements spec.md §4.5 "updateStatus(orderId, status)".
func (e *Engine) UpdateStatus(orderID uuid.UUID, status string) (*models.Order, error) {
	return e.orderRepo.UpdateStatus(orderID, normalizeStatus(status))
}

// GetByID returns an owner-scoped order with its items.
func (e *Engine) GetByID(userID, orderID uuid.UUID) (*models.Order, []models.OrderItem, error) {
	order, err := e.orderRepo.GetByID(userID, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, nil
	}

	items, err := e.orderRepo.ListItems(order.ID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListByUser returns every order a user has placed.
func (e *Engine) ListByUser(userID uuid.UUID) ([]models.Order, error) {
	return e.orderRepo.ListByUser(userID)
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
