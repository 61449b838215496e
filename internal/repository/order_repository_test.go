package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/testutils"
)

func TestOrderRepository_LockComponent_CarriesSnapshotFields(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewOrderRepository(db)
	cat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	comp := testutils.SeedComponent(t, db, cat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 5, nil)

	tx, err := repo.BeginTx()
	require.NoError(t, err)
	defer tx.Rollback()

	lc, err := repo.LockComponent(tx, comp.ID)
	require.NoError(t, err)
	require.NotNil(t, lc)
	assert.Equal(t, "RTX Card", lc.Name)
	assert.Equal(t, models.CategoryGPU, lc.CategorySlug)
	assert.Equal(t, 5, lc.Stock)
}

func TestOrderRepository_LockComponent_MissingReturnsNil(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewOrderRepository(db)
	tx, err := repo.BeginTx()
	require.NoError(t, err)
	defer tx.Rollback()

	lc, err := repo.LockComponent(tx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, lc)
}

func TestOrderRepository_DecrementStock_CommitsOnlyAfterTxCommit(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewOrderRepository(db)
	cat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	comp := testutils.SeedComponent(t, db, cat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 5, nil)

	tx, err := repo.BeginTx()
	require.NoError(t, err)

	_, err = repo.LockComponent(tx, comp.ID)
	require.NoError(t, err)
	require.NoError(t, repo.DecrementStock(tx, comp.ID, 2))
	require.NoError(t, tx.Commit())

	var stock int
	require.NoError(t, db.QueryRow(`SELECT stock FROM components WHERE id = $1`, comp.ID).Scan(&stock))
	assert.Equal(t, 3, stock)
}

func TestOrderRepository_CreateOrderAndInsertOrderItem(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewOrderRepository(db)
	cat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	comp := testutils.SeedComponent(t, db, cat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 5, nil)
	userID := uuid.New()

	tx, err := repo.BeginTx()
	require.NoError(t, err)

	order := &models.Order{ID: uuid.New(), UserID: userID, Total: decimal.NewFromInt(28000)}
	require.NoError(t, repo.CreateOrder(tx, order))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.DefaultPaymentMethod, order.PaymentMethod)

	item := &models.OrderItem{
		ID: uuid.New(), OrderID: order.ID, ComponentID: &comp.ID, Quantity: 1,
		PriceEach: comp.Price, Category: models.CategoryGPU,
		ComponentName: comp.Name, ComponentCategory: models.CategoryGPU,
	}
	require.NoError(t, repo.InsertOrderItem(tx, item))
	require.NoError(t, tx.Commit())

	items, err := repo.ListItems(order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, comp.Name, items[0].ComponentName)
}

func TestOrderRepository_UpdateStatus_StampsTimestamp(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewOrderRepository(db)
	userID := uuid.New()

	tx, err := repo.BeginTx()
	require.NoError(t, err)
	order := &models.Order{ID: uuid.New(), UserID: userID, Total: decimal.NewFromInt(100)}
	require.NoError(t, repo.CreateOrder(tx, order))
	require.NoError(t, tx.Commit())

	updated, err := repo.UpdateStatus(order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
	assert.NotNil(t, updated.ShippedAt)
	assert.Nil(t, updated.PaidAt)

	_, err = repo.UpdateStatus(order.ID, "not-a-status")
	assert.Error(t, err)
}

func TestOrderRepository_GetByID_OwnerScoped(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewOrderRepository(db)
	owner := uuid.New()
	other := uuid.New()

	tx, err := repo.BeginTx()
	require.NoError(t, err)
	order := &models.Order{ID: uuid.New(), UserID: owner, Total: decimal.NewFromInt(100)}
	require.NoError(t, repo.CreateOrder(tx, order))
	require.NoError(t, tx.Commit())

	found, err := repo.GetByID(owner, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	notFound, err := repo.GetByID(other, order.ID)
	require.NoError(t, err)
	assert.Nil(t, notFound)
}
