package orders

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/configurator/internal/blob"
	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/compatibility"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/repository"
	"github.com/partforge/configurator/internal/services"
	"github.com/partforge/configurator/internal/testutils"
)

func newTestEngine(t *testing.T) (*Engine, *sql.DB) {
	t.Helper()
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	buildRepo := repository.NewBuildRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	catalogAccessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	images := blob.NewResolver(testutils.SetupTestConfig().Blob)

	workspace := services.NewWorkspaceService(workspaceRepo, buildRepo, catalogAccessor, engine, images)

	return NewEngine(cartRepo, orderRepo, buildRepo, workspace, images), db
}

func TestEngine_CheckoutCart_ComponentLine_DecrementsStockAndClearsLine(t *testing.T) {
	orderEngine, db := newTestEngine(t)

	cat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	comp := testutils.SeedComponent(t, db, cat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 3, nil)

	userID := uuid.New()
	cartRepo := repository.NewCartRepository(db)
	_, err := cartRepo.UpsertComponentLine(userID, comp.ID, models.CategoryGPU, comp.Price, 2)
	require.NoError(t, err)

	order, items, err := orderEngine.CheckoutCart(userID, nil, "cod", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, decimal.NewFromInt(56000).String(), order.Total.String())
	assert.Equal(t, models.OrderPending, order.Status)

	var stock int
	require.NoError(t, db.QueryRow(`SELECT stock FROM components WHERE id = $1`, comp.ID).Scan(&stock))
	assert.Equal(t, 1, stock)

	remaining, err := cartRepo.ListByUser(userID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestEngine_CheckoutCart_EmptyCartFails(t *testing.T) {
	orderEngine, _ := newTestEngine(t)
	_, _, err := orderEngine.CheckoutCart(uuid.New(), nil, "cod", "")
	assert.Error(t, err)
}

func TestEngine_CheckoutCart_InsufficientStockRollsBack(t *testing.T) {
	orderEngine, db := newTestEngine(t)

	cat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	comp := testutils.SeedComponent(t, db, cat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 1, nil)

	userID := uuid.New()
	cartRepo := repository.NewCartRepository(db)
	_, err := cartRepo.UpsertComponentLine(userID, comp.ID, models.CategoryGPU, comp.Price, 2)
	require.NoError(t, err)

	_, _, err = orderEngine.CheckoutCart(userID, nil, "cod", "")
	require.Error(t, err)
	var stockErr *InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)

	var stock int
	require.NoError(t, db.QueryRow(`SELECT stock FROM components WHERE id = $1`, comp.ID).Scan(&stock))
	assert.Equal(t, 1, stock, "stock must be untouched after rollback")

	lines, err := cartRepo.ListByUser(userID)
	require.NoError(t, err)
	assert.Len(t, lines, 1, "cart line must survive a failed checkout")
}

func TestEngine_CheckoutSavedBuild_ExpandsInternalComponentsAndSoftDeletesBuild(t *testing.T) {
	orderEngine, db := newTestEngine(t)

	cpuCat := testutils.SeedCategory(t, db, models.CategoryCPU, "CPU")
	gpuCat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	cpu := testutils.SeedComponent(t, db, cpuCat.ID, models.CategoryCPU, "Ryzen 7", decimal.NewFromInt(15000), 5, nil)
	gpu := testutils.SeedComponent(t, db, gpuCat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 5, nil)

	userID := uuid.New()
	buildRepo := repository.NewBuildRepository(db)
	build := &models.SavedBuild{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "My Rig",
		Components: models.ComponentMap{
			models.CategoryCPU: cpu.ID,
			models.CategoryGPU: gpu.ID,
		},
		TotalPrice:    decimal.NewFromInt(43000),
		Compatibility: models.CompatibilityOK,
	}
	require.NoError(t, buildRepo.Create(build))

	order, items, err := orderEngine.CheckoutSavedBuild(userID, build.ID, "cod", "")
	require.NoError(t, err)
	assert.Equal(t, decimal.NewFromInt(43000).String(), order.Total.String())
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, models.CategoryBuildBundle, item.Category)
		require.NotNil(t, item.BuildID)
		assert.Equal(t, build.ID, *item.BuildID)
	}

	still, err := buildRepo.GetByID(userID, build.ID)
	require.NoError(t, err)
	assert.Nil(t, still, "soft-deleted build must no longer resolve for the owner")
}

func TestEngine_UpdateStatus_NormalizesCase(t *testing.T) {
	orderEngine, db := newTestEngine(t)
	orderRepo := repository.NewOrderRepository(db)

	tx, err := orderRepo.BeginTx()
	require.NoError(t, err)
	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Total: decimal.NewFromInt(100)}
	require.NoError(t, orderRepo.CreateOrder(tx, order))
	require.NoError(t, tx.Commit())

	updated, err := orderEngine.UpdateStatus(order.ID, "PAID")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, updated.Status)
	assert.NotNil(t, updated.PaidAt)
}
