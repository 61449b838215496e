package services

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/partforge/configurator/internal/blob"
	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/compatibility"
	"github.com/partforge/configurator/internal/config"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/repository"
	"github.com/partforge/configurator/internal/testutils"
)

func newTestCartService(t *testing.T, db *sql.DB) *CartService {
	cartRepo := repository.NewCartRepository(db)
	buildRepo := repository.NewBuildRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	catalogAccessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	images := blob.NewResolver(config.BlobConfig{BucketName: "test", PublicBase: "http://localhost/test"})

	workspaceService := NewWorkspaceService(workspaceRepo, buildRepo, catalogAccessor, engine, images)
	return NewCartService(cartRepo, buildRepo, catalogAccessor, workspaceService)
}

func TestCartService_AddComponent_RejectsUnknownComponent(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	svc := newTestCartService(t, db)
	userID := uuid.New()

	_, err := svc.AddComponent(userID, uuid.New(), 1)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_AddComponent_InsertsAndDefaultsQuantity(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	svc := newTestCartService(t, db)
	userID := uuid.New()

	cat := testutils.SeedCategory(t, db, models.CategoryMemory, "Memory")
	ram := testutils.SeedComponent(t, db, cat.ID, models.CategoryMemory, "Vengeance 32GB", decimal.NewFromFloat(99.99), 10, models.SpecMap{"capacity_gb": 32})

	item, err := svc.AddComponent(userID, ram.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 1, item.Quantity)
	require.Equal(t, models.CategoryMemory, item.Category)
	require.NotNil(t, item.ComponentID)
	require.Equal(t, ram.ID, *item.ComponentID)

	items, err := svc.List(userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCartService_AddComponent_UpsertsSameLine(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	svc := newTestCartService(t, db)
	userID := uuid.New()

	cat := testutils.SeedCategory(t, db, models.CategoryStorage, "Storage")
	ssd := testutils.SeedComponent(t, db, cat.ID, models.CategoryStorage, "970 EVO Plus 1TB", decimal.NewFromFloat(69.99), 20, models.SpecMap{"interface": "NVMe"})

	_, err := svc.AddComponent(userID, ssd.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddComponent(userID, ssd.ID, 2)
	require.NoError(t, err)

	items, err := svc.List(userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].Quantity)
}

func TestCartService_AddBuild_RejectsUnknownBuild(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	svc := newTestCartService(t, db)
	userID := uuid.New()

	_, err := svc.AddBuild(userID, uuid.New())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_AddTempBuild_AddsOneLinePerPopulatedCategory(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	cartRepo := repository.NewCartRepository(db)
	buildRepo := repository.NewBuildRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	catalogAccessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	images := blob.NewResolver(config.BlobConfig{BucketName: "test", PublicBase: "http://localhost/test"})

	workspaceService := NewWorkspaceService(workspaceRepo, buildRepo, catalogAccessor, engine, images)
	svc := NewCartService(cartRepo, buildRepo, catalogAccessor, workspaceService)

	cpuCat := testutils.SeedCategory(t, db, models.CategoryCPU, "CPU")
	cpu := testutils.SeedComponent(t, db, cpuCat.ID, models.CategoryCPU, "Ryzen 5 7600", decimal.NewFromFloat(229.00), 10, models.SpecMap{"socket": "AM5"})

	userID := uuid.New()
	_, err := workspaceService.Add(userID, models.CategoryCPU, cpu.ID)
	require.NoError(t, err)

	added, err := svc.AddTempBuild(userID)
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Equal(t, models.CategoryCPU, added[0].Category)

	items, err := svc.List(userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCartService_DecrementOrRemove_RemovesAtQuantityOne(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	svc := newTestCartService(t, db)
	userID := uuid.New()

	cat := testutils.SeedCategory(t, db, models.CategoryPSU, "Power Supply")
	psu := testutils.SeedComponent(t, db, cat.ID, models.CategoryPSU, "RM750x", decimal.NewFromFloat(119.99), 10, models.SpecMap{"wattage": 750})

	item, err := svc.AddComponent(userID, psu.ID, 1)
	require.NoError(t, err)

	err = svc.DecrementOrRemove(userID, item.ID)
	require.NoError(t, err)

	items, err := svc.List(userID)
	require.NoError(t, err)
	require.Len(t, items, 0)
}

func TestCartService_DecrementOrRemove_DecrementsAboveOne(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	svc := newTestCartService(t, db)
	userID := uuid.New()

	cat := testutils.SeedCategory(t, db, models.CategoryPSU, "Power Supply")
	psu := testutils.SeedComponent(t, db, cat.ID, models.CategoryPSU, "MWE Gold 650", decimal.NewFromFloat(79.99), 10, models.SpecMap{"wattage": 650})

	item, err := svc.AddComponent(userID, psu.ID, 3)
	require.NoError(t, err)

	err = svc.DecrementOrRemove(userID, item.ID)
	require.NoError(t, err)

	items, err := svc.List(userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity)
}

func TestCartService_RemoveRow_DeletesRegardlessOfQuantity(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	svc := newTestCartService(t, db)
	userID := uuid.New()

	cat := testutils.SeedCategory(t, db, models.CategoryCase, "Case")
	pcCase := testutils.SeedComponent(t, db, cat.ID, models.CategoryCase, "4000D Airflow", decimal.NewFromFloat(104.99), 10, models.SpecMap{"max_gpu_length": 360})

	item, err := svc.AddComponent(userID, pcCase.ID, 5)
	require.NoError(t, err)

	err = svc.RemoveRow(userID, item.ID)
	require.NoError(t, err)

	items, err := svc.List(userID)
	require.NoError(t, err)
	require.Len(t, items, 0)
}
