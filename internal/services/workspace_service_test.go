package services

import (
	"errors"
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

func newTestWorkspaceService(t *testing.T) *WorkspaceService {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	workspaceRepo := repository.NewWorkspaceRepository(db)
	buildRepo := repository.NewBuildRepository(db)
	catalogAccessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	images := blob.NewResolver(config.BlobConfig{BucketName: "test", PublicBase: "http://localhost/test"})

	return NewWorkspaceService(workspaceRepo, buildRepo, catalogAccessor, engine, images)
}

func TestWorkspaceService_Add_RejectsUnknownComponent(t *testing.T) {
	svc := newTestWorkspaceService(t)
	userID := uuid.New()

	_, err := svc.Add(userID, models.CategoryCPU, uuid.New())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestWorkspaceService_Summary_EmptyBuildReportsUnknownCompatibility(t *testing.T) {
	svc := newTestWorkspaceService(t)
	userID := uuid.New()

	tb, err := svc.Get(userID)
	require.NoError(t, err)

	expanded, err := svc.Expand(tb.Components, true)
	require.NoError(t, err)

	summary := svc.Summary(expanded)
	require.Equal(t, models.CompatibilityUnknown, summary.Compatibility)
	require.True(t, summary.TotalPrice.Equal(decimal.Zero))
}

func TestWorkspaceService_Load_UnknownBuildReturnsNotFound(t *testing.T) {
	svc := newTestWorkspaceService(t)
	userID := uuid.New()

	_, err := svc.Load(userID, uuid.New())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestWorkspaceService_AddThenSave_RoundTripsComponent(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	workspaceRepo := repository.NewWorkspaceRepository(db)
	buildRepo := repository.NewBuildRepository(db)
	catalogAccessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	images := blob.NewResolver(config.BlobConfig{BucketName: "test", PublicBase: "http://localhost/test"})
	svc := NewWorkspaceService(workspaceRepo, buildRepo, catalogAccessor, engine, images)

	cat := testutils.SeedCategory(t, db, models.CategoryCPU, "CPU")
	cpu := testutils.SeedComponent(t, db, cat.ID, models.CategoryCPU, "Ryzen 5 7600", decimal.NewFromFloat(229.00), 10, models.SpecMap{"socket": "AM5"})

	userID := uuid.New()
	tb, err := svc.Add(userID, models.CategoryCPU, cpu.ID)
	require.NoError(t, err)
	require.Equal(t, cpu.ID, tb.Components[models.CategoryCPU])

	build, err := svc.Save(userID, "My First Build")
	require.NoError(t, err)
	require.Equal(t, "My First Build", build.Name)
	require.True(t, build.TotalPrice.Equal(decimal.NewFromFloat(229.00)))
}
