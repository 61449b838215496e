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

func TestCartRepository_UpsertComponentLine_IncrementsQuantityOnConflict(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewCartRepository(db)
	cat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	comp := testutils.SeedComponent(t, db, cat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 10, nil)

	userID := uuid.New()

	first, err := repo.UpsertComponentLine(userID, comp.ID, models.CategoryGPU, comp.Price, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	second, err := repo.UpsertComponentLine(userID, comp.ID, models.CategoryGPU, comp.Price, 2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	lines, err := repo.ListByUser(userID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCartRepository_BundleLines_DoNotCollideWithComponentLines(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewCartRepository(db)
	userID := uuid.New()

	_, err := repo.InsertBundleLine(userID, uuid.New(), "My Rig", decimal.NewFromInt(50000), 5)
	require.NoError(t, err)
	_, err = repo.InsertBundleLine(userID, uuid.New(), "My Other Rig", decimal.NewFromInt(60000), 6)
	require.NoError(t, err)

	lines, err := repo.ListByUser(userID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, line.IsBundle())
	}
}

func TestCartRepository_DecrementOrRemove(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewCartRepository(db)
	cat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	comp := testutils.SeedComponent(t, db, cat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 10, nil)
	userID := uuid.New()

	item, err := repo.UpsertComponentLine(userID, comp.ID, models.CategoryGPU, comp.Price, 2)
	require.NoError(t, err)

	require.NoError(t, repo.DecrementOrRemove(userID, item.ID))
	lines, err := repo.ListByUser(userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)

	require.NoError(t, repo.DecrementOrRemove(userID, item.ID))
	lines, err = repo.ListByUser(userID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartRepository_ListSelected_OwnerScoped(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	repo := NewCartRepository(db)
	cat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	comp := testutils.SeedComponent(t, db, cat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 10, nil)

	owner := uuid.New()
	other := uuid.New()

	mine, err := repo.UpsertComponentLine(owner, comp.ID, models.CategoryGPU, comp.Price, 1)
	require.NoError(t, err)
	theirs, err := repo.UpsertComponentLine(other, comp.ID, models.CategoryGPU, comp.Price, 1)
	require.NoError(t, err)

	selected, err := repo.ListSelected(owner, []uuid.UUID{mine.ID, theirs.ID})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, mine.ID, selected[0].ID)
}
