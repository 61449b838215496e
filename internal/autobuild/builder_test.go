package autobuild

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/compatibility"
	"github.com/partforge/configurator/internal/config"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/testutils"
)

func TestBuilder_BuildFromPurpose_GamingAtBudget(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	accessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	cfg := testutils.SetupTestConfig().AutoBuild
	builder := NewBuilder(accessor, engine, cfg)

	cpuCat := testutils.SeedCategory(t, db, models.CategoryCPU, "CPU")
	moboCat := testutils.SeedCategory(t, db, models.CategoryMotherboard, "Motherboard")
	memCat := testutils.SeedCategory(t, db, models.CategoryMemory, "Memory")
	gpuCat := testutils.SeedCategory(t, db, models.CategoryGPU, "GPU")
	storageCat := testutils.SeedCategory(t, db, models.CategoryStorage, "Storage")
	psuCat := testutils.SeedCategory(t, db, models.CategoryPSU, "PSU")
	caseCat := testutils.SeedCategory(t, db, models.CategoryCase, "Case")
	coolerCat := testutils.SeedCategory(t, db, models.CategoryCPUCooler, "CPU Cooler")

	testutils.SeedComponent(t, db, cpuCat.ID, models.CategoryCPU, "Ryzen 7", decimal.NewFromInt(15000), 10,
		models.SpecMap{"socket": "am5", "tdp": 105, "cores": 8, "base_clock": 3.8, "threads": 16})
	testutils.SeedComponent(t, db, moboCat.ID, models.CategoryMotherboard, "B650 Board", decimal.NewFromInt(9000), 10,
		models.SpecMap{"socket": "am5", "memory_type": "ddr5", "form_factor": "atx", "max_memory_speed_mhz": 6000})
	testutils.SeedComponent(t, db, memCat.ID, models.CategoryMemory, "16GB Kit", decimal.NewFromInt(6000), 10,
		models.SpecMap{"type": "ddr5", "speed_mhz": 6000, "capacity_gb": 16})
	testutils.SeedComponent(t, db, gpuCat.ID, models.CategoryGPU, "RTX Card", decimal.NewFromInt(28000), 10,
		models.SpecMap{"tdp": 220, "length": 300, "performance_score": 9000})
	testutils.SeedComponent(t, db, storageCat.ID, models.CategoryStorage, "1TB NVMe", decimal.NewFromInt(4000), 10,
		models.SpecMap{"interface": "nvme", "capacity_gb": 1000})
	testutils.SeedComponent(t, db, psuCat.ID, models.CategoryPSU, "650W Gold", decimal.NewFromInt(5000), 10,
		models.SpecMap{"wattage": 650})
	testutils.SeedComponent(t, db, caseCat.ID, models.CategoryCase, "Mid Tower", decimal.NewFromInt(4000), 10,
		models.SpecMap{"form_factor_support": []interface{}{"atx"}, "max_gpu_length": 350, "max_cpu_cooler_height": 170})
	testutils.SeedComponent(t, db, coolerCat.ID, models.CategoryCPUCooler, "Air Cooler", decimal.NewFromInt(2000), 10,
		models.SpecMap{"compatible_sockets": []interface{}{"am5"}, "height": 150})

	budget := decimal.NewFromInt(80000)
	result, err := builder.BuildFromPurpose(BuildRequest{Purpose: PurposeGaming, Budget: &budget})
	require.NoError(t, err)

	for _, cat := range []string{models.CategoryCPU, models.CategoryMotherboard, models.CategoryMemory,
		models.CategoryPSU, models.CategoryCase, models.CategoryStorage, models.CategoryGPU} {
		_, ok := result[cat]
		assert.True(t, ok, "expected category %s to be filled", cat)
	}

	expanded, err := builder.expand(result)
	require.NoError(t, err)
	res := engine.CheckWholeBuild(expanded)
	assert.True(t, res.OK, res.Reason)
}

func TestBuilder_BuildFromPurpose_UnknownPurpose(t *testing.T) {
	builder := NewBuilder(nil, compatibility.NewEngine(1.25), config.AutoBuildConfig{})
	_, err := builder.BuildFromPurpose(BuildRequest{Purpose: "not-a-purpose"})
	assert.Error(t, err)
}

func TestBuilder_AutoComplete_InfersWorkstationFromMemory(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	accessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	cfg := testutils.SetupTestConfig().AutoBuild
	builder := NewBuilder(accessor, engine, cfg)

	memCat := testutils.SeedCategory(t, db, models.CategoryMemory, "Memory")
	mem := testutils.SeedComponent(t, db, memCat.ID, models.CategoryMemory, "64GB Kit", decimal.NewFromInt(12000), 10,
		models.SpecMap{"type": "ddr5", "speed_mhz": 6000, "capacity_gb": 64})

	expanded, err := builder.expand(models.ComponentMap{models.CategoryMemory: mem.ID})
	require.NoError(t, err)

	assert.Equal(t, PurposeWorkstation, InferPurpose(expanded))
}

func TestPartitionByScore_And_CPURankSelection(t *testing.T) {
	var candidates []candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, candidate{score: float64(i)})
	}

	bottom, middle, top := partitionByScore(candidates)
	assert.Len(t, bottom, 3)
	assert.Len(t, top, 3)
	assert.Len(t, middle, 4)

	best, _ := bestOf(top)
	assert.Equal(t, 9.0, best.score)

	worst, _ := worstOf(top)
	assert.Equal(t, 7.0, worst.score)
}

func TestPickPSU_PrefersCheapestMeetingRequirement(t *testing.T) {
	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	accessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	builder := NewBuilder(accessor, engine, config.AutoBuildConfig{PSUHeadroomPick: 1.3})

	cpuID, gpuID := uuid.New(), uuid.New()
	expanded := models.ExpandedBuild{
		models.CategoryCPU: models.ExpandedComponent{ID: &cpuID, Specs: models.SpecMap{"tdp": 100}},
		models.CategoryGPU: models.ExpandedComponent{ID: &gpuID, Specs: models.SpecMap{"tdp": 150}},
	}

	cheapSufficient := models.ComponentWithSpecs{Specs: models.SpecMap{"wattage": 400}}
	cheapSufficient.Price = decimal.NewFromInt(3000)
	expensiveSufficient := models.ComponentWithSpecs{Specs: models.SpecMap{"wattage": 750}}
	expensiveSufficient.Price = decimal.NewFromInt(9000)
	insufficient := models.ComponentWithSpecs{Specs: models.SpecMap{"wattage": 300}}
	insufficient.Price = decimal.NewFromInt(1000)

	picked, err := builder.pickPSU(expanded, []models.ComponentWithSpecs{insufficient, expensiveSufficient, cheapSufficient})
	require.NoError(t, err)
	assert.Equal(t, cheapSufficient.Price, picked.Price)
}
