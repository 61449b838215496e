package compatibility

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/partforge/configurator/internal/models"
)

func component(category string, specs models.SpecMap) models.ExpandedComponent {
	id := uuid.New()
	return models.ExpandedComponent{
		ID:       &id,
		Name:     category,
		Price:    decimal.Zero,
		Category: category,
		Specs:    specs,
	}
}

func TestEngine_CPUSocketMismatch(t *testing.T) {
	engine := NewEngine(1.25)

	build := models.ExpandedBuild{
		models.CategoryMotherboard: component(models.CategoryMotherboard, models.SpecMap{"socket": "AM5"}),
	}
	cpu := component(models.CategoryCPU, models.SpecMap{"socket": "LGA1700"})

	res := engine.Check(build, models.CategoryCPU, cpu)
	assert.False(t, res.OK)
	assert.Equal(t, "CPU socket does not match motherboard", res.Reason)
}

func TestEngine_CPUSocketMatch(t *testing.T) {
	engine := NewEngine(1.25)

	build := models.ExpandedBuild{
		models.CategoryMotherboard: component(models.CategoryMotherboard, models.SpecMap{"socket": "AM5"}),
	}
	cpu := component(models.CategoryCPU, models.SpecMap{"socket": "am5"})

	res := engine.Check(build, models.CategoryCPU, cpu)
	assert.True(t, res.OK)
}

func TestEngine_Symmetric(t *testing.T) {
	engine := NewEngine(1.25)

	cpu := component(models.CategoryCPU, models.SpecMap{"socket": "LGA1700"})
	mobo := component(models.CategoryMotherboard, models.SpecMap{"socket": "AM5"})

	resA := engine.Check(models.ExpandedBuild{models.CategoryCPU: cpu}, models.CategoryMotherboard, mobo)
	resB := engine.Check(models.ExpandedBuild{models.CategoryMotherboard: mobo}, models.CategoryCPU, cpu)

	assert.Equal(t, resA.OK, resB.OK)
}

func TestEngine_PSUHeadroom(t *testing.T) {
	engine := NewEngine(1.25)

	build := models.ExpandedBuild{
		models.CategoryCPU: component(models.CategoryCPU, models.SpecMap{"tdp": 125}),
		models.CategoryGPU: component(models.CategoryGPU, models.SpecMap{"tdp": 285}),
	}

	insufficientPSU := component(models.CategoryPSU, models.SpecMap{"wattage": 500})
	res := engine.Check(build, models.CategoryPSU, insufficientPSU)
	assert.False(t, res.OK)
	assert.Equal(t, "PSU wattage insufficient for the build", res.Reason)

	sufficientPSU := component(models.CategoryPSU, models.SpecMap{"wattage": 650})
	res = engine.Check(build, models.CategoryPSU, sufficientPSU)
	assert.True(t, res.OK)
}

func TestEngine_MissingDataIsAllow(t *testing.T) {
	engine := NewEngine(1.25)

	// Cooler declares no compatible_sockets at all -> rule 6 is a no-op.
	build := models.ExpandedBuild{
		models.CategoryCPU: component(models.CategoryCPU, models.SpecMap{"socket": "am5"}),
	}
	cooler := component(models.CategoryCPUCooler, models.SpecMap{})

	res := engine.Check(build, models.CategoryCPUCooler, cooler)
	assert.True(t, res.OK)
}

func TestEngine_StorageInterfaceUnknownMotherboardAllows(t *testing.T) {
	engine := NewEngine(1.25)

	build := models.ExpandedBuild{
		models.CategoryMotherboard: component(models.CategoryMotherboard, models.SpecMap{}),
	}
	storage := component(models.CategoryStorage, models.SpecMap{"interface": "NVMe"})

	res := engine.Check(build, models.CategoryStorage, storage)
	assert.True(t, res.OK)
}

func TestEngine_StorageInterfaceNVMeRequiresSlot(t *testing.T) {
	engine := NewEngine(1.25)

	build := models.ExpandedBuild{
		models.CategoryMotherboard: component(models.CategoryMotherboard, models.SpecMap{
			"storage_support": []interface{}{"NVMe", "SATA"},
			"nvme_slots":       0,
		}),
	}
	storage := component(models.CategoryStorage, models.SpecMap{"interface": "NVMe"})

	res := engine.Check(build, models.CategoryStorage, storage)
	assert.False(t, res.OK)
}

func TestEngine_CheckWholeBuild_AllCompatible(t *testing.T) {
	engine := NewEngine(1.25)

	expanded := models.ExpandedBuild{
		models.CategoryCPU:          component(models.CategoryCPU, models.SpecMap{"socket": "am5", "tdp": 65}),
		models.CategoryMotherboard:  component(models.CategoryMotherboard, models.SpecMap{"socket": "am5", "memory_type": "ddr5", "form_factor": "atx"}),
		models.CategoryMemory:       component(models.CategoryMemory, models.SpecMap{"type": "ddr5", "speed_mhz": 6000}),
		models.CategoryPSU:          component(models.CategoryPSU, models.SpecMap{"wattage": 750}),
		models.CategoryCase:         component(models.CategoryCase, models.SpecMap{"form_factor_support": []interface{}{"atx"}}),
	}

	res := engine.CheckWholeBuild(expanded)
	assert.True(t, res.OK, res.Reason)
}
