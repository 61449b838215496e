package autobuild

import "github.com/partforge/configurator/internal/models"

// Rank buckets place an affordable CPU within a tercile of its scored peers
// (spec.md §4.4, GLOSSARY "Rank bucket").
const (
	RankEntry   = "entry"
	RankMid     = "mid"
	RankMidHigh = "mid-high"
	RankHigh    = "high"
)

// Purpose names (spec.md §4.4 "Purpose profiles").
const (
	PurposeGaming      = "gaming"
	PurposeWorkstation = "workstation"
	PurposeStreaming   = "streaming"
	PurposeBasic       = "basic"
)

// Profile declares a purpose's selection priority order and per-category
// budget allocation fractions (spec.md §4.4). Fractions need not sum to 1;
// the remainder forms the shared _pool used for any category with no
// explicit fraction.
type Profile struct {
	Name          string
	TargetRAMGB   int
	CPURank       string
	PreferGPU     bool
	CategoryOrder []string
	Allocation    map[string]float64
}

// PoolFraction is the budget share left over after every explicit
// allocation, used as the soft ceiling for zero-fraction categories.
func (p Profile) PoolFraction() float64 {
	sum := 0.0
	for _, f := range p.Allocation {
		sum += f
	}
	remainder := 1 - sum
	if remainder < 0 {
		return 0
	}
	return remainder
}

// Profiles is the fixed set of purpose profiles the Auto-Builder chooses
// from (spec.md §4.4: "gaming, workstation, streaming, basic"). The exact
// target RAM, rank bucket, category order, and allocation fractions are not
// named by the spec; DESIGN.md records these as an Open Question decision.
var Profiles = map[string]Profile{
	PurposeGaming: {
		Name:        PurposeGaming,
		TargetRAMGB: 16,
		CPURank:     RankMidHigh,
		PreferGPU:   true,
		CategoryOrder: []string{
			models.CategoryCPU, models.CategoryMotherboard, models.CategoryMemory,
			models.CategoryGPU, models.CategoryStorage, models.CategoryPSU,
			models.CategoryCase, models.CategoryCPUCooler,
		},
		Allocation: map[string]float64{
			models.CategoryCPU:         0.20,
			models.CategoryMotherboard: 0.12,
			models.CategoryMemory:      0.08,
			models.CategoryGPU:         0.35,
			models.CategoryStorage:     0.08,
			models.CategoryPSU:         0.07,
			models.CategoryCase:        0.06,
		},
	},
	PurposeWorkstation: {
		Name:        PurposeWorkstation,
		TargetRAMGB: 32,
		CPURank:     RankHigh,
		PreferGPU:   false,
		CategoryOrder: []string{
			models.CategoryCPU, models.CategoryMotherboard, models.CategoryMemory,
			models.CategoryStorage, models.CategoryPSU, models.CategoryCase,
			models.CategoryCPUCooler, models.CategoryGPU,
		},
		Allocation: map[string]float64{
			models.CategoryCPU:         0.30,
			models.CategoryMotherboard: 0.15,
			models.CategoryMemory:      0.15,
			models.CategoryStorage:     0.12,
			models.CategoryPSU:         0.08,
			models.CategoryCase:        0.07,
			models.CategoryCPUCooler:   0.05,
		},
	},
	PurposeStreaming: {
		Name:        PurposeStreaming,
		TargetRAMGB: 32,
		CPURank:     RankMidHigh,
		PreferGPU:   true,
		CategoryOrder: []string{
			models.CategoryCPU, models.CategoryMotherboard, models.CategoryMemory,
			models.CategoryGPU, models.CategoryStorage, models.CategoryPSU,
			models.CategoryCase, models.CategoryCPUCooler,
		},
		Allocation: map[string]float64{
			models.CategoryCPU:         0.18,
			models.CategoryMotherboard: 0.10,
			models.CategoryMemory:      0.10,
			models.CategoryGPU:         0.30,
			models.CategoryStorage:     0.10,
			models.CategoryPSU:         0.08,
			models.CategoryCase:        0.07,
			models.CategoryCPUCooler:   0.05,
		},
	},
	PurposeBasic: {
		Name:        PurposeBasic,
		TargetRAMGB: 8,
		CPURank:     RankEntry,
		PreferGPU:   false,
		CategoryOrder: []string{
			models.CategoryCPU, models.CategoryMotherboard, models.CategoryMemory,
			models.CategoryStorage, models.CategoryPSU, models.CategoryCase,
			models.CategoryCPUCooler, models.CategoryGPU,
		},
		Allocation: map[string]float64{
			models.CategoryCPU:         0.22,
			models.CategoryMotherboard: 0.15,
			models.CategoryMemory:      0.10,
			models.CategoryStorage:     0.12,
			models.CategoryPSU:         0.10,
			models.CategoryCase:        0.08,
			models.CategoryCPUCooler:   0.05,
		},
	},
}

// InferPurpose implements spec.md §4.4 autoComplete()'s purpose inference:
// "workstation if memory.capacity_gb >= 32, else gaming".
func InferPurpose(expanded models.ExpandedBuild) string {
	if mem, ok := expanded[models.CategoryMemory]; ok && !mem.IsPlaceholder() {
		if capacity, ok := mem.Specs["capacity_gb"].(float64); ok && capacity >= 32 {
			return PurposeWorkstation
		}
	}
	return PurposeGaming
}
