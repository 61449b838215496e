package autobuild

import (
	"github.com/shopspring/decimal"

	"github.com/partforge/configurator/internal/models"
)

// isAffordable reports whether price fits both the category ceiling and
// whatever budget remains (spec.md §4.4 step 1/6).
func isAffordable(price, ceiling decimal.Decimal, remaining *decimal.Decimal) bool {
	if price.GreaterThan(ceiling) {
		return false
	}
	if remaining != nil && price.GreaterThan(*remaining) {
		return false
	}
	return true
}

func expandedOf(c models.ComponentWithSpecs) models.ExpandedComponent {
	id := c.ID
	return models.ExpandedComponent{
		ID:       &id,
		Name:     c.Name,
		Price:    c.Price,
		Category: c.CategorySlug,
		Specs:    c.Specs,
	}
}

// hardFilter applies the category-specific constraints spec.md §4.4 step 3
// derives from the parts already chosen in the running build. A constraint
// only applies when both the running build's relevant field and the
// candidate's are present — missing data never excludes a candidate.
func hardFilter(category string, expanded models.ExpandedBuild, pool []models.ComponentWithSpecs) []models.ComponentWithSpecs {
	switch category {
	case models.CategoryMotherboard:
		cpu, ok := expanded[models.CategoryCPU]
		if !ok || cpu.IsPlaceholder() {
			return pool
		}
		cpuSocket := normString(cpu.Specs["socket"])
		if cpuSocket == "" {
			return pool
		}
		return filterPool(pool, func(c models.ComponentWithSpecs) bool {
			moboSocket := normString(c.Specs["socket"])
			return moboSocket == "" || moboSocket == cpuSocket
		})

	case models.CategoryMemory:
		mobo, ok := expanded[models.CategoryMotherboard]
		if !ok || mobo.IsPlaceholder() {
			return pool
		}
		moboType := normString(mobo.Specs["memory_type"])
		if moboType == "" {
			return pool
		}
		return filterPool(pool, func(c models.ComponentWithSpecs) bool {
			memType := normString(c.Specs["type"])
			return memType == "" || memType == moboType
		})

	case models.CategoryCase:
		return filterPool(pool, func(c models.ComponentWithSpecs) bool {
			if mobo, ok := expanded[models.CategoryMotherboard]; ok && !mobo.IsPlaceholder() {
				moboFormFactor := normString(mobo.Specs["form_factor"])
				support := normStringList(c.Specs["form_factor_support"])
				if moboFormFactor != "" && len(support) > 0 && !containsString(support, moboFormFactor) {
					return false
				}
			}
			if gpu, ok := expanded[models.CategoryGPU]; ok && !gpu.IsPlaceholder() {
				length := normNumber(gpu.Specs["length"])
				maxLen := normNumber(c.Specs["max_gpu_length"])
				if length > 0 && maxLen > 0 && length > maxLen {
					return false
				}
			}
			return true
		})

	case models.CategoryCPUCooler:
		return filterPool(pool, func(c models.ComponentWithSpecs) bool {
			if cpu, ok := expanded[models.CategoryCPU]; ok && !cpu.IsPlaceholder() {
				cpuSocket := normString(cpu.Specs["socket"])
				sockets := normStringList(c.Specs["compatible_sockets"])
				if cpuSocket != "" && len(sockets) > 0 && !containsString(sockets, cpuSocket) {
					return false
				}
			}
			if cs, ok := expanded[models.CategoryCase]; ok && !cs.IsPlaceholder() {
				height := normNumber(c.Specs["height"])
				maxHeight := normNumber(cs.Specs["max_cpu_cooler_height"])
				if height > 0 && maxHeight > 0 && height > maxHeight {
					return false
				}
			}
			return true
		})

	default:
		return pool
	}
}

func filterPool(pool []models.ComponentWithSpecs, keep func(models.ComponentWithSpecs) bool) []models.ComponentWithSpecs {
	out := make([]models.ComponentWithSpecs, 0, len(pool))
	for _, c := range pool {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
