// Package compatibility implements the Compatibility Engine (C2): pairwise
// and whole-build rule checking over an expanded PC build.
package compatibility

import (
	"math"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/partforge/configurator/internal/models"
)

// Result is the outcome of a compatibility check.
type Result struct {
	OK     bool
	Reason string
}

func ok() Result { return Result{OK: true} }

func fail(reason string) Result { return Result{OK: false, Reason: reason} }

// Engine is the Compatibility Engine (C2). It is stateless — every
// dependency it needs (the PSU headroom constants) is passed in at
// construction from configuration, per spec.md §9 "parameters of the
// design, not implementation artifacts".
type Engine struct {
	psuHeadroomCheck float64
}

// NewEngine builds a Compatibility Engine. headroomCheck is the multiplier
// applied to (cpu.tdp + gpu.tdp) when validating an existing/candidate PSU
// (spec.md §4.2 rule 7; default 1.25).
func NewEngine(headroomCheck float64) *Engine {
	return &Engine{psuHeadroomCheck: headroomCheck}
}

// Check evaluates whether candidate can be placed into category given the
// rest of the expanded build (spec.md §4.2 "check(build, category,
// candidate)"). build must NOT already contain an entry for category.
func (e *Engine) Check(build models.ExpandedBuild, category string, candidate models.ExpandedComponent) Result {
	merged := make(models.ExpandedBuild, len(build)+1)
	for k, v := range build {
		merged[k] = v
	}
	merged[category] = candidate

	return e.evaluate(merged, category)
}

// IsCompatible is a thin wrapper over Check using the candidate's own
// category field (spec.md §4.2 "Filter check").
func (e *Engine) IsCompatible(build models.ExpandedBuild, candidate models.ExpandedComponent) Result {
	return e.Check(build, candidate.Category, candidate)
}

// CheckWholeBuild iterates every populated category, treating each installed
// part in turn as the candidate against the rest, and returns the first
// failure or ok (spec.md §4.2 "Whole-build check").
func (e *Engine) CheckWholeBuild(expanded models.ExpandedBuild) Result {
	for category, component := range expanded {
		if component.IsPlaceholder() {
			continue
		}
		rest := make(models.ExpandedBuild, len(expanded)-1)
		for k, v := range expanded {
			if k != category {
				rest[k] = v
			}
		}
		if res := e.Check(rest, category, component); !res.OK {
			return res
		}
	}
	return ok()
}

// evaluate runs every rule that concerns focusCategory against the rest of
// merged (which already contains focusCategory's entry). Rules are
// symmetric: the same constraint fires regardless of which side is
// "focus" — only the reason string's wording may depend on which category
// is focused (spec.md §4.2 rule 7, rule 8).
func (e *Engine) evaluate(merged models.ExpandedBuild, focusCategory string) Result {
	get := func(cat string) (models.ExpandedComponent, bool) {
		c, present := merged[cat]
		if !present || c.IsPlaceholder() {
			return models.ExpandedComponent{}, false
		}
		return c, true
	}

	involves := func(cats ...string) bool {
		for _, c := range cats {
			if c == focusCategory {
				return true
			}
		}
		return false
	}

	// Rule 1: CPU <-> motherboard socket equality.
	if involves(models.CategoryCPU, models.CategoryMotherboard) {
		if cpu, hasCPU := get(models.CategoryCPU); hasCPU {
			if mobo, hasMobo := get(models.CategoryMotherboard); hasMobo {
				cpuSocket := normString(cpu.Specs["socket"])
				moboSocket := normString(mobo.Specs["socket"])
				if cpuSocket != "" && moboSocket != "" && cpuSocket != moboSocket {
					return fail("CPU socket does not match motherboard")
				}
			}
		}
	}

	// Rule 2 & 3: memory <-> motherboard type/speed.
	if involves(models.CategoryMemory, models.CategoryMotherboard) {
		if mem, hasMem := get(models.CategoryMemory); hasMem {
			if mobo, hasMobo := get(models.CategoryMotherboard); hasMobo {
				memType := normString(mem.Specs["type"])
				moboMemType := normString(mobo.Specs["memory_type"])
				if memType != "" && moboMemType != "" && memType != moboMemType {
					return fail("RAM type incompatible with motherboard")
				}

				memSpeed := normNumber(mem.Specs["speed_mhz"])
				maxSpeed := normNumber(mobo.Specs["max_memory_speed_mhz"])
				if memSpeed > 0 && maxSpeed > 0 && memSpeed > maxSpeed {
					return fail("RAM speed exceeds motherboard limit")
				}
			}
		}
	}

	// Rule 4: GPU length <= case max_gpu_length.
	if involves(models.CategoryGPU, models.CategoryCase) {
		if gpu, hasGPU := get(models.CategoryGPU); hasGPU {
			if cs, hasCase := get(models.CategoryCase); hasCase {
				length := normNumber(gpu.Specs["length"])
				maxLen := normNumber(cs.Specs["max_gpu_length"])
				if length > 0 && maxLen > 0 && length > maxLen {
					return fail("GPU is too long for the case")
				}
			}
		}
	}

	// Rule 5: cooler height <= case max_cpu_cooler_height.
	if involves(models.CategoryCPUCooler, models.CategoryCase) {
		if cooler, hasCooler := get(models.CategoryCPUCooler); hasCooler {
			if cs, hasCase := get(models.CategoryCase); hasCase {
				height := normNumber(cooler.Specs["height"])
				maxHeight := normNumber(cs.Specs["max_cpu_cooler_height"])
				if height > 0 && maxHeight > 0 && height > maxHeight {
					return fail("Cooler height exceeds case clearance")
				}
			}
		}
	}

	// Rule 6: CPU socket in cooler's compatible_sockets (if declared).
	if involves(models.CategoryCPU, models.CategoryCPUCooler) {
		if cpu, hasCPU := get(models.CategoryCPU); hasCPU {
			if cooler, hasCooler := get(models.CategoryCPUCooler); hasCooler {
				sockets := normStringSet(cooler.Specs["compatible_sockets"])
				cpuSocket := normString(cpu.Specs["socket"])
				if cpuSocket != "" && sockets.Cardinality() > 0 && !sockets.Contains(cpuSocket) {
					return fail("Cooler not compatible with CPU socket")
				}
			}
		}
	}

	// Rule 7: PSU headroom over CPU + GPU TDP.
	if involves(models.CategoryPSU, models.CategoryCPU, models.CategoryGPU) {
		psu, hasPSU := get(models.CategoryPSU)
		cpu, hasCPU := get(models.CategoryCPU)
		gpu, hasGPU := get(models.CategoryGPU)
		if hasPSU && (hasCPU || hasGPU) {
			cpuTDP := normNumber(cpu.Specs["tdp"])
			gpuTDP := normNumber(gpu.Specs["tdp"])
			required := cpuTDP + gpuTDP
			if required > 0 {
				minWattage := math.Ceil(required * e.psuHeadroomCheck)
				wattage := normNumber(psu.Specs["wattage"])
				if wattage > 0 && wattage < minWattage {
					if focusCategory == models.CategoryPSU {
						return fail("PSU wattage insufficient for the build")
					}
					return fail("PSU cannot support CPU + GPU load")
				}
			}
		}
	}

	// Rule 8: case <-> motherboard form factor.
	if involves(models.CategoryCase, models.CategoryMotherboard) {
		if cs, hasCase := get(models.CategoryCase); hasCase {
			if mobo, hasMobo := get(models.CategoryMotherboard); hasMobo {
				moboFormFactor := normString(mobo.Specs["form_factor"])
				supported := normStringSet(cs.Specs["form_factor_support"])
				if moboFormFactor != "" && supported.Cardinality() > 0 && !supported.Contains(moboFormFactor) {
					if focusCategory == models.CategoryCase {
						return fail("Case does not support motherboard form factor")
					}
					return fail("Motherboard form factor not supported by case")
				}
			}
		}
	}

	// Rule 9: storage interface <-> motherboard support.
	if involves(models.CategoryStorage, models.CategoryMotherboard) {
		if storage, hasStorage := get(models.CategoryStorage); hasStorage {
			if mobo, hasMobo := get(models.CategoryMotherboard); hasMobo {
				if res := checkStorageInterface(storage, mobo); !res.OK {
					return res
				}
			}
		}
	}

	return ok()
}

// checkStorageInterface implements rule 9 (spec.md §4.2).
func checkStorageInterface(storage, mobo models.ExpandedComponent) Result {
	iface := normString(storage.Specs["interface"])
	if iface == "" {
		return ok()
	}

	storageSupport := normStringSet(mobo.Specs["storage_support"])
	nvmeSlots, hasNVMESlots := normIntPtr(mobo.Specs["nvme_slots"], hasKey(mobo.Specs, "nvme_slots"))
	m2Slots, hasM2Slots := normIntPtr(mobo.Specs["m2_slots"], hasKey(mobo.Specs, "m2_slots"))
	sataPorts, hasSataPorts := normIntPtr(mobo.Specs["sata_ports"], hasKey(mobo.Specs, "sata_ports"))

	// Unknown -> allow: motherboard declares neither support tokens nor port counts.
	if storageSupport.Cardinality() == 0 && !hasNVMESlots && !hasM2Slots && !hasSataPorts {
		return ok()
	}

	if isNVMELikeInterface(iface) {
		hasToken := storageSupportMatches(storageSupport, "nvme", "m.2", "m2", "pci")
		hasSlot := (hasNVMESlots && nvmeSlots >= 1) || (hasM2Slots && m2Slots >= 1)
		if hasToken && hasSlot {
			return ok()
		}
		return fail("Storage interface not supported by motherboard")
	}

	if strings.Contains(iface, "sata") {
		if hasSataPorts && sataPorts >= 1 {
			return ok()
		}
		return fail("Storage interface not supported by motherboard")
	}

	return ok()
}

func isNVMELikeInterface(iface string) bool {
	for _, token := range []string{"nvme", "m.2", "m2", "pci"} {
		if strings.Contains(iface, token) {
			return true
		}
	}
	return false
}

func storageSupportMatches(support mapset.Set[string], tokens ...string) bool {
	for _, t := range tokens {
		if support.Contains(t) {
			return true
		}
	}
	return false
}

func hasKey(m models.SpecMap, key string) bool {
	if m == nil {
		return false
	}
	_, ok := m[key]
	return ok
}
