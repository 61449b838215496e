// Package autobuild implements the Auto-Builder (C4): generates a complete,
// compatible build from a purpose profile and optional budget, or fills the
// missing categories of a partial build.
package autobuild

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/compatibility"
	"github.com/partforge/configurator/internal/config"
	"github.com/partforge/configurator/internal/models"
)

var unconstrainedCeiling = decimal.NewFromInt(1_000_000_000)

// BuildRequest is buildFromPurpose's argument (spec.md §4.4).
type BuildRequest struct {
	Purpose    string
	Budget     *decimal.Decimal
	RespectCPU *uuid.UUID
}

// Builder is the Auto-Builder (C4).
type Builder struct {
	catalog *catalog.Accessor
	engine  *compatibility.Engine
	cfg     config.AutoBuildConfig
}

// NewBuilder wires the Auto-Builder to the Catalog Accessor and
// Compatibility Engine it drives programmatically (spec.md §2 data flow).
func NewBuilder(catalogAccessor *catalog.Accessor, engine *compatibility.Engine, cfg config.AutoBuildConfig) *Builder {
	return &Builder{catalog: catalogAccessor, engine: engine, cfg: cfg}
}

// BuildFromPurpose generates a complete build for a named purpose profile
// (spec.md §4.4 "buildFromPurpose"). Categories it could not fill within the
// wall-clock deadline or for lack of a compatible, affordable candidate are
// simply absent from the returned map — the caller treats a missing key as
// null.
func (b *Builder) BuildFromPurpose(req BuildRequest) (models.ComponentMap, error) {
	profile, ok := Profiles[req.Purpose]
	if !ok {
		return nil, fmt.Errorf("unknown purpose: %s", req.Purpose)
	}

	deadline := time.Now().Add(b.cfg.Deadline)
	expanded := models.ExpandedBuild{}
	result := make(models.ComponentMap)

	var remaining *decimal.Decimal
	if req.Budget != nil {
		r := *req.Budget
		remaining = &r
	}

	for _, category := range profile.CategoryOrder {
		if time.Until(deadline) < b.cfg.MinFetchBudget {
			log.Printf("autobuild: deadline exhausted before category %s, returning partial build", category)
			break
		}

		ceiling := b.ceilingFor(profile, category, req.Budget, remaining)
		picked, err := b.pickForCategory(category, profile, expanded, ceiling, remaining, req.RespectCPU)
		if err != nil {
			log.Printf("autobuild: category %s failed: %v", category, err)
			continue
		}
		if picked == nil {
			continue
		}

		result[category] = picked.ID
		expanded[category] = expandedOf(*picked)
		if remaining != nil {
			*remaining = remaining.Sub(picked.Price)
		}
	}

	return result, nil
}

// AutoComplete fills the categories missing from a partial build (spec.md
// §4.4 "autoComplete"): it infers a purpose from the partial's memory
// capacity, respects the partial's CPU choice, and otherwise runs the same
// generator with no budget ceiling.
func (b *Builder) AutoComplete(partial models.ComponentMap) (models.ComponentMap, error) {
	expanded, err := b.expand(partial)
	if err != nil {
		return nil, err
	}

	purpose := InferPurpose(expanded)
	profile := Profiles[purpose]

	var respectCPU *uuid.UUID
	if cpu, ok := expanded[models.CategoryCPU]; ok && !cpu.IsPlaceholder() {
		id := *cpu.ID
		respectCPU = &id
	}

	deadline := time.Now().Add(b.cfg.Deadline)
	result := partial.Clone()

	for _, category := range profile.CategoryOrder {
		if c, ok := expanded[category]; ok && !c.IsPlaceholder() {
			continue // already present in the partial
		}
		if time.Until(deadline) < b.cfg.MinFetchBudget {
			log.Printf("autobuild: autoComplete deadline exhausted before category %s", category)
			break
		}

		ceiling := b.ceilingFor(profile, category, nil, nil)
		picked, err := b.pickForCategory(category, profile, expanded, ceiling, nil, respectCPU)
		if err != nil {
			log.Printf("autobuild: autoComplete category %s failed: %v", category, err)
			continue
		}
		if picked == nil {
			continue
		}

		result[category] = picked.ID
		expanded[category] = expandedOf(*picked)
	}

	return result, nil
}

func (b *Builder) expand(components models.ComponentMap) (models.ExpandedBuild, error) {
	expanded := make(models.ExpandedBuild, len(components))
	for category, id := range components {
		record, err := b.catalog.GetComponentByID(id)
		if err != nil {
			return nil, err
		}
		if record == nil {
			expanded[category] = models.MissingComponentPlaceholder(category)
			continue
		}
		expanded[category] = expandedOf(*record)
	}
	return expanded, nil
}

// ceilingFor computes the local budget ceiling (spec.md §4.4 step 1).
func (b *Builder) ceilingFor(profile Profile, category string, budget, remaining *decimal.Decimal) decimal.Decimal {
	if budget == nil {
		return unconstrainedCeiling
	}

	var ceiling decimal.Decimal
	if fraction, has := profile.Allocation[category]; has && fraction > 0 {
		ceiling = budget.Mul(decimal.NewFromFloat(fraction))
	} else {
		pool := budget.Mul(decimal.NewFromFloat(profile.PoolFraction()))
		ceiling = decimalMax(pool, decimal.NewFromInt(500))
	}

	if category == models.CategoryGPU && (profile.Name == PurposeGaming || profile.Name == PurposeStreaming) {
		minGPU := budget.Mul(decimal.NewFromFloat(b.cfg.MinGPUBudgetShare))
		ceiling = decimalMax(ceiling, minGPU)
	}

	return ceiling
}

// pickForCategory dispatches to the category-specific scoring rule (spec.md
// §4.4 "Category scoring"), after fetching candidates, filtering to
// active+in-stock, applying hard constraints derived from the running
// build, and running the Compatibility Engine.
func (b *Builder) pickForCategory(category string, profile Profile, expanded models.ExpandedBuild, ceiling decimal.Decimal, remaining *decimal.Decimal, respectCPU *uuid.UUID) (*models.ComponentWithSpecs, error) {
	if category == models.CategoryGPU && !profile.PreferGPU {
		return nil, nil
	}

	all, err := b.catalog.ListByCategory(category)
	if err != nil {
		return nil, err
	}

	pool := make([]models.ComponentWithSpecs, 0, len(all))
	for _, c := range all {
		if !c.IsVisible() {
			continue
		}
		pool = append(pool, c)
	}
	pool = hardFilter(category, expanded, pool)

	affordable := make([]models.ComponentWithSpecs, 0, len(pool))
	for _, c := range pool {
		if !isAffordable(c.Price, ceiling, remaining) {
			continue
		}
		if res := b.engine.Check(expanded, category, expandedOf(c)); !res.OK {
			continue
		}
		affordable = append(affordable, c)
	}

	switch category {
	case models.CategoryCPU:
		return b.pickCPU(profile, expanded, affordable, ceiling, remaining, respectCPU)
	case models.CategoryMotherboard, models.CategoryCase, models.CategoryCPUCooler:
		c, ok := medianByPrice(affordable)
		if !ok {
			return nil, nil
		}
		return &c, nil
	case models.CategoryMemory:
		return pickMemory(profile, affordable)
	case models.CategoryGPU:
		return pickByScore(affordable, gpuScore)
	case models.CategoryStorage:
		return pickStorage(affordable)
	case models.CategoryPSU:
		return b.pickPSU(expanded, affordable)
	default:
		c, ok := medianByPrice(affordable)
		if !ok {
			return nil, nil
		}
		return &c, nil
	}
}

func (b *Builder) pickCPU(profile Profile, expanded models.ExpandedBuild, affordable []models.ComponentWithSpecs, ceiling decimal.Decimal, remaining *decimal.Decimal, respectCPU *uuid.UUID) (*models.ComponentWithSpecs, error) {
	if respectCPU != nil {
		record, err := b.catalog.GetComponentByID(*respectCPU)
		if err != nil {
			return nil, err
		}
		if record != nil && record.IsVisible() && isAffordable(record.Price, ceiling, remaining) {
			if res := b.engine.Check(expanded, models.CategoryCPU, expandedOf(*record)); res.OK {
				return record, nil
			}
		}
	}

	candidates := make([]candidate, 0, len(affordable))
	for _, c := range affordable {
		candidates = append(candidates, candidate{component: c, score: cpuScore(c.Specs)})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	bottom, middle, top := partitionByScore(candidates)

	var chosen candidate
	var found bool
	switch profile.CPURank {
	case RankHigh:
		chosen, found = medianCandidate(top)
	case RankMidHigh:
		chosen, found = worstOf(top)
		if !found {
			chosen, found = bestOf(middle)
		}
	case RankMid:
		chosen, found = medianCandidate(middle)
	default: // RankEntry
		chosen, found = medianCandidate(bottom)
	}

	if !found {
		// Fall back to any populated tier rather than leaving the category empty.
		for _, tier := range [][]candidate{top, middle, bottom} {
			if chosen, found = medianCandidate(tier); found {
				break
			}
		}
	}
	if !found {
		return nil, nil
	}

	result := chosen.component
	return &result, nil
}

func pickMemory(profile Profile, affordable []models.ComponentWithSpecs) (*models.ComponentWithSpecs, error) {
	if len(affordable) == 0 {
		return nil, nil
	}

	var meetingTarget []models.ComponentWithSpecs
	for _, c := range affordable {
		if normNumber(c.Specs["capacity_gb"]) >= float64(profile.TargetRAMGB) {
			meetingTarget = append(meetingTarget, c)
		}
	}

	if len(meetingTarget) > 0 {
		c, _ := medianByPrice(meetingTarget)
		return &c, nil
	}

	c, err := pickByScore(affordable, func(c models.ComponentWithSpecs) float64 { return memoryScore(c.Specs) })
	return c, err
}

func pickStorage(affordable []models.ComponentWithSpecs) (*models.ComponentWithSpecs, error) {
	if len(affordable) == 0 {
		return nil, nil
	}

	var nvme []models.ComponentWithSpecs
	for _, c := range affordable {
		iface := normString(c.Specs["interface"])
		if containsString([]string{"nvme", "m.2", "m2"}, iface) {
			nvme = append(nvme, c)
		}
	}

	pool := affordable
	if len(nvme) > 0 {
		pool = nvme
	}

	return pickByScore(pool, func(c models.ComponentWithSpecs) float64 { return storageScore(c.Specs) })
}

func pickByScore(pool []models.ComponentWithSpecs, score func(models.ComponentWithSpecs) float64) (*models.ComponentWithSpecs, error) {
	if len(pool) == 0 {
		return nil, nil
	}
	best := pool[0]
	bestScore := score(best)
	for _, c := range pool[1:] {
		if s := score(c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return &best, nil
}

// pickPSU implements spec.md §4.4 "PSU": required = ceil((cpu.tdp +
// gpu.tdp) * PSUHeadroomPick), floor 350W; sort by (meets-required desc,
// then wattage desc when neither meets, else price asc); pick first.
func (b *Builder) pickPSU(expanded models.ExpandedBuild, affordable []models.ComponentWithSpecs) (*models.ComponentWithSpecs, error) {
	if len(affordable) == 0 {
		return nil, nil
	}

	cpuTDP, gpuTDP := 0.0, 0.0
	if cpu, ok := expanded[models.CategoryCPU]; ok && !cpu.IsPlaceholder() {
		cpuTDP = normNumber(cpu.Specs["tdp"])
	}
	if gpu, ok := expanded[models.CategoryGPU]; ok && !gpu.IsPlaceholder() {
		gpuTDP = normNumber(gpu.Specs["tdp"])
	}
	required := math.Max(350, math.Ceil((cpuTDP+gpuTDP)*b.cfg.PSUHeadroomPick))

	meets := func(c models.ComponentWithSpecs) bool { return normNumber(c.Specs["wattage"]) >= required }

	sorted := append([]models.ComponentWithSpecs(nil), affordable...)
	sortPSU(sorted, meets)

	return &sorted[0], nil
}

func sortPSU(components []models.ComponentWithSpecs, meets func(models.ComponentWithSpecs) bool) {
	sort.Slice(components, func(i, j int) bool {
		a, b := components[i], components[j]
		am, bm := meets(a), meets(b)
		if am != bm {
			return am // meets-required sorts before does-not-meet
		}
		if !am {
			// Neither meets: higher wattage first.
			return normNumber(a.Specs["wattage"]) > normNumber(b.Specs["wattage"])
		}
		// Both meet: cheaper first.
		return a.Price.LessThan(b.Price)
	})
}
