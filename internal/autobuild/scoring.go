package autobuild

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/partforge/configurator/internal/models"
)

// candidate pairs a catalog record with the score value the picker needs,
// so sorting never has to re-read SpecMap.
type candidate struct {
	component models.ComponentWithSpecs
	score     float64
}

func normNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func normString(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func normStringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, strings.ToLower(strings.TrimSpace(s)))
		}
	}
	return out
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

// byScoreAsc sorts candidates ascending by score, used to partition the
// affordable CPU pool into terciles (spec.md §4.4 "CPU" scoring).
func byScoreAsc(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score < candidates[j].score })
}

func byPriceAsc(components []models.ComponentWithSpecs) {
	sort.Slice(components, func(i, j int) bool { return components[i].Price.LessThan(components[j].Price) })
}

// medianByPrice returns the price-ordered middle element, spec.md §4.4's
// repeated "pick the median" step for motherboard/memory/case/cooler.
func medianByPrice(components []models.ComponentWithSpecs) (models.ComponentWithSpecs, bool) {
	if len(components) == 0 {
		return models.ComponentWithSpecs{}, false
	}
	sorted := append([]models.ComponentWithSpecs(nil), components...)
	byPriceAsc(sorted)
	return sorted[len(sorted)/2], true
}

// partitionByScore splits candidates sorted ascending into bottom 30% /
// middle 40% / top 30% buckets (spec.md §4.4 "CPU" scoring).
func partitionByScore(candidates []candidate) (bottom, middle, top []candidate) {
	sorted := append([]candidate(nil), candidates...)
	byScoreAsc(sorted)

	n := len(sorted)
	bottomN := n * 3 / 10
	topN := n * 3 / 10
	if bottomN+topN > n {
		bottomN, topN = n/2, n/2
	}

	bottom = sorted[:bottomN]
	top = sorted[n-topN:]
	middle = sorted[bottomN : n-topN]
	return
}

func medianCandidate(candidates []candidate) (candidate, bool) {
	if len(candidates) == 0 {
		return candidate{}, false
	}
	return candidates[len(candidates)/2], true
}

// worstOf returns the lowest-scored entry of an ascending-sorted bucket.
func worstOf(candidates []candidate) (candidate, bool) {
	if len(candidates) == 0 {
		return candidate{}, false
	}
	return candidates[0], true
}

// bestOf returns the highest-scored entry of an ascending-sorted bucket.
func bestOf(candidates []candidate) (candidate, bool) {
	if len(candidates) == 0 {
		return candidate{}, false
	}
	return candidates[len(candidates)-1], true
}

// cpuScore implements spec.md §4.4 "CPU": performance_score if present,
// else cores*100 + base_clock*30 + threads*10.
func cpuScore(specs models.SpecMap) float64 {
	if ps, ok := specs["performance_score"]; ok {
		return normNumber(ps)
	}
	return normNumber(specs["cores"])*100 + normNumber(specs["base_clock"])*30 + normNumber(specs["threads"])*10
}

// memoryScore implements spec.md §4.4 "Memory": capacity_gb*100 +
// speed_mhz/10.
func memoryScore(specs models.SpecMap) float64 {
	return normNumber(specs["capacity_gb"])*100 + normNumber(specs["speed_mhz"])/10
}

// gpuScore implements spec.md §4.4 "GPU": performance_score if present,
// else tdp*10, falling back to price when neither spec is present.
func gpuScore(c models.ComponentWithSpecs) float64 {
	if ps, ok := c.Specs["performance_score"]; ok {
		return normNumber(ps)
	}
	if tdp, ok := c.Specs["tdp"]; ok {
		return normNumber(tdp) * 10
	}
	price, _ := c.Price.Float64()
	return price
}

// storageScore implements spec.md §4.4 "Storage": nvme?*10000 +
// capacity_gb.
func storageScore(specs models.SpecMap) float64 {
	score := normNumber(specs["capacity_gb"])
	iface := normString(specs["interface"])
	if strings.Contains(iface, "nvme") || strings.Contains(iface, "m.2") || strings.Contains(iface, "m2") {
		score += 10000
	}
	return score
}

// decimalMax returns the larger of two decimals.
func decimalMax(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
