package compatibility

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// normString lowercases and trims a spec value read out of a SpecMap, tolerant
// of it being absent or of an unexpected type (spec.md §4.2 "Normalization").
func normString(v interface{}) string {
	s, _ := v.(string)
	return strings.ToLower(strings.TrimSpace(s))
}

// normNumber coerces a spec value to a finite number, defaulting to 0 when
// absent or of the wrong type — the "null-safe default" (spec.md §4.2).
// Values arrive as float64 after the JSONB->SpecMap round trip, but ints are
// accepted too in case a caller builds a SpecMap directly.
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

// normIntPtr coerces an optional numeric field, returning (0, false) when
// the key is absent so callers can distinguish "not declared" from "declared
// as zero" where the rule requires it (rule 9's nvme_slots/sata_ports).
func normIntPtr(v interface{}, present bool) (int, bool) {
	if !present || v == nil {
		return 0, false
	}
	return int(normNumber(v)), true
}

// normStringSet treats a list-shaped spec value as a set of normalized
// strings (spec.md §4.2 "list values ... treated as sets of normalized
// strings").
func normStringSet(v interface{}) mapset.Set[string] {
	set := mapset.NewSet[string]()
	items, ok := v.([]interface{})
	if !ok {
		// Tolerate []string for values built directly in Go (tests, seed data).
		if strs, ok := v.([]string); ok {
			for _, s := range strs {
				set.Add(strings.ToLower(strings.TrimSpace(s)))
			}
		}
		return set
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			set.Add(strings.ToLower(strings.TrimSpace(s)))
		}
	}
	return set
}
