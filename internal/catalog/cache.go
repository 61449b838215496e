package catalog

import (
	"sync"

	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/models"
)

// specsCache is the process-wide, mutex-guarded specs cache (spec.md §4.1,
// §5, §9 "specs cache process-wide"). It maps component id to its resolved
// specs map, including the empty-map sentinel for components with no specs
// row, so a cache hit never needs to distinguish "not yet looked up" from
// "looked up, nothing there".
type specsCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]models.SpecMap
}

func newSpecsCache() *specsCache {
	return &specsCache{entries: make(map[uuid.UUID]models.SpecMap)}
}

func (c *specsCache) get(id uuid.UUID) (models.SpecMap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	specs, ok := c.entries[id]
	return specs, ok
}

func (c *specsCache) set(id uuid.UUID, specs models.SpecMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = specs
}

// invalidate removes a single entry. Called whenever admin CRUD mutates a
// component or its specs row (spec.md §4.1).
func (c *specsCache) invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}
