// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import "sync"

// lookupCache is the run-scoped (kind, input) → result cache. It is safe
// for the concurrent access the enrichment fan-out produces; two workers
// racing on the same key may both do the work, but the first stored value
// wins so the cache converges.
type lookupCache struct {
	mu      sync.Mutex
	entries map[string]any
}

func newLookupCache() *lookupCache {
	return &lookupCache{entries: make(map[string]any)}
}

func (c *lookupCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// put stores v under key unless a value is already present.
func (c *lookupCache) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = v
	}
}

func (c *lookupCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
