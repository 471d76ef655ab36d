package graph

import (
	"sync"

	"github.com/anythingbutmetric/abm/internal/snapshot"
)

// Cache builds and memoizes one Index per snapshot identity. It is owned
// by whatever component loads snapshots (CLI command, server) and passed
// to query sites; the core itself holds no process-wide state.
//
// Safe for concurrent use: the per-snapshot build happens at most once,
// and steady-state lookups take only a read lock since snapshots and
// indexes are immutable after construction.
type Cache struct {
	mu      sync.RWMutex
	indexes map[*snapshot.Snapshot]*Index
}

// NewCache creates an empty index cache.
func NewCache() *Cache {
	return &Cache{indexes: make(map[*snapshot.Snapshot]*Index)}
}

// Index returns the cached Index for the snapshot, building it on first
// use. Snapshot identity is pointer identity: a reloaded dataset is a new
// Snapshot and gets a fresh index.
func (c *Cache) Index(s *snapshot.Snapshot) *Index {
	c.mu.RLock()
	idx, ok := c.indexes[s]
	c.mu.RUnlock()
	if ok {
		return idx
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have won the build race.
	if idx, ok := c.indexes[s]; ok {
		return idx
	}
	idx = BuildIndex(s)
	c.indexes[s] = idx
	return idx
}

// Evict drops the cached index for a replaced snapshot so the map does
// not grow across reloads.
func (c *Cache) Evict(s *snapshot.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.indexes, s)
}
