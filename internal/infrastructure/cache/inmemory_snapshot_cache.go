package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pos/backend/internal/domain/catalog"
)

type snapshotEntry struct {
	snapshot  *catalog.EffectiveCatalog
	expiresAt time.Time
}

// InMemorySnapshotCache is a process-local snapshot cache for single-instance
// deployments and tests. Stale entries are dropped lazily on read and swept
// when a write finds the map large.
type InMemorySnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]snapshotEntry
	now     func() time.Time
}

// NewInMemorySnapshotCache creates an empty in-memory snapshot cache
func NewInMemorySnapshotCache() *InMemorySnapshotCache {
	return &InMemorySnapshotCache{
		entries: make(map[string]snapshotEntry),
		now:     time.Now,
	}
}

// Get returns the cached snapshot for the version stamp, or (nil, nil) on miss
func (c *InMemorySnapshotCache) Get(_ context.Context, versionStamp string) (*catalog.EffectiveCatalog, error) {
	c.mu.RLock()
	entry, ok := c.entries[versionStamp]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, versionStamp)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.snapshot, nil
}

// Set stores the snapshot under its version stamp with a TTL
func (c *InMemorySnapshotCache) Set(_ context.Context, versionStamp string, snapshot *catalog.EffectiveCatalog, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > 64 {
		now := c.now()
		for stamp, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, stamp)
			}
		}
	}

	c.entries[versionStamp] = snapshotEntry{
		snapshot:  snapshot,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}
