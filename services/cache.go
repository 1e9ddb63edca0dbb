package services

import (
	"context"
	"sync"
	"time"

	"tripsplit-backend/models"

	"github.com/google/uuid"
)

// CacheEntry is a snapshot together with the time it was computed.
type CacheEntry struct {
	Snapshot   *models.TripSnapshot `json:"snapshot"`
	ComputedAt time.Time            `json:"computed_at"`
}

// Cache maps a trip id to its last computed snapshot. Expiry is decided by
// the caller from ComputedAt; implementations only store entries.
type Cache interface {
	Get(ctx context.Context, tripID uuid.UUID) (CacheEntry, bool, error)
	Set(ctx context.Context, tripID uuid.UUID, entry CacheEntry) error
}

// MemoryCache is a process-local Cache. It is not shared between processes.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]CacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[uuid.UUID]CacheEntry)}
}

func (c *MemoryCache) Get(_ context.Context, tripID uuid.UUID) (CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[tripID]
	return e, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, tripID uuid.UUID, entry CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[tripID] = entry
	return nil
}
