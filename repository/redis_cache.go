package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripsplit-backend/services"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "stats:trip:"

// RedisCache keeps lazily computed snapshots in Redis so that several API
// processes share them. Keys expire after expiry as a safety net; freshness
// is still decided from the entry's ComputedAt.
type RedisCache struct {
	client *redis.Client
	expiry time.Duration
}

var _ services.Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, expiry time.Duration) *RedisCache {
	return &RedisCache{client: client, expiry: expiry}
}

func statsKey(tripID uuid.UUID) string {
	return statsKeyPrefix + tripID.String()
}

func (c *RedisCache) Get(ctx context.Context, tripID uuid.UUID) (services.CacheEntry, bool, error) {
	raw, err := c.client.Get(ctx, statsKey(tripID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return services.CacheEntry{}, false, nil
	}
	if err != nil {
		return services.CacheEntry{}, false, fmt.Errorf("redis get %s: %w", statsKey(tripID), err)
	}

	var entry services.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return services.CacheEntry{}, false, fmt.Errorf("decode cached stats %s: %w", tripID, err)
	}
	return entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, tripID uuid.UUID, entry services.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached stats %s: %w", tripID, err)
	}
	if err := c.client.Set(ctx, statsKey(tripID), raw, c.expiry).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", statsKey(tripID), err)
	}
	return nil
}
