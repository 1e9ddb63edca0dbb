package database

import (
	"context"
	"log/slog"
	"time"

	"tripsplit-backend/config"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis returns nil when Redis is not configured or not reachable;
// callers fall back to the in-process cache.
func ConnectRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, running without redis", "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		slog.Warn("redis not available, running without it", "error", err)
		client.Close()
		return nil
	}

	slog.Info("redis connected")
	Redis = client
	return client
}
