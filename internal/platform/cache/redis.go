package cache

import (
	"context"
	"fmt"

	"overmind/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// Connect builds the redis client used as a read cache for blueprint
// listings. The client is injected into the services that need it.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache.Connect ping: %w", err)
	}

	return rdb, nil
}
