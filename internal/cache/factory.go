package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// FromConfig builds the configured cache. A redis backend is pinged before use.
func FromConfig(ctx context.Context, section config.CacheSection) (Cache, error) {
	switch section.Backend {
	case config.CacheNone:
		return NewNoopCache(), nil
	case config.CacheMemory, "":
		return NewMemoryCache(section.TTL), nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr: section.RedisAddr,
			DB:   section.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()

			return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "redis at %s is unreachable", section.RedisAddr)
		}

		return NewRedisCache(client, section.TTL, section.KeyPrefix), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown cache backend %q", section.Backend)
	}
}
