package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rxtech-lab/argo-structure/internal/engine"
	"github.com/rxtech-lab/argo-structure/internal/version"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// redisEntry is the stored payload.
type redisEntry struct {
	SchemaVersion string         `json:"schema_version"`
	CachedAt      time.Time      `json:"cached_at"`
	Result        *engine.Result `json:"result"`
}

// RedisCache stores results as JSON with a Redis TTL. Payloads written by an
// incompatible schema version are treated as misses and removed.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	now    Clock
	counters
}

// NewRedisCache wraps an existing client. Keys are stored as <prefix>:<key>.
func NewRedisCache(client *redis.Client, ttl time.Duration, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		now:    time.Now,
	}
}

func (c *RedisCache) redisKey(key Key) string {
	if c.prefix == "" {
		return key.String()
	}

	return c.prefix + ":" + key.String()
}

func (c *RedisCache) Get(ctx context.Context, key Key) (*engine.Result, bool, error) {
	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		c.misses.Add(1)

		return nil, false, nil
	}

	if err != nil {
		c.misses.Add(1)

		return nil, false, errors.Wrapf(errors.ErrCodeCacheReadFailed, err, "redis get %s", key)
	}

	var entry redisEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.misses.Add(1)

		return nil, false, errors.Wrapf(errors.ErrCodeCacheReadFailed, err, "decode cached %s", key)
	}

	if entry.Result == nil || version.CheckSchemaCompatibility(engine.SchemaVersion, entry.SchemaVersion) != nil {
		c.misses.Add(1)
		c.evictions.Add(1)

		if err := c.client.Del(ctx, c.redisKey(key)).Err(); err != nil {
			return nil, false, errors.Wrapf(errors.ErrCodeCacheWriteFailed, err, "redis del %s", key)
		}

		return nil, false, nil
	}

	c.hits.Add(1)

	return entry.Result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key Key, result *engine.Result) error {
	data, err := json.Marshal(redisEntry{
		SchemaVersion: result.SchemaVersion,
		CachedAt:      c.now().UTC(),
		Result:        result,
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodeCacheWriteFailed, err, "encode %s", key)
	}

	if err := c.client.Set(ctx, c.redisKey(key), data, c.ttl).Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeCacheWriteFailed, err, "redis set %s", key)
	}

	c.sets.Add(1)

	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key Key) error {
	if err := c.client.Del(ctx, c.redisKey(key)).Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeCacheWriteFailed, err, "redis del %s", key)
	}

	return nil
}

func (c *RedisCache) Stats() Stats {
	return c.snapshot()
}
