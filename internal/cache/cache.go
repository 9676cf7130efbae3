// Package cache provides a Redis-backed decorator for service.Validator.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ironsheep/flag-check-mcp/internal/service"
)

// DefaultTTL is how long an outcome stays cached when no TTL is given.
const DefaultTTL = 24 * time.Hour

// CachingValidator decorates a Validator with Redis caching.
//
// Validation is a pure function of the image bytes and the configuration, so
// outcomes are keyed by the image digest plus the config fingerprint and never
// need invalidation while both are unchanged.
type CachingValidator struct {
	inner       service.Validator
	rdb         *redis.Client
	ttl         time.Duration
	namespace   string
	fingerprint string
	log         *slog.Logger
}

// Compile-time check to ensure CachingValidator implements Validator.
var _ service.Validator = (*CachingValidator)(nil)

// NewCachingValidator wraps inner. If ttl is 0 it defaults to DefaultTTL; an
// empty namespace becomes "flagcheck". A nil rdb disables caching.
func NewCachingValidator(rdb *redis.Client, ttl time.Duration, inner service.Validator, namespace, fingerprint string, log *slog.Logger) *CachingValidator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "flagcheck"
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CachingValidator{
		inner:       inner,
		rdb:         rdb,
		ttl:         ttl,
		namespace:   namespace,
		fingerprint: fingerprint,
		log:         log,
	}
}

// Validate returns the cached outcome for data when present, otherwise
// delegates and stores the result. Cache failures never fail the call.
func (c *CachingValidator) Validate(ctx context.Context, data []byte) (*service.Outcome, error) {
	if c.rdb == nil {
		return c.inner.Validate(ctx, data)
	}

	key := c.cacheKey(service.Digest(data))

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out service.Outcome
		if err := json.Unmarshal(b, &out); err == nil {
			c.log.Debug("validation cache hit", "key", key)
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.Validate(ctx, data)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn("validation cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

// Purge deletes every entry in the namespace, whatever its fingerprint.
func (c *CachingValidator) Purge(ctx context.Context) (int, error) {
	if c.rdb == nil {
		return 0, nil
	}

	var cursor uint64
	deleted := 0
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, c.namespace+":*", 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}

func (c *CachingValidator) cacheKey(digest string) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, digest, c.fingerprint)
}

// Connect opens a client for addr and verifies it with PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return rdb, nil
}
