// Content-addressed text cache backed by Redis. Keys are namespaced with a
// service and version prefix so entries from different deployments never
// collide. An empty string is a valid cached value: absence is reported
// through the found flag, never through value truthiness.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TTLHour  = time.Hour
	TTLDay   = 24 * TTLHour
	TTLWeek  = 7 * TTLDay
	TTLMonth = 30 * TTLDay

	// DefaultTTL is deliberately long: extraction output for identical
	// document bytes never changes.
	DefaultTTL = TTLMonth
)

type Cache struct {
	rdb     *redis.Client
	service string
	version string
}

func New(rdb *redis.Client, service, version string) *Cache {
	return &Cache{
		rdb:     rdb,
		service: service,
		version: version,
	}
}

func (c *Cache) prefixKey(key string) string {
	return fmt.Sprintf("%s:%s:%s", c.service, c.version, key)
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, c.prefixKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set overwrites any previous value and resets the TTL. ttl <= 0 falls back
// to DefaultTTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return c.rdb.Set(ctx, c.prefixKey(key), value, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.prefixKey(key)).Err()
}
