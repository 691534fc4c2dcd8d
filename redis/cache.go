package redis

import (
	"context"
	"encoding/json"
	defError "errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON read-model cache. Every method is a no-op on a nil client.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the value at key into dest. found is false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if defError.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// GetVersion returns the counter stored at versionKey, 0 when unset.
func (c *Cache) GetVersion(ctx context.Context, versionKey string) int64 {
	if !c.Enabled() {
		return 0
	}

	v, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

// IncrementVersion invalidates every key built on the previous version.
func (c *Cache) IncrementVersion(ctx context.Context, versionKey string) {
	if !c.Enabled() {
		return
	}
	c.client.Incr(ctx, versionKey)
}
