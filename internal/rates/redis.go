package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rates:v1:"

// RedisCache keeps quotes in Redis under rates:v1:<SYMBOL>:<FIAT>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a Redis-backed cache. A non-positive ttl keeps quotes
// until overwritten.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Put(ctx context.Context, q Quote) error {
	q, err := Normalize(q)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key(q.Symbol, q.Fiat), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store quote %s: %w", pair(q.Symbol, q.Fiat), err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, symbol, fiat string) (Quote, error) {
	raw, err := c.client.Get(ctx, key(symbol, fiat)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Quote{}, missing(symbol, fiat)
	}
	if err != nil {
		return Quote{}, fmt.Errorf("load quote %s: %w", pair(symbol, fiat), err)
	}
	var q Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return Quote{}, fmt.Errorf("decode quote %s: %w", pair(symbol, fiat), err)
	}
	return q, nil
}

func key(symbol, fiat string) string {
	return keyPrefix + pair(symbol, fiat)
}
