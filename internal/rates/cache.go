package rates

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "rates:"

// Cache is a read-through Redis cache for exchange rates. A nil client
// disables caching without changing call sites.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func cacheKey(currency string) string {
	return cachePrefix + strings.ToUpper(currency)
}

// Get returns the cached rate for a currency, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, currency string) (*Rate, error) {
	if c == nil || c.R == nil {
		return nil, nil
	}
	raw, err := c.R.Get(ctx, cacheKey(currency)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rate Rate
	if err := json.Unmarshal(raw, &rate); err != nil {
		// Drop poisoned entries and fall through to the store.
		_ = c.R.Del(ctx, cacheKey(currency)).Err()
		return nil, nil
	}
	return &rate, nil
}

// Set stores a rate under its currency key.
func (c *Cache) Set(ctx context.Context, rate *Rate) error {
	if c == nil || c.R == nil || rate == nil {
		return nil
	}
	raw, err := json.Marshal(rate)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, cacheKey(rate.Currency), raw, c.TTL).Err()
}

// InvalidateAll removes every cached rate. Called after a refresh so reads
// pick up the new values.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if c == nil || c.R == nil {
		return nil
	}
	iter := c.R.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	keys := make([]string, 0, 32)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.R.Del(ctx, keys...).Err()
}
