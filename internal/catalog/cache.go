package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:product:"

// RedisClient is the subset of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ProductSource is anything that can load a product on a cache miss.
type ProductSource interface {
	GetProduct(ctx context.Context, id uuid.UUID) (service.Product, error)
}

// Cached is a read-through product cache. Entries expire after ttl so price
// and availability changes reach new lines without an explicit purge; until
// then a line may be priced from the cached entry. Writers that need the
// change visible at once call Invalidate. Redis errors fall through to the
// source.
type Cached struct {
	source ProductSource
	rdb    RedisClient
	ttl    time.Duration
}

// NewCached wraps source with a Redis cache.
func NewCached(source ProductSource, rdb RedisClient, ttl time.Duration) *Cached {
	return &Cached{source: source, rdb: rdb, ttl: ttl}
}

func (c *Cached) GetProduct(ctx context.Context, id uuid.UUID) (service.Product, error) {
	key := keyPrefix + id.String()

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p service.Product
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
		log.Printf("WARN: catalog cache: corrupt entry %s", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("WARN: catalog cache get %s: %v", key, err)
	}

	p, err := c.source.GetProduct(ctx, id)
	if err != nil {
		return service.Product{}, err
	}

	if payload, err := json.Marshal(p); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Printf("WARN: catalog cache set %s: %v", key, err)
		}
	}
	return p, nil
}

// Invalidate drops the cached entries for ids so the next read goes to the
// source.
func (c *Cached) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id.String()
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}
