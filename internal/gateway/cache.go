package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"retail-desk/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "gateway:version"

// Cached is a read-through Redis cache in front of another gateway. Writes
// go straight to the wrapped gateway and then bump the cache version, which
// orphans every cached collection at once.
type Cached struct {
	next   Gateway
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// NewCached wraps next with a Redis cache
func NewCached(next Gateway, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *Cached) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

// fetch loads a collection from Redis, falling back to loader on a miss.
// Redis failures are logged and the wrapped gateway is used directly.
func fetch[T any](ctx context.Context, c *Cached, collection string, loader func(context.Context) ([]T, error)) ([]T, error) {
	ver, err := c.version(ctx)
	if err != nil {
		c.logger.Warn("Cache version lookup failed", zap.String("collection", collection), zap.Error(err))
		return loader(ctx)
	}
	key := fmt.Sprintf("gateway:%s:%d", collection, ver)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var out []T
		if err := json.Unmarshal(payload, &out); err == nil {
			return out, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return loader(ctx)
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		items, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	// decode per caller so shared singleflight results are never aliased
	var out []T
	if err := json.Unmarshal(v.([]byte), &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return out, nil
}

// Invalidate bumps the cache version
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func (c *Cached) FetchClients(ctx context.Context) ([]*domain.Client, error) {
	return fetch(ctx, c, "clients", c.next.FetchClients)
}

func (c *Cached) FetchProducts(ctx context.Context) ([]*domain.Product, error) {
	return fetch(ctx, c, "products", c.next.FetchProducts)
}

func (c *Cached) FetchCategories(ctx context.Context) ([]*domain.Category, error) {
	return fetch(ctx, c, "categories", c.next.FetchCategories)
}

func (c *Cached) FetchSales(ctx context.Context) ([]*domain.Sale, error) {
	return fetch(ctx, c, "sales", c.next.FetchSales)
}

func (c *Cached) CreateSale(ctx context.Context, sale *domain.Sale) error {
	if err := c.next.CreateSale(ctx, sale); err != nil {
		return err
	}
	c.invalidateAfterWrite(ctx)
	return nil
}

func (c *Cached) UpdateSale(ctx context.Context, sale *domain.Sale) error {
	if err := c.next.UpdateSale(ctx, sale); err != nil {
		return err
	}
	c.invalidateAfterWrite(ctx)
	return nil
}

func (c *Cached) invalidateAfterWrite(ctx context.Context) {
	if err := c.Invalidate(ctx); err != nil {
		c.logger.Error("Failed to invalidate gateway cache", zap.Error(err))
	}
}
