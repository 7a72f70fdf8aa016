package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
)

type cacheStore interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(parts ...string) string
}

// CachedCatalog is a read-through cache in front of a Service. Cache failures
// fall back to the remote call; remote errors are never cached.
type CachedCatalog struct {
	next   Service
	cache  cacheStore
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedCatalog wraps next. A nil cache disables caching entirely.
func NewCachedCatalog(next Service, cache cacheStore, ttl time.Duration, logg *logger.Logger) *CachedCatalog {
	if logg == nil {
		logg = logger.Nop()
	}
	return &CachedCatalog{next: next, cache: cache, ttl: ttl, logger: logg}
}

func (c *CachedCatalog) FetchCategories(ctx context.Context) ([]Category, error) {
	return readThrough(ctx, c, c.key("categories"), func() ([]Category, error) {
		return c.next.FetchCategories(ctx)
	})
}

func (c *CachedCatalog) FetchProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	slug := category
	if slug == "" {
		slug = AllCategory
	}
	return readThrough(ctx, c, c.key("products", slug), func() ([]Product, error) {
		return c.next.FetchProductsByCategory(ctx, category)
	})
}

func (c *CachedCatalog) FetchProductByID(ctx context.Context, id string) (*Product, error) {
	return readThrough(ctx, c, c.key("product", id), func() (*Product, error) {
		return c.next.FetchProductByID(ctx, id)
	})
}

func (c *CachedCatalog) key(parts ...string) string {
	if c.cache == nil {
		return ""
	}
	return c.cache.CatalogKey(parts...)
}

func readThrough[T any](ctx context.Context, c *CachedCatalog, key string, load func() (T, error)) (T, error) {
	if c.cache == nil || c.ttl <= 0 {
		return load()
	}

	if raw, ok, err := c.cache.Lookup(ctx, key); err != nil {
		c.logger.WarnErr(ctx, "catalog cache read failed", err)
	} else if ok {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn(c.logger.WithField(ctx, "cache_key", key), "catalog cache entry unreadable")
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnErr(ctx, "catalog cache encode failed", err)
		return value, nil
	}
	if err := c.cache.Set(ctx, key, string(payload), c.ttl); err != nil {
		c.logger.WarnErr(ctx, "catalog cache write failed", err)
	}
	return value, nil
}
