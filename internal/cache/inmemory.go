package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// InMemoryCache wraps go-cache behind the Cache interface.
type InMemoryCache struct {
	cache *gocache.Cache
}

var (
	inMemoryCache *InMemoryCache
	inMemoryOnce  sync.Once
)

// InitializeInMemoryCache sets up the process-wide in-memory cache.
func InitializeInMemoryCache() {
	inMemoryOnce.Do(func() {
		inMemoryCache = &InMemoryCache{
			cache: gocache.New(ExpiryDefaultInMemory, ExpiryCleanupInterval),
		}
	})
}

// GetInMemoryCache returns the process-wide in-memory cache.
func GetInMemoryCache() *InMemoryCache {
	InitializeInMemoryCache()
	return inMemoryCache
}

func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration <= 0 {
		expiration = ExpiryDefaultInMemory
	}
	c.cache.Set(key, value, expiration)
}

func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}
