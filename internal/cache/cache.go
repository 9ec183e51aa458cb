package cache

import (
	"context"
	"time"
)

// Cache is the minimal cache-aside interface used for derived values such as
// student balances. Entries are advisory: every cached value can be rebuilt
// from the backing store.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}
