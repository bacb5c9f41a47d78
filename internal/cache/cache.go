package cache

import (
	"context"
	"log"

	"github.com/maypok86/otter"
	"golang.org/x/sync/singleflight"
)

// DefaultHotCapacity bounds the in-process hot layer.
const DefaultHotCapacity = 4096

// Cache layers an in-process hot cache and request coalescing over the
// durable store. It is the only mutation path into the store: concurrent
// requests for the same uncached key collapse into one computation, and all
// callers receive the same entry (or the same failure).
type Cache struct {
	store *Store
	hot   otter.Cache[string, *Entry]
	group singleflight.Group
}

// New creates a Cache over store. A nil store degrades to memory-only
// operation, which keeps a run alive when the cache location is unusable.
func New(store *Store, hotCapacity int) (*Cache, error) {
	if hotCapacity <= 0 {
		hotCapacity = DefaultHotCapacity
	}
	hot, err := otter.MustBuilder[string, *Entry](hotCapacity).Build()
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, hot: hot}, nil
}

// GetOrCompute returns the entry for key, computing it at most once per key
// concurrently within this process. The slow path goes through
// singleflight; the durable write happens before waiters are released, so a
// released waiter always observes a fully written entry.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (*Entry, error)) (*Entry, error) {
	if entry, ok := c.hot.Get(key); ok {
		if c.store != nil {
			c.store.Touch(key)
		}
		return entry, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: a racing caller may have just
		// finished computing and writing this key.
		if c.store != nil {
			if entry, ok := c.store.Get(key); ok {
				c.hot.Set(key, entry)
				return entry, nil
			}
		}

		entry, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		if c.store != nil {
			if putErr := c.store.Put(entry); putErr != nil {
				// Storage trouble degrades to a memory-only result.
				log.Printf("cache: write for %s failed: %v", entry.Path, putErr)
			}
		}
		c.hot.Set(key, entry)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

// RecordRun stamps the start of an analysis run in the durable store.
func (c *Cache) RecordRun(runID string) error {
	if c.store == nil {
		return nil
	}
	return c.store.RecordRun(runID)
}

// Entries returns every durable entry, for session-scoped index builds.
// Memory-only operation yields an empty set.
func (c *Cache) Entries() ([]*Entry, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.All()
}

// Close releases the hot layer and the durable store.
func (c *Cache) Close() error {
	c.hot.Close()
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
