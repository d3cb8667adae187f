package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// sharedFetchTimeout bounds a collapsed upstream fetch, which runs detached
// from the cancellation of whichever caller started it.
const sharedFetchTimeout = 15 * time.Second

type productFetcher interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
}

type cacheObserver interface {
	IncCacheHit()
	IncCacheMiss()
}

// Cache keeps every product fetched during the process lifetime. Entries are
// never evicted and never expire; the catalog is small.
type Cache struct {
	fetcher productFetcher
	metrics cacheObserver

	mu    sync.RWMutex
	items map[int64]Product
	group singleflight.Group
}

// NewCache builds an empty product cache backed by fetcher.
func NewCache(fetcher productFetcher, metrics cacheObserver) *Cache {
	return &Cache{
		fetcher: fetcher,
		metrics: metrics,
		items:   make(map[int64]Product),
	}
}

// Get returns the cached product or fetches, stores and returns it. Concurrent
// misses for the same id share one upstream request, which is not cancelled
// when the caller that started it goes away; each caller stops waiting when
// its own ctx is done. Fetch errors are returned untouched and nothing is
// stored.
func (c *Cache) Get(ctx context.Context, id int64) (Product, error) {
	if product, ok := c.lookup(id); ok {
		if c.metrics != nil {
			c.metrics.IncCacheHit()
		}
		return product, nil
	}
	if c.metrics != nil {
		c.metrics.IncCacheMiss()
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		if product, ok := c.lookup(id); ok {
			return product, nil
		}
		fetchCtx, cancel := context.WithTimeout(detached, sharedFetchTimeout)
		defer cancel()
		product, err := c.fetcher.GetProduct(fetchCtx, id)
		if err != nil {
			return Product{}, err
		}
		c.mu.Lock()
		c.items[id] = product
		c.mu.Unlock()
		return product, nil
	})

	select {
	case <-ctx.Done():
		return Product{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Product{}, res.Err
		}
		return res.Val.(Product), nil
	}
}

// AddAll inserts or overwrites entries in bulk, typically after a listing fetch.
func (c *Cache) AddAll(products []Product) {
	if len(products) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range products {
		c.items[p.ID] = p
	}
}

// Len reports the number of cached products.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) lookup(id int64) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	product, ok := c.items[id]
	return product, ok
}
