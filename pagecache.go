package broute

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// PageCache keeps computed pages for the lifetime of the process. Concurrent lookups of a missing
// key share one computation. Failed computations are not cached. The zero value is ready to use.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]string
	group singleflight.Group
}

// NewPageCache inits an empty cache.
func NewPageCache() *PageCache {
	return &PageCache{pages: map[string]string{}}
}

// Get returns the page stored under key, computing it when missing.
func (c *PageCache) Get(ctx context.Context, key string, compute func(context.Context) (string, error)) (string, error) {
	c.mu.RLock()
	page, ok := c.pages[key]
	c.mu.RUnlock()

	if ok {
		return page, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.RLock()
		page, ok := c.pages[key]
		c.mu.RUnlock()

		if ok {
			return page, nil
		}

		// the flight outlives the caller that started it, other callers may still be waiting
		page, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		if c.pages == nil {
			c.pages = map[string]string{}
		}
		c.pages[key] = page
		c.mu.Unlock()

		return page, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}

		return res.Val.(string), nil //nolint:forcetypeassert
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.pages)
}

// Reset drops every cached page.
func (c *PageCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.pages)
}
