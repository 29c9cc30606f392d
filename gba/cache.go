package gba

import (
	"sync"
	"time"
)

// layoutCache memoizes the most recent locator result. Locating a layout
// can cost a full-buffer scan, so repeated extractions of the same capture
// reuse the stored result for a short window. Negative results are cached
// too: an incompatible buffer shouldn't be rescanned on every tick.
//
// A single entry is enough; the engine serves one snapshot source. The
// mutex serializes the whole check-compute-store sequence so concurrent
// callers don't both pay for a scan.
type layoutCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	key      uint64
	have     bool
	layout   Layout
	err      error
	storedAt time.Time
}

func newLayoutCache(ttl time.Duration) *layoutCache {
	return &layoutCache{ttl: ttl, now: time.Now}
}

func (c *layoutCache) getOrCompute(key uint64, compute func() (Layout, error)) (Layout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.have && c.key == key && c.now().Sub(c.storedAt) < c.ttl {
		return c.layout, c.err
	}

	layout, err := compute()
	c.key = key
	c.have = true
	c.layout = layout
	c.err = err
	c.storedAt = c.now()
	return layout, err
}

func (c *layoutCache) invalidate() {
	c.mu.Lock()
	c.have = false
	c.mu.Unlock()
}
