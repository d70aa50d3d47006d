package cache

import (
	"context"
	"sync"
	"time"
)

const defaultCleanupInterval = time.Minute

type entry struct {
	v   []byte
	exp time.Time
}

// TTLOption configures TTLCache.
type TTLOption func(*TTLCache)

// WithCleanupInterval sets how often expired entries are swept.
func WithCleanupInterval(d time.Duration) TTLOption {
	return func(c *TTLCache) {
		if d > 0 {
			c.interval = d
		}
	}
}

// TTLCache is an in-process BytesCache. Expired entries are dropped on read and
// by a background sweep until Close is called.
type TTLCache struct {
	mu       sync.RWMutex
	m        map[string]entry
	now      func() time.Time
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

func NewTTLCache(opts ...TTLOption) *TTLCache {
	c := &TTLCache{
		m:        make(map[string]entry),
		now:      time.Now,
		interval: defaultCleanupInterval,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.cleanupExpired()
	return c
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.v...), true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = entry{v: append([]byte(nil), value...), exp: exp}
	c.mu.Unlock()
	return nil
}

func (c *TTLCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Close stops the background sweep. Entries stay readable.
func (c *TTLCache) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *TTLCache) cleanupExpired() {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.sweep()
		}
	}
}

// sweep removes every expired entry and returns how many were dropped.
func (c *TTLCache) sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
			n++
		}
	}
	return n
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}
