package cache

import (
	"context"
	"time"
)

// DefaultL1TTL bounds how long one instance may serve a value another instance
// already deleted from L2.
const DefaultL1TTL = 2 * time.Second

// LayeredCache keeps a short-lived in-process copy (L1) in front of a shared cache (L2).
// Deletes reach other instances only through L2, so L1 entries must stay short.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

func NewLayeredCache(l2 BytesCache, l1TTL time.Duration) *LayeredCache {
	if l1TTL <= 0 {
		l1TTL = DefaultL1TTL
	}
	return &LayeredCache{l1: NewTTLCache(), l2: l2, l1TTL: l1TTL}
}

func (c *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := c.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := c.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = c.l1.SetBytes(ctx, key, b, c.l1TTL)
	return b, true, nil
}

// SetBytes writes through to L2 first; L1 is only filled once L2 accepted the value.
func (c *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1 := c.l1TTL
	if ttl > 0 && ttl < l1 {
		l1 = ttl
	}
	return c.l1.SetBytes(ctx, key, value, l1)
}

// Delete clears L2 before L1 so a concurrent read cannot refill L1 from L2.
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	err := c.l2.Delete(ctx, key)
	_ = c.l1.Delete(ctx, key)
	return err
}

// Close stops the L1 sweep; L2 is owned by the caller.
func (c *LayeredCache) Close() error {
	return c.l1.Close()
}
