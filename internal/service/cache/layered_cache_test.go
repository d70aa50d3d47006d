package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	*TTLCache
	gets int
	fail bool
}

func (c *countingCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	return c.TTLCache.GetBytes(ctx, key)
}

func (c *countingCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.fail {
		return errors.New("redis down")
	}
	return c.TTLCache.SetBytes(ctx, key, value, ttl)
}

func TestLayeredCacheServesFromL1(t *testing.T) {
	ctx := context.Background()
	l2 := &countingCache{TTLCache: NewTTLCache()}
	c := NewLayeredCache(l2, time.Minute)

	require.NoError(t, l2.TTLCache.SetBytes(ctx, "k", []byte("v"), 0))
	for i := 0; i < 3; i++ {
		b, ok, err := c.GetBytes(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", string(b))
	}
	assert.Equal(t, 1, l2.gets)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLayeredCacheWriteThrough(t *testing.T) {
	ctx := context.Background()
	l2 := &countingCache{TTLCache: NewTTLCache(), fail: true}
	c := NewLayeredCache(l2, time.Minute)

	assert.Error(t, c.SetBytes(ctx, "k", []byte("v"), time.Hour))
	assert.Equal(t, 0, c.l1.Len())

	l2.fail = false
	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Hour))
	assert.Equal(t, 1, c.l1.Len())
	assert.Equal(t, 1, l2.Len())
}

func TestLayeredCacheDeleteReachesOtherInstances(t *testing.T) {
	ctx := context.Background()
	shared := NewTTLCache()
	a := NewLayeredCache(shared, 20*time.Millisecond)
	b := NewLayeredCache(shared, 20*time.Millisecond)
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.SetBytes(ctx, "k", []byte("v"), time.Hour))
	_, ok, err := b.GetBytes(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, a.Delete(ctx, "k"))
	_, ok, _ = a.GetBytes(ctx, "k")
	assert.False(t, ok)

	// b may serve its own copy only until the short L1 entry lapses
	assert.Eventually(t, func() bool {
		_, ok, _ := b.GetBytes(ctx, "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
