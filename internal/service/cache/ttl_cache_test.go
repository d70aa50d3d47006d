package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("v"), 0))

	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(b))

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(ctx, "forever"))
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	v := []byte("abc")
	require.NoError(t, c.SetBytes(ctx, "k", v, 0))
	v[0] = 'x'

	b, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(b))
}

func TestTTLCacheSweepsExpiredEntriesWithoutReads(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(WithCleanupInterval(5 * time.Millisecond))
	defer c.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, c.SetBytes(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Millisecond))
	}
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("v"), 0))

	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
	_, ok, _ := c.GetBytes(ctx, "forever")
	assert.True(t, ok)
}

func TestTTLCacheCloseIsIdempotent(t *testing.T) {
	c := NewTTLCache()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	require.NoError(t, c.SetBytes(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, 1, c.Len())
}
