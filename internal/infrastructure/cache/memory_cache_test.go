package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetAndGet_ShouldRoundTrip", func(t *testing.T) {
		c := NewMemoryCache()

		require.NoError(t, c.Set(ctx, "k", []byte("value"), time.Minute))

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)

		exists, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("MissingKey_ShouldReturnNil", func(t *testing.T) {
		c := NewMemoryCache()

		got, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ExpiredEntry_ShouldBeTreatedAsMiss", func(t *testing.T) {
		c := NewMemoryCache()

		require.NoError(t, c.Set(ctx, "k", []byte("value"), time.Nanosecond))
		time.Sleep(5 * time.Millisecond)

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, got)

		exists, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("ZeroTTL_ShouldNotExpire", func(t *testing.T) {
		c := NewMemoryCache()

		require.NoError(t, c.Set(ctx, "k", []byte("value"), 0))

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)
	})

	t.Run("Delete_ShouldRemoveEntry", func(t *testing.T) {
		c := NewMemoryCache()

		require.NoError(t, c.Set(ctx, "k", []byte("value"), time.Minute))
		require.NoError(t, c.Delete(ctx, "k"))

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("StoredBytes_ShouldBeIsolatedFromCaller", func(t *testing.T) {
		c := NewMemoryCache()

		original := []byte("value")
		require.NoError(t, c.Set(ctx, "k", original, time.Minute))
		original[0] = 'X'

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)

		// Mutating the returned slice must not poison later reads
		got[0] = 'Y'
		again, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), again)
	})
}
