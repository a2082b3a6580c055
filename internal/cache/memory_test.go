package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache[string]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache[string]()

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache[int]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 42, 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache[string]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Deleting an absent key is a no-op.
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestGetWithFetch(t *testing.T) {
	c := NewMemoryCache[string]()
	ctx := context.Background()

	fetches := 0
	fetch := func(ctx context.Context, key string) (string, error) {
		fetches++
		return "fetched:" + key, nil
	}

	got, err := GetWithFetch(ctx, c, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched:k", got)
	assert.Equal(t, 1, fetches)

	// Second read is served from the cache.
	got, err = GetWithFetch(ctx, c, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched:k", got)
	assert.Equal(t, 1, fetches)
}

func TestGetWithFetchError(t *testing.T) {
	c := NewMemoryCache[string]()
	wantErr := errors.New("backend down")

	_, err := GetWithFetch(context.Background(), c, "k", time.Minute,
		func(ctx context.Context, key string) (string, error) {
			return "", wantErr
		})
	assert.ErrorIs(t, err, wantErr)

	// Nothing was cached on the error path.
	_, err = c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
