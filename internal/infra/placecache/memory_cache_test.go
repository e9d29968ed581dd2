package placecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/cyclecare/internal/domain/locator"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	places := []locator.Place{{ID: "a", Name: "Clinic"}}
	require.NoError(t, cache.Set(ctx, "k", places, time.Minute))
	places[0].Name = "mutated"

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Clinic", got[0].Name)
}

func TestMemoryCacheExpires(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []locator.Place{{ID: "a"}}, time.Minute))
	now = now.Add(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCacheSweepsExpiredOnSet(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "1.300:103.800:hospital:5000", []locator.Place{{ID: "a"}}, time.Minute))
	require.NoError(t, cache.Set(ctx, "1.310:103.800:hospital:5000", []locator.Place{{ID: "b"}}, time.Minute))
	require.NoError(t, cache.Set(ctx, "pinned", []locator.Place{{ID: "c"}}, 0))
	require.Equal(t, 3, cache.Len())

	now = now.Add(2 * time.Minute)
	require.NoError(t, cache.Set(ctx, "1.320:103.800:hospital:5000", []locator.Place{{ID: "d"}}, time.Minute))
	require.Equal(t, 2, cache.Len())

	_, ok, err := cache.Get(ctx, "pinned")
	require.NoError(t, err)
	require.True(t, ok)
}
