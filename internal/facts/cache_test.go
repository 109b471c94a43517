package facts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return ListPage{Total: 42}, nil
	}

	key, err := cache.BuildKey(ctx, "facts", "list", "all")
	require.NoError(t, err)

	var first ListPage
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second ListPage
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, loads, "second fetch must hit the cache")
	assert.Equal(t, 42, first.Total)
	assert.Equal(t, first, second)
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "facts", "list")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "facts", "list")
	require.NoError(t, err)

	assert.NotEqual(t, before, after, "a rebuild must version away stale keys")
}

func TestCacheFetchJSONPropagatesLoaderError(t *testing.T) {
	cache, _ := newTestCache(t)
	wantErr := errors.New("boom")

	err := cache.FetchJSON(context.Background(), "k", &ListPage{}, func(ctx context.Context) (interface{}, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestCacheNilClientFallsThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)

	var page ListPage
	err := cache.FetchJSON(context.Background(), "k", &page, func(ctx context.Context) (interface{}, error) {
		return ListPage{Total: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.NoError(t, cache.Bump(context.Background()))
}

func TestCacheKeyTokens(t *testing.T) {
	req := ListRequest{Channel: "shopify", Page: 2, PerPage: 50}
	parts := keyList(req)
	assert.Contains(t, parts, "shopify")
	assert.Contains(t, parts, "-")

	when := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"facts", "summary", "category", "2025-12-01", "-"},
		keySummary(SummaryRequest{GroupBy: "category", From: when}))
}
