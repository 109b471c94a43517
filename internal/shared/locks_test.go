package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) *RebuildLock {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRebuildLock(client, time.Minute)
}

func TestRebuildLockExcludesSecondHolder(t *testing.T) {
	lock := newTestLock(t)
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = lock.Acquire(ctx, "run-b")
	require.NoError(t, err)
	assert.False(t, ok, "second acquirer must be rejected while held")

	release()

	_, ok, err = lock.Acquire(ctx, "run-b")
	require.NoError(t, err)
	assert.True(t, ok, "lock must be reusable after release")
}

func TestRebuildLockReleaseIsOwnerScoped(t *testing.T) {
	lock := newTestLock(t)
	ctx := context.Background()

	releaseA, ok, err := lock.Acquire(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate TTL expiry followed by a new holder.
	lock.client.Del(ctx, lock.key)
	_, ok, err = lock.Acquire(ctx, "run-b")
	require.NoError(t, err)
	require.True(t, ok)

	releaseA()

	got, err := lock.client.Get(ctx, lock.key).Result()
	require.NoError(t, err)
	assert.Equal(t, "run-b", got, "a stale release must not clobber the new holder")
}

func TestRebuildLockNilClientIsNoOp(t *testing.T) {
	lock := NewRebuildLock(nil, time.Minute)
	release, ok, err := lock.Acquire(context.Background(), "run-a")
	require.NoError(t, err)
	assert.True(t, ok)
	release()
}
