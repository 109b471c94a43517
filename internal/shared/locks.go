package shared

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RebuildLockKey is the redis key guarding the fact rebuild critical section
// across processes (API server and worker).
const RebuildLockKey = "facts:rebuild:lock"

// RebuildLock serializes fact rebuilds across processes via SET NX.
type RebuildLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRebuildLock constructs a lock helper. A nil client degrades to a no-op
// lock, leaving serialization to the in-process mutex.
func NewRebuildLock(client *redis.Client, ttl time.Duration) *RebuildLock {
	return &RebuildLock{client: client, key: RebuildLockKey, ttl: ttl}
}

// Acquire attempts to take the lock. It returns a release function on
// success and ok=false when another holder is active.
func (l *RebuildLock) Acquire(ctx context.Context, token string) (release func(), ok bool, err error) {
	if l == nil || l.client == nil {
		return func() {}, true, nil
	}
	set, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !set {
		return nil, false, nil
	}
	release = func() {
		// Release only when we still own the lock; a TTL expiry followed by
		// another acquirer must not be clobbered.
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		_ = l.client.Eval(context.Background(), script, []string{l.key}, token).Err()
	}
	return release, true, nil
}
