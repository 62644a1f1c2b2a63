package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it is still held by the caller's
// token, so an expired lock taken over by another instance is never freed
// by the original holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is the distributed TicketLocker for multi-instance
// deployments: SET NX PX with token-checked release. The hold TTL bounds
// how long a crashed holder can block a key.
type RedisLocker struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
	holdTTL time.Duration
}

// NewRedisLocker creates a Redis-backed locker.
func NewRedisLocker(client redis.UniversalClient, acquireTimeout, holdTTL time.Duration) *RedisLocker {
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}
	if holdTTL <= 0 {
		holdTTL = 30 * time.Second
	}
	return &RedisLocker{
		client:  client,
		prefix:  "zapdesk:lock:",
		timeout: acquireTimeout,
		holdTTL: holdTTL,
	}
}

// Acquire polls SET NX until the lock is taken or the timeout elapses.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.timeout)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.holdTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			release := func() {
				once.Do(func() {
					// Best effort: the TTL reclaims the key if this fails.
					relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = releaseScript.Run(relCtx, l.client, []string{fullKey}, token).Err()
				})
			}
			return release, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
