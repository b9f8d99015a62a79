// Package ratelimit counts failed logins per client and locks a client out
// once the limit is reached within the window.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// Limiter tracks login attempts by key (the client IP).
//
// An attempt takes a slot before the credentials are checked, so
// concurrent requests from one key can never run more than the limit.
// A slot is kept when the attempt fails on credentials and handed back
// otherwise.
type Limiter interface {
	// Acquire takes a slot for key. It returns how long key stays locked
	// when no slot is left, or zero once the slot is taken.
	Acquire(ctx context.Context, key string) (time.Duration, error)
	// Release hands back a slot whose attempt did not count as a failure.
	Release(ctx context.Context, key string) error
	// Reset forgets all failures for key.
	Reset(ctx context.Context, key string) error
}

const keyPrefix = "authkeeper:login:fail:"

// KEYS[1] counter, ARGV[1] max attempts, ARGV[2] window in ms.
// Returns 0 when a slot was taken, else the lockout left in ms.
var acquireScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
if n <= tonumber(ARGV[1]) then
  return 0
end
redis.call('DECR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl <= 0 then
  return tonumber(ARGV[2])
end
return ttl
`)

var releaseScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n > 0 then
  redis.call('DECR', KEYS[1])
end
return 0
`)

// RedisLimiter keeps one counter per key that expires window after the
// first attempt. Each step runs as a single script so the count and its
// expiry change together.
type RedisLimiter struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
}

func NewRedisLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *RedisLimiter) Acquire(ctx context.Context, key string) (time.Duration, error) {
	ms, err := acquireScript.Run(ctx, l.client, []string{keyPrefix + key}, l.maxAttempts, l.window.Milliseconds()).Int64()
	if err != nil {
		return 0, oops.Code("RATELIMIT_ACQUIRE_FAILED").Wrap(err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (l *RedisLimiter) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.client, []string{keyPrefix + key}).Err(); err != nil {
		return oops.Code("RATELIMIT_RELEASE_FAILED").Wrap(err)
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return oops.Code("RATELIMIT_RESET_FAILED").Wrap(err)
	}
	return nil
}

// Noop never locks anyone out. It is used when no Redis URL is configured.
type Noop struct{}

func (Noop) Acquire(context.Context, string) (time.Duration, error) { return 0, nil }
func (Noop) Release(context.Context, string) error                  { return nil }
func (Noop) Reset(context.Context, string) error                    { return nil }

// NewRedisClient parses url, connects and pings within timeout.
func NewRedisClient(ctx context.Context, url string, timeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, oops.Code("REDIS_URL_INVALID").Wrap(err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", opts.Addr).Wrap(err)
	}
	return client, nil
}
