package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Returns {allowed, count, pttl}. The key expires with the window, so a
// missing key is a fresh window.
var hitScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count >= limit then
	return {0, count, redis.call('PTTL', KEYS[1])}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], window)
end
return {1, count, redis.call('PTTL', KEYS[1])}
`)

// RedisStore relies on the redis server clock for expiry; the now passed to
// Hit is only used to report the window bounds.
type RedisStore struct {
	client redis.Scripter
	prefix string
}

func NewRedisStore(client redis.Scripter, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, error) {
	res, err := hitScript.Run(ctx, s.client, []string{s.prefix + key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("hitScript.Run -> %w", err)
	}
	if len(res) != 3 {
		return Window{}, fmt.Errorf("hitScript.Run -> unexpected reply length %d", len(res))
	}

	ttl := time.Duration(res[2]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	resetAt := now.Add(ttl)

	return Window{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		Start:   resetAt.Add(-window),
		ResetAt: resetAt,
	}, nil
}
