package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// loginKeyTTLSeconds keeps a window's counter alive one window past its end,
// so an attempt landing right at the boundary still sees the closing count
// instead of resurrecting the key as fresh.
const loginKeyTTLSeconds = attemptWindowSeconds + 1

// loginAttemptScript bumps the attempt counter for one window and arms its
// expiry on first touch, in a single round trip.
var loginAttemptScript = redis.NewScript(`
local attempts = redis.call("INCR", KEYS[1])
if attempts == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return attempts
`)

// RedisLimiter counts login attempts in Redis, so the budget holds across
// console replicas and survives a single process restarting mid-window.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter. The prefix namespaces this
// deployment's counters inside a shared Redis.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// Allow records one login attempt for key and reports whether it fits the
// per-window budget. Errors surface to the caller; the manager decides
// whether to fall back to the in-memory backend.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	sec := now.Unix()
	windowStart := sec - sec%attemptWindowSeconds
	reset := time.Unix(windowStart+attemptWindowSeconds, 0).UTC()

	res, errEval := loginAttemptScript.Run(ctx, l.client, []string{l.windowKey(key, windowStart)}, loginKeyTTLSeconds).Result()
	if errEval != nil {
		return Result{}, errEval
	}
	attempts, ok := res.(int64)
	if !ok {
		return Result{}, fmt.Errorf("rate limit redis: unexpected reply type %T", res)
	}
	if attempts > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	return Result{Allowed: true, Remaining: limit - int(attempts), Reset: reset}, nil
}

// windowKey scopes the counter to this deployment, the login identity, and
// the window it belongs to.
func (l *RedisLimiter) windowKey(key string, windowStart int64) string {
	window := strconv.FormatInt(windowStart, 10)
	if l.prefix == "" {
		return key + ":" + window
	}
	return l.prefix + ":" + key + ":" + window
}
