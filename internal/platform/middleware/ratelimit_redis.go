package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter counts requests per key in fixed one-second windows stored in
// redis, so every server instance shares the same budget.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, perSecond int) *RedisLimiter {
	if perSecond < 1 {
		perSecond = 1
	}
	return &RedisLimiter{client: client, limit: int64(perSecond), prefix: "frontdesk:ratelimit", now: time.Now}
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (l *RedisLimiter) windowKey(key string, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, now.Unix())
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	k := l.windowKey(key, now)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, fmt.Errorf("redis rate limit %s: %w", key, err)
	}

	if incr.Val() > l.limit {
		return false, windowRemaining(now), nil
	}
	return true, 0, nil
}

func windowRemaining(now time.Time) time.Duration {
	return now.Truncate(time.Second).Add(time.Second).Sub(now)
}
