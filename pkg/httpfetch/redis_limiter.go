package httpfetch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter coordinates rate limits for host across multiple crawler
// processes using a fixed-window counter in Redis. It trades the in-process
// Limiter's smooth token bucket for a simple, easy-to-reason-about window:
// at most burst requests to a host per window.
type RedisLimiter struct {
	client *redis.Client
	burst  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter connects to addr and returns a RedisLimiter allowing up
// to burst requests per host per window.
func NewRedisLimiter(addr string, burst int64, window time.Duration) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("httpfetch: connect to redis at %s: %w", addr, err)
	}
	return &RedisLimiter{client: client, burst: burst, window: window, prefix: "mcpcrawl:ratelimit:"}, nil
}

// Wait blocks until a slot for host opens within the current window.
func (l *RedisLimiter) Wait(ctx context.Context, host string) error {
	key := l.prefix + host
	for {
		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("httpfetch: redis incr: %w", err)
		}
		if count == 1 {
			l.client.Expire(ctx, key, l.window)
		}
		if count <= l.burst {
			return nil
		}

		ttl, err := l.client.TTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			ttl = l.window
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ttl):
		}
	}
}

// Close releases the underlying Redis connection pool.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
