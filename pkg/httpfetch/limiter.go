package httpfetch

import (
	"context"
	"sync"
	"time"
)

// DefaultRate is the default sustained request rate per host, in requests
// per second.
const DefaultRate = 2.0

// DefaultBurst is the default token-bucket burst size per host.
const DefaultBurst = 4

// RateLimiter is satisfied by both the in-process Limiter and the
// Redis-backed limiter, letting Fetcher stay agnostic to which backend
// coordinates rate limits.
type RateLimiter interface {
	Wait(ctx context.Context, host string) error
}

// Limiter is a process-wide, per-host token bucket guarded by a mutex, as
// described for the crawler's shared rate-limiting state. One bucket is
// created lazily per host on first use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   int
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewLimiter creates an in-process Limiter with the given sustained rate
// (requests/second) and burst size, applied independently per host.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
	}
}

// Wait blocks until a token for host is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context, host string) error {
	for {
		d := l.reserve(host)
		if d <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
}

// reserve returns how long the caller must wait before a token is
// available, consuming one token if it returns <= 0.
func (l *Limiter) reserve(host string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[host]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastRefill: now}
		l.buckets[host] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * l.rate
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return 0
	}

	missing := 1 - b.tokens
	return time.Duration(missing/l.rate*1000) * time.Millisecond
}
