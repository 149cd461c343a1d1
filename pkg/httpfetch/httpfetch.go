// Package httpfetch provides the rate-limited, retried HTTP fetcher shared
// by every registry and repository-host integration client, plus an
// optional headless-browser fetch mode for JavaScript-rendered doc sites.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/cache"
)

// defaultTimeout is applied to every request unless overridden by the
// caller's context deadline.
const defaultTimeout = 15 * time.Second

// Fetcher performs rate-limited, retried GETs against arbitrary hosts. It
// wraps net/http the same way pkg/integrations.NewHTTPClient does, adding a
// shared per-host Limiter in front of every request.
//
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	http    *http.Client
	limiter RateLimiter
	render  Renderer // optional, nil unless browser rendering was configured
}

// Option configures a Fetcher at construction time.
type Option func(*Fetcher)

// WithLimiter overrides the default in-process Limiter, e.g. with a
// Redis-backed one shared across crawler processes.
func WithLimiter(l RateLimiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithRenderer enables browser-rendered fetches for hosts that require
// JavaScript execution (see NewRodRenderer).
func WithRenderer(r Renderer) Option {
	return func(f *Fetcher) { f.render = r }
}

// New creates a Fetcher with an in-process token-bucket Limiter.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: NewLimiter(DefaultRate, DefaultBurst),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get performs a rate-limited GET with retry-on-5xx, returning the response
// body. The caller owns and must close the returned io.ReadCloser if err is
// nil. Bodies from non-2xx responses are drained and closed internally; an
// error is always returned in that case.
func (f *Fetcher) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	host := hostOf(url)
	if err := f.limiter.Wait(ctx, host); err != nil {
		return nil, err
	}

	var body io.ReadCloser
	err := cache.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := f.http.Do(req)
		if err != nil {
			return cache.Retryable(fmt.Errorf("httpfetch: %w", err))
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return ErrNotFound
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return cache.Retryable(fmt.Errorf("httpfetch: status %d for %s", resp.StatusCode, url))
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("httpfetch: status %d for %s", resp.StatusCode, url)
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// GetText performs a rate-limited GET and returns the body as a string.
func (f *Fetcher) GetText(ctx context.Context, url string) (string, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderedText fetches url using the configured browser Renderer, falling
// back to a plain GetText when no Renderer was configured. It is intended
// for doc pages that render content client-side.
func (f *Fetcher) RenderedText(ctx context.Context, url string, opts RenderOptions) (string, error) {
	if f.render == nil {
		return f.GetText(ctx, url)
	}
	host := hostOf(url)
	if err := f.limiter.Wait(ctx, host); err != nil {
		return "", err
	}
	return f.render.Render(ctx, url, opts)
}
