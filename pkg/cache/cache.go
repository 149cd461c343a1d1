// Package cache provides a keyed, TTL-aware caching abstraction shared by
// every HTTP-backed integration client and by the crawl pipeline's stage
// results.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with an expiration.
// Implementations must be safe for concurrent use.
//
// Get returns (data, true, nil) on a hit, (nil, false, nil) on a clean miss,
// and a non-nil error only when the backend itself failed (a corrupt entry
// is treated as a miss, not an error).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys for the distinct cacheable stages of the crawler.
// Separating key construction from the Cache interface lets callers scope
// or namespace keys (see [ScopedKeyer]) without touching storage code.
type Keyer interface {
	// HTTPKey builds a key for a raw HTTP response, scoped by namespace
	// (typically an integration's name, e.g. "npm:", "github:").
	HTTPKey(namespace, key string) string

	// DiscoveryKey builds a key for a discovery search result set.
	DiscoveryKey(ecosystem, method, term string) string

	// ScrapeKey builds a key for a per-candidate scraped bundle.
	ScrapeKey(ecosystem, identifier string, opts ScrapeKeyOpts) string

	// IntelligenceKey builds a key for a live validation report, scoped by
	// the analyzed content hash so a content change invalidates the report.
	IntelligenceKey(ecosystem, identifier, contentHash string) string
}

// ScrapeKeyOpts parameterizes ScrapeKey so callers can invalidate a scrape
// cache entry when the scraping policy itself changes (e.g. max doc pages).
type ScrapeKeyOpts struct {
	MaxDocPages int
}

// DefaultKeyer builds deterministic keys. HTTP keys join the namespace and
// key verbatim ("http:" + namespace + ":" + key); every other key hashes
// the call's arguments alongside a short, human-readable prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default key builder.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (k *DefaultKeyer) DiscoveryKey(ecosystem, method, term string) string {
	return hashKey("discovery:"+ecosystem, method, term)
}

func (k *DefaultKeyer) ScrapeKey(ecosystem, identifier string, opts ScrapeKeyOpts) string {
	return hashKey("scrape:"+ecosystem, identifier, opts)
}

func (k *DefaultKeyer) IntelligenceKey(ecosystem, identifier, contentHash string) string {
	return hashKey("intelligence:"+ecosystem, identifier, contentHash)
}

var _ Keyer = (*DefaultKeyer)(nil)
