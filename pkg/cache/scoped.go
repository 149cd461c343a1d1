package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful in the cloud platform where different users or contexts
// need separate cache namespaces.
//
// Example usage:
//
//	// User-specific keys for private repos
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Global keys for public packages
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// DiscoveryKey generates a prefixed key for a discovery search result set.
func (k *ScopedKeyer) DiscoveryKey(ecosystem, method, term string) string {
	return k.prefix + k.inner.DiscoveryKey(ecosystem, method, term)
}

// ScrapeKey generates a prefixed key for a per-candidate scraped bundle.
func (k *ScopedKeyer) ScrapeKey(ecosystem, identifier string, opts ScrapeKeyOpts) string {
	return k.prefix + k.inner.ScrapeKey(ecosystem, identifier, opts)
}

// IntelligenceKey generates a prefixed key for a live validation report.
func (k *ScopedKeyer) IntelligenceKey(ecosystem, identifier, contentHash string) string {
	return k.prefix + k.inner.IntelligenceKey(ecosystem, identifier, contentHash)
}
