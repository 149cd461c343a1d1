// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains low-level API clients for fetching package metadata
// from various registries. Each registry has its own subpackage:
//
//   - [pypi]: Python Package Index
//   - [npm]: Node Package Manager
//   - [crates]: Rust crates.io
//   - [rubygems]: Ruby gems
//   - [packagist]: PHP Composer packages
//   - [maven]: Java Maven Central
//   - [goproxy]: Go Module Proxy
//   - [github]: GitHub API for metadata enrichment
//   - [gitlab]: GitLab API for metadata enrichment
//
// # Client Pattern
//
// All registry clients follow a consistent pattern:
//
//	client := pypi.NewClient(backend, 24*time.Hour)  // cache + TTL
//	pkg, err := client.FetchPackage(ctx, "fastapi", false)  // false = use cache
//
// Clients handle:
//   - HTTP requests with retry (HTTP 429 is returned as a RateLimitedError;
//     these clients apply no request rate limit of their own)
//   - Response caching (pluggable via [cache.Cache], typically file-based)
//   - API-specific parsing and normalization
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by all registry
// clients, including HTTP response caching via [cache.Cache].
//
// # Adding a New Registry
//
// To add support for a new package registry:
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Implement a Client with FetchPackage method
//  4. Use [NewClient] for HTTP with caching
//  5. Wire into [discovery] and [scrape] as a new ecosystem
//
// [pypi]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/pypi
// [npm]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/npm
// [crates]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/crates
// [rubygems]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/rubygems
// [packagist]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/packagist
// [maven]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/maven
// [goproxy]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/goproxy
// [github]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/github
// [gitlab]: github.com/mcpcrawl/mcpcrawl/pkg/integrations/gitlab
// [cache.Cache]: github.com/mcpcrawl/mcpcrawl/pkg/cache.Cache
// [discovery]: github.com/mcpcrawl/mcpcrawl/pkg/discovery
// [scrape]: github.com/mcpcrawl/mcpcrawl/pkg/scrape
package integrations
