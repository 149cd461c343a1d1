// Package pkg provides the core libraries for the mcpcrawl registry crawler.
//
// # Overview
//
// mcpcrawl discovers Model Context Protocol servers published across public
// package registries, scrapes and validates them, and persists a normalized
// catalog. The pkg directory holds reusable libraries organized by pipeline
// stage:
//
//	Registry search (npm/PyPI/crates.io/Go proxy)
//	         ↓
//	    [discovery] package (candidate fan-out)
//	         ↓
//	    [filter] package (likely-MCP heuristic)
//	         ↓
//	    [scrape] package (registry + repo + docs bundle)
//	         ↓
//	    [analyze] package (tools, auth, category, tags)
//	         ↓
//	    [intelligence] package (live install + MCP handshake)
//	         ↓
//	    [normalize] package (dedup + merge)
//	         ↓
//	    [store] package (sqlite persistence)
//
// [pipeline] orchestrates the stages above behind bounded worker pools and a
// ticker-driven daily schedule.
//
// # Supporting libraries
//
// [integrations] - HTTP clients for package registries (npm, PyPI,
// crates.io, Go proxy, optionally RubyGems/Maven/Packagist) and repository
// hosts (GitHub, GitLab).
//
// [httpfetch] - Rate-limited, retried HTTP fetcher shared across
// integrations, with an optional headless-browser fetch mode.
//
// [cache] - Keyed, TTL-aware caching used by every HTTP client and pipeline
// stage.
//
// [errors] - Structured error codes shared by all layers.
//
// [observability] - Process-wide hook registry for pipeline, cache, and
// HTTP events.
//
// [model] - The canonical data types: Candidate, RegistryRecord,
// RepoRecord, DocsBundle, Tool, InstallationMethod, AuthRequirement,
// IntelligenceReport, CanonicalMCP.
package pkg
