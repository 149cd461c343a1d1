package analyze

import (
	"regexp"
	"sort"
	"strings"
)

const (
	minTags = 20
	maxTags = 30
)

var identifierSplitRE = regexp.MustCompile(`[@/_-]+`)

// serviceExpansions adds domain-specific tags when a known service name
// appears in the identifier.
var serviceExpansions = map[string][]string{
	"stripe":   {"stripe", "payments", "billing", "transactions"},
	"slack":    {"slack", "messaging", "notifications"},
	"github":   {"github", "git", "version-control"},
	"postgres": {"postgresql", "sql", "database"},
	"mongo":    {"mongodb", "nosql", "database"},
	"aws":      {"aws", "cloud", "infrastructure"},
	"notion":   {"notion", "productivity", "notes"},
}

// dependencyTechTags maps a dependency name fragment to the tech tags it
// implies.
var dependencyTechTags = map[string][]string{
	"postgres": {"postgresql", "sql"},
	"pg":       {"postgresql", "sql"},
	"express":  {"express", "http"},
	"fastapi":  {"fastapi", "http"},
	"redis":    {"redis", "cache"},
	"grpc":     {"grpc", "rpc"},
}

// capabilityVerbs are added as tags when an observed tool name contains them.
var capabilityVerbs = []string{"create", "read", "update", "delete", "search", "list", "execute", "sync"}

// fallbackTagPool is appended, in order, until the 20-tag floor is met. A
// single-token identifier with no registry keywords, tools, or dependency
// matches only guarantees 4 tags (the token itself, "mcp",
// "model-context-protocol", and the ecosystem), so the pool must carry at
// least minTags-4 entries on its own, with margin for collisions against
// tags already added from the identifier or service expansions.
var fallbackTagPool = []string{
	"integration", "api", "automation", "developer-tools", "cli", "remote",
	"json-rpc", "stdio", "tooling", "productivity", "extension", "plugin",
	"agent", "assistant", "workflow", "server", "client", "connector",
	"middleware", "toolkit", "utility", "library", "self-hosted", "lightweight",
}

// generateTags implements §4.5.4.
func generateTags(s sources, r Result) Result {
	set := make(map[string]bool)
	add := func(tags ...string) {
		for _, t := range tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				set[t] = true
			}
		}
	}

	for _, part := range identifierSplitRE.Split(s.bundle.Candidate.Identifier, -1) {
		add(part)
	}
	if s.bundle.Registry != nil {
		add(s.bundle.Registry.Keywords...)
	}

	lowerIdentifier := strings.ToLower(s.bundle.Candidate.Identifier)
	for svc, tags := range serviceExpansions {
		if strings.Contains(lowerIdentifier, svc) {
			add(tags...)
		}
	}

	for _, t := range r.Tools {
		name := strings.ToLower(t.Name)
		for _, verb := range capabilityVerbs {
			if strings.Contains(name, verb) {
				add(verb)
			}
		}
	}

	if s.bundle.Registry != nil {
		for _, dep := range s.bundle.Registry.Dependencies {
			depLower := strings.ToLower(dep)
			for frag, tags := range dependencyTechTags {
				if strings.Contains(depLower, frag) {
					add(tags...)
				}
			}
		}
	}

	add("mcp", "model-context-protocol", string(s.bundle.Candidate.Ecosystem))

	for _, fallback := range fallbackTagPool {
		if len(set) >= minTags {
			break
		}
		add(fallback)
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	r.Tags = tags
	return r
}
