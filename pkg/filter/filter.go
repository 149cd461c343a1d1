// Package filter implements the candidate filter (C3): a cheap, pure
// heuristic that decides whether a discovered Candidate is worth the cost
// of scraping and live validation.
package filter

import (
	"strings"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// Rules is the data-driven token configuration likely_mcp evaluates
// against. The pipeline passes config.DefaultFilterRules; no override is
// read from configuration.
type Rules = config.FilterRules

// LikelyMCP implements likely_mcp(candidate, dependencies) → bool.
//
// Strong positive tokens accept immediately, regardless of exclusions.
// Otherwise a heuristic token combined with a server-role token accepts,
// unless an exclusion token also matches. Every other candidate is
// rejected.
func LikelyMCP(c model.Candidate, dependencies []string, rules Rules) bool {
	haystack := strings.ToLower(c.Identifier + " " + c.Description)

	for _, tok := range rules.StrongPositiveTokens {
		if strings.Contains(haystack, strings.ToLower(tok)) {
			return true
		}
	}
	for _, dep := range dependencies {
		if isKnownSDK(dep) {
			return true
		}
	}

	hasHeuristic := containsAny(haystack, rules.HeuristicTokens)
	hasRole := containsAny(haystack, rules.ServerRoleTokens)
	if !(hasHeuristic && hasRole) {
		return false
	}

	if containsAny(haystack, rules.ExclusionTokens) {
		return false
	}
	return true
}

func containsAny(haystack string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(haystack, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

func isKnownSDK(dep string) bool {
	dep = strings.ToLower(dep)
	for _, ids := range config.DependencyIdentifiers {
		for _, id := range ids {
			if strings.Contains(dep, strings.ToLower(id)) {
				return true
			}
		}
	}
	return false
}
