package normalize

import (
	"regexp"
	"strings"
	"sync"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// MatchKind records which of the three dedup keys found an existing record.
type MatchKind string

const (
	MatchSlug           MatchKind = "slug"
	MatchEcosystemIdent MatchKind = "ecosystem_identifier"
	MatchRepoAndCommand MatchKind = "repo_and_command"
)

// MergeEvent is recorded for operator review when a non-slug dedup key
// points at a record with a different slug; the crawler never silently
// rewrites slugs on its own (§9 "dedup graph without cycles").
type MergeEvent struct {
	CandidateSlug string
	MatchedSlug   string
	MatchedBy     MatchKind
}

// DedupIndex is a tri-key lookup over persisted records: by slug, by
// (ecosystem, identifier), and by (normalized repository URL, primary
// installation command). Each key maps to one slug; resolution stops
// after one hop, so merged-into pointers are never followed recursively.
type DedupIndex struct {
	mu            sync.RWMutex
	bySlug        map[string]*model.CanonicalMCP
	byEcosystemID map[string]string // ecosystem:identifier -> slug
	byRepoCommand map[string]string // repoURL|command -> slug
}

// NewDedupIndex builds an empty index.
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{
		bySlug:        make(map[string]*model.CanonicalMCP),
		byEcosystemID: make(map[string]string),
		byRepoCommand: make(map[string]string),
	}
}

// Record indexes mcp under all three keys it currently satisfies.
func (d *DedupIndex) Record(mcp *model.CanonicalMCP, ecosystemIdentifierKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bySlug[mcp.Slug] = mcp
	if ecosystemIdentifierKey != "" {
		d.byEcosystemID[ecosystemIdentifierKey] = mcp.Slug
	}
	if key := repoCommandKey(mcp.RepositoryURL, mcp.EndpointCommand); key != "" {
		d.byRepoCommand[key] = mcp.Slug
	}
}

// Find resolves a candidate's dedup fingerprint to an existing record, if
// any, and reports which key matched. A slug match always wins; otherwise
// (ecosystem, identifier) is tried, then (repo URL, primary command).
func (d *DedupIndex) Find(slug string, ecosystemIdentifierKey string, repositoryURL, primaryCommand string) (*model.CanonicalMCP, MatchKind, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if mcp, ok := d.bySlug[slug]; ok {
		return mcp, MatchSlug, true
	}
	if ecosystemIdentifierKey != "" {
		if matchedSlug, ok := d.byEcosystemID[ecosystemIdentifierKey]; ok {
			return d.bySlug[matchedSlug], MatchEcosystemIdent, true
		}
	}
	if key := repoCommandKey(repositoryURL, primaryCommand); key != "" {
		if matchedSlug, ok := d.byRepoCommand[key]; ok {
			return d.bySlug[matchedSlug], MatchRepoAndCommand, true
		}
	}
	return nil, "", false
}

// EcosystemIdentifierKey builds the (ecosystem, identifier) dedup key.
func EcosystemIdentifierKey(ecosystem model.Ecosystem, identifier string) string {
	return string(ecosystem) + ":" + identifier
}

var trailingGitRE = regexp.MustCompile(`(?i)\.git/?$`)

// normalizeRepoURL lowercases the whole URL, strips scheme, trailing slash, and
// a trailing ".git", so "https://github.com/Foo/Bar.git" and
// "git@github.com:Foo/Bar" fold onto a comparable form for dedup purposes.
func normalizeRepoURL(url string) string {
	u := strings.ToLower(strings.TrimSpace(url))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "git@")
	u = strings.Replace(u, ":", "/", 1)
	u = trailingGitRE.ReplaceAllString(u, "")
	return strings.TrimSuffix(u, "/")
}

func repoCommandKey(repositoryURL, primaryCommand string) string {
	repo := normalizeRepoURL(repositoryURL)
	cmd := strings.TrimSpace(primaryCommand)
	if repo == "" || cmd == "" {
		return ""
	}
	return repo + "|" + cmd
}

// ResolveMatch decides whether a found record should be merged into
// directly (slug match) or instead surfaces a MergeEvent for operator
// review (a different slug matched by identity or repo+command), per
// §4.7's "merge event... but the crawler does not silently rewrite slugs."
func ResolveMatch(candidateSlug string, found *model.CanonicalMCP, matchedBy MatchKind) (mergeTarget *model.CanonicalMCP, event *MergeEvent) {
	if found == nil {
		return nil, nil
	}
	if matchedBy == MatchSlug || found.Slug == candidateSlug {
		return found, nil
	}
	return nil, &MergeEvent{CandidateSlug: candidateSlug, MatchedSlug: found.Slug, MatchedBy: matchedBy}
}
