package analyze

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// knownOfficialVendors are `@scope/` names or repository owners recognized
// as an official MCP-maintaining org; packages under these never get an
// owner suffix appended to their slug.
var knownOfficialVendors = map[string]bool{
	"modelcontextprotocol": true,
	"anthropic":            true,
	"anthropics":           true,
}

var slugCleanRE = regexp.MustCompile(`[^a-z0-9-]+`)
var slugDashRunRE = regexp.MustCompile(`-+`)

// generateSlug implements §4.5.7: official packages keep a bare cleaned
// identifier; community packages append the repository owner; collisions
// against a different (ecosystem, identifier) get a numeric suffix.
func generateSlug(s sources, r Result) Result {
	identifier := s.bundle.Candidate.Identifier

	owner := ""
	if s.bundle.Repo != nil {
		owner = s.bundle.Repo.OwnerLogin
	}
	official := isOfficialPackage(identifier, owner)

	// Official packages drop their `@vendor/` scope entirely: the slug is
	// built from the bare package name, not "vendor-name".
	base := identifier
	if official {
		if scope := scopeOf(identifier); scope != "" {
			base = strings.TrimPrefix(identifier, "@"+scope+"/")
		}
	}
	cleanedID := cleanSlugPart(base)

	slug := cleanedID
	if !official && owner != "" {
		slug = cleanedID + "-" + cleanSlugPart(owner)
	}

	r.Slug = resolveSlugCollision(slug, s.bundle.Candidate, s.existingSlugs)
	return r
}

func isOfficialPackage(identifier, owner string) bool {
	if scope := scopeOf(identifier); scope != "" && knownOfficialVendors[strings.ToLower(scope)] {
		return true
	}
	return owner != "" && knownOfficialVendors[strings.ToLower(owner)]
}

func scopeOf(identifier string) string {
	if !strings.HasPrefix(identifier, "@") {
		return ""
	}
	rest := strings.TrimPrefix(identifier, "@")
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return ""
}

func cleanSlugPart(s string) string {
	s = strings.ToLower(s)
	s = slugCleanRE.ReplaceAllString(s, "-")
	s = slugDashRunRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// resolveSlugCollision appends -2, -3, ... until the slug is unique, unless
// the existing owner of that slug is actually the same (ecosystem,
// identifier), in which case the slug is reused as-is.
func resolveSlugCollision(slug string, candidate model.Candidate, existing map[string]model.Candidate) string {
	if existing == nil {
		return slug
	}
	owner, taken := existing[slug]
	if !taken || (owner.Ecosystem == candidate.Ecosystem && owner.Identifier == candidate.Identifier) {
		return slug
	}
	for n := 2; ; n++ {
		candidateSlug := fmt.Sprintf("%s-%d", slug, n)
		owner, taken := existing[candidateSlug]
		if !taken || (owner.Ecosystem == candidate.Ecosystem && owner.Identifier == candidate.Identifier) {
			return candidateSlug
		}
	}
}
