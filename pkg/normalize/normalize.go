// Package normalize implements C7: folding one candidate's analysis and
// (optional) live intelligence into the persisted CanonicalMCP shape, and
// merging that result into any existing record found by the dedup
// fingerprint without ever clobbering operator-edited fields.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/analyze"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

var now = time.Now

var identifierWordsRE = regexp.MustCompile(`[-_./]+`)

const maxTags = 30

// NormalizeAndMerge implements §4.7's
// normalize_and_merge(analysis, intelligence, existing?) → CanonicalMCP
// contract. existing is nil for a never-before-seen candidate.
func NormalizeAndMerge(candidate model.Candidate, scraped model.ScrapedBundle, analysis analyze.Result, intelligence *model.IntelligenceReport, health model.HealthStatus, existing *model.CanonicalMCP) *model.CanonicalMCP {
	fresh := buildFresh(candidate, scraped, analysis, intelligence, health)
	if existing == nil {
		ts := now()
		fresh.CreatedAt = ts
		fresh.UpdatedAt = ts
		return fresh
	}
	return mergeInto(existing, fresh)
}

func buildFresh(candidate model.Candidate, scraped model.ScrapedBundle, analysis analyze.Result, intelligence *model.IntelligenceReport, health model.HealthStatus) *model.CanonicalMCP {
	mcp := &model.CanonicalMCP{
		Slug:             analysis.Slug,
		Name:             candidate.Identifier,
		DisplayName:      displayName(candidate.Identifier),
		ShortDescription: analysis.ShortDescription,
		LongDescription:  analysis.LongDescription,

		Ecosystem:           candidate.Ecosystem,
		Identifier:          candidate.Identifier,
		InstallationMethods: analysis.InstallationMethods,

		Tools: analysis.Tools,

		Auth: analysis.Auth,

		ConnectionType: model.ConnectionStdio,

		Category: analysis.Category,
		Tags:     analysis.Tags,
		UseCases: analysis.UseCases,

		RepositoryURL:   candidate.RepositoryURL,
		Author:          registryAuthor(scraped),
		License:         registryLicense(scraped),
		HealthStatus:    health,
		AutoDiscovered:  true,
		DiscoverySource: candidate.DiscoveryMethod,
	}

	if len(scraped.Docs.Pages) > 0 {
		mcp.DocumentationURL = scraped.Docs.Pages[0].URL
	}
	if len(analysis.InstallationMethods) > 0 {
		primary := analysis.InstallationMethods[0]
		mcp.InstallType = primary.Kind
		mcp.EndpointCommand = primary.Command
	}

	if intelligence != nil {
		mcp.ProtocolVersion = intelligence.ProtocolVersion
		mcp.WorkingTools = intelligence.WorkingTools
		mcp.FailingTools = intelligence.FailingTools
		mcp.Verified = intelligence.TestingStrategy == model.TestingFull
		if intelligence.TestingStrategy == model.TestingFull && len(intelligence.Tools) > 0 {
			mcp.Tools = mergeLiveDescriptions(intelligence.Tools, analysis.Tools)
		}
	}

	mcp.ToolCount = len(mcp.Tools)
	return mcp
}

// mergeLiveDescriptions keeps the live tool list (authoritative per §4.6)
// but borrows a documentation-derived description for any live tool that
// didn't supply its own, per end-to-end scenario 5.
func mergeLiveDescriptions(live, documented []model.Tool) []model.Tool {
	docByName := make(map[string]model.Tool, len(documented))
	for _, t := range documented {
		docByName[strings.ToLower(t.Name)] = t
	}

	merged := make([]model.Tool, len(live))
	for i, t := range live {
		if t.Description == "" {
			if doc, ok := docByName[strings.ToLower(t.Name)]; ok {
				t.Description = doc.Description
			}
		}
		merged[i] = t
	}
	return merged
}

func displayName(identifier string) string {
	name := identifier
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimPrefix(name, "@")
	words := identifierWordsRE.Split(name, -1)
	var titled []string
	for _, w := range words {
		if w == "" {
			continue
		}
		titled = append(titled, strings.ToUpper(w[:1])+w[1:])
	}
	if len(titled) == 0 {
		return identifier
	}
	return strings.Join(titled, " ")
}

func registryAuthor(scraped model.ScrapedBundle) string {
	if scraped.Registry != nil {
		return scraped.Registry.Author
	}
	return ""
}

func registryLicense(scraped model.ScrapedBundle) string {
	if scraped.Registry != nil {
		return scraped.Registry.License
	}
	return ""
}

func sortedUniqueTags(existing, fresh []string) []string {
	seen := make(map[string]bool, len(existing)+len(fresh))
	var union []string
	for _, t := range append(append([]string{}, existing...), fresh...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		union = append(union, t)
	}
	sort.Strings(union)
	if len(union) > maxTags {
		union = union[:maxTags]
	}
	return union
}
