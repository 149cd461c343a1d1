package normalize

import (
	"testing"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/analyze"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func TestNormalizeAndMergeNewCandidateSetsTimestamps(t *testing.T) {
	now = fixedNow
	defer func() { now = time.Now }()

	candidate := model.Candidate{Ecosystem: model.EcosystemNPM, Identifier: "mcp-server-filesystem"}
	analysis := analyze.Result{
		Slug: "server-filesystem", ShortDescription: "short", LongDescription: "long",
		Category: model.CategoryDevelopmentTools, Tags: []string{"mcp", "filesystem"},
	}

	mcp := NormalizeAndMerge(candidate, model.ScrapedBundle{}, analysis, nil, model.HealthUnknown, nil)

	if mcp.CreatedAt != fixedNow() || mcp.UpdatedAt != fixedNow() {
		t.Errorf("expected both timestamps set to now, got created=%v updated=%v", mcp.CreatedAt, mcp.UpdatedAt)
	}
	if mcp.Slug != "server-filesystem" {
		t.Errorf("expected slug to carry through from analysis, got %q", mcp.Slug)
	}
}

func TestMergePreservesOperatorOwnedDescription(t *testing.T) {
	existing := &model.CanonicalMCP{
		Slug: "weather-tool-acme", LongDescription: "human-written description", Tags: []string{"special"},
		FieldSources: map[string]model.FieldSource{"LongDescription": model.SourceOperator, "Tags": model.SourceOperator},
		CreatedAt:    fixedNow(),
	}
	fresh := &model.CanonicalMCP{
		Slug: "weather-tool-acme", LongDescription: "freshly synthesized description",
		Tags: []string{"weather", "forecast"},
	}

	merged := mergeInto(existing, fresh)

	if merged.LongDescription != "human-written description" {
		t.Errorf("expected operator-owned description preserved, got %q", merged.LongDescription)
	}
	if len(merged.Tags) != 1 || merged.Tags[0] != "special" {
		t.Errorf("expected operator-owned tags preserved, got %v", merged.Tags)
	}
}

func TestMergeCrawlerOwnedFieldTakesNewNonEmptyValue(t *testing.T) {
	existing := &model.CanonicalMCP{Slug: "x", Author: "old-author"}
	fresh := &model.CanonicalMCP{Slug: "x", Author: "new-author"}

	merged := mergeInto(existing, fresh)
	if merged.Author != "new-author" {
		t.Errorf("expected crawler-owned field replaced, got %q", merged.Author)
	}
}

func TestMergeKeepsExistingWhenFreshIsEmpty(t *testing.T) {
	existing := &model.CanonicalMCP{Slug: "x", Author: "old-author"}
	fresh := &model.CanonicalMCP{Slug: "x", Author: ""}

	merged := mergeInto(existing, fresh)
	if merged.Author != "old-author" {
		t.Errorf("expected existing value retained when fresh is empty, got %q", merged.Author)
	}
}

func TestMergeUpdatedAtOnlyAdvancesOnChange(t *testing.T) {
	now = fixedNow
	defer func() { now = time.Now }()

	created := fixedNow().Add(-24 * time.Hour)
	existing := &model.CanonicalMCP{Slug: "x", Author: "same-author", CreatedAt: created, UpdatedAt: created}
	fresh := &model.CanonicalMCP{Slug: "x", Author: "same-author"}

	merged := mergeInto(existing, fresh)
	if merged.UpdatedAt != created {
		t.Errorf("expected updated_at unchanged when nothing changed, got %v", merged.UpdatedAt)
	}
	if merged.CreatedAt != created {
		t.Errorf("expected created_at immutable, got %v", merged.CreatedAt)
	}
}

func TestMergeToolsLiveListAlwaysReplaces(t *testing.T) {
	existing := []model.Tool{{Name: "search"}, {Name: "fetch"}, {Name: "extra_documented_only"}}
	fresh := []model.Tool{{Name: "search"}, {Name: "fetch"}, {Name: "cache"}}

	got := mergeTools(existing, fresh, true)
	if len(got) != 3 || got[2].Name != "cache" {
		t.Errorf("expected live list to replace unconditionally, got %+v", got)
	}
}

func TestMergeToolsDocSubsetKeepsExisting(t *testing.T) {
	existing := []model.Tool{{Name: "search"}, {Name: "fetch"}, {Name: "extra"}}
	fresh := []model.Tool{{Name: "search"}}

	got := mergeTools(existing, fresh, false)
	if len(got) != 3 {
		t.Errorf("expected richer existing list kept when new doc list is a subset, got %+v", got)
	}
}

func TestMergeToolsDocSupersetReplaces(t *testing.T) {
	existing := []model.Tool{{Name: "search"}}
	fresh := []model.Tool{{Name: "search"}, {Name: "fetch"}}

	got := mergeTools(existing, fresh, false)
	if len(got) != 2 {
		t.Errorf("expected new non-subset doc list to replace, got %+v", got)
	}
}

func TestSortedUniqueTagsCapsAt30(t *testing.T) {
	var existing []string
	for i := 0; i < 20; i++ {
		existing = append(existing, string(rune('a'+i)))
	}
	var fresh []string
	for i := 0; i < 20; i++ {
		fresh = append(fresh, string(rune('A'+i)))
	}

	got := sortedUniqueTags(existing, fresh)
	if len(got) != maxTags {
		t.Errorf("expected tags capped at %d, got %d", maxTags, len(got))
	}
}

func TestDedupIndexFindsBySlug(t *testing.T) {
	idx := NewDedupIndex()
	mcp := &model.CanonicalMCP{Slug: "server-filesystem"}
	idx.Record(mcp, EcosystemIdentifierKey(model.EcosystemNPM, "mcp-server-filesystem"))

	found, kind, ok := idx.Find("server-filesystem", "", "", "")
	if !ok || kind != MatchSlug || found != mcp {
		t.Fatalf("expected slug match, got found=%v kind=%q ok=%v", found, kind, ok)
	}
}

func TestDedupIndexFindsByEcosystemIdentifier(t *testing.T) {
	idx := NewDedupIndex()
	mcp := &model.CanonicalMCP{Slug: "server-filesystem"}
	key := EcosystemIdentifierKey(model.EcosystemNPM, "mcp-server-filesystem")
	idx.Record(mcp, key)

	found, kind, ok := idx.Find("different-slug", key, "", "")
	if !ok || kind != MatchEcosystemIdent || found != mcp {
		t.Fatalf("expected ecosystem/identifier match, got found=%v kind=%q ok=%v", found, kind, ok)
	}
}

func TestDedupIndexFindsByRepoAndCommand(t *testing.T) {
	idx := NewDedupIndex()
	mcp := &model.CanonicalMCP{Slug: "server-filesystem", RepositoryURL: "https://github.com/Foo/Bar.git", EndpointCommand: "npx mcp-server-fs"}
	idx.Record(mcp, "")

	found, kind, ok := idx.Find("different-slug", "", "https://github.com/foo/bar", "npx mcp-server-fs")
	if !ok || kind != MatchRepoAndCommand || found != mcp {
		t.Fatalf("expected repo+command match, got found=%v kind=%q ok=%v", found, kind, ok)
	}
}

func TestResolveMatchRecordsMergeEventWithoutRewritingSlug(t *testing.T) {
	found := &model.CanonicalMCP{Slug: "existing-slug"}
	target, event := ResolveMatch("new-slug", found, MatchRepoAndCommand)

	if target != nil {
		t.Error("expected no direct merge target on non-slug match")
	}
	if event == nil || event.MatchedSlug != "existing-slug" || event.CandidateSlug != "new-slug" {
		t.Errorf("expected merge event recorded, got %+v", event)
	}
}

func TestResolveMatchSlugAlwaysMerges(t *testing.T) {
	found := &model.CanonicalMCP{Slug: "same-slug"}
	target, event := ResolveMatch("same-slug", found, MatchSlug)

	if target != found || event != nil {
		t.Errorf("expected direct merge on slug match, got target=%v event=%v", target, event)
	}
}

func TestNormalizeRepoURLFoldsVariants(t *testing.T) {
	a := normalizeRepoURL("https://github.com/Foo/Bar.git")
	b := normalizeRepoURL("github.com/foo/bar")
	if a != b {
		t.Errorf("expected repo URL variants to fold to the same key, got %q vs %q", a, b)
	}
}
