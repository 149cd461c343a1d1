package analyze

import (
	"strings"
	"testing"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

func bundleWithReadme(identifier, readme string) model.ScrapedBundle {
	return model.ScrapedBundle{
		Candidate: model.Candidate{Ecosystem: model.EcosystemNPM, Identifier: identifier, Description: ""},
		Registry:  &model.RegistryRecord{},
		Repo:      &model.RepoRecord{ReadmeText: readme, OwnerLogin: "acme-corp"},
	}
}

func TestAnalyzeExtractsToolsFromDocHeadings(t *testing.T) {
	readme := "### read_file(path)\n\nReads a file.\n\n### write_file(path, content)\n\nWrites a file.\n"
	bundle := bundleWithReadme("mcp-server-filesystem", readme)

	r := Analyze(bundle, nil, nil)
	if len(r.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d: %+v", len(r.Tools), r.Tools)
	}
}

func TestAnalyzeFallsBackToIdentifierInference(t *testing.T) {
	bundle := bundleWithReadme("mcp-server-filesystem", "No documented tools here.")
	r := Analyze(bundle, nil, nil)
	if len(r.Tools) == 0 {
		t.Fatal("expected identifier-based tool inference to produce tools")
	}
	found := false
	for _, tool := range r.Tools {
		if tool.Name == "read_file" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected read_file among inferred tools, got %+v", r.Tools)
	}
}

func TestAnalyzeLiveToolsEnrichedByDocDescriptions(t *testing.T) {
	readme := "- **search**: Searches the index.\n- **fetch**: Fetches a resource.\n"
	bundle := bundleWithReadme("mcp-server-search", readme)
	intelligence := &model.IntelligenceReport{
		Tools: []model.Tool{{Name: "search"}, {Name: "fetch"}, {Name: "cache"}},
	}

	r := Analyze(bundle, intelligence, nil)
	if len(r.Tools) != 3 {
		t.Fatalf("expected live tools/list to remain authoritative for count, got %d: %+v", len(r.Tools), r.Tools)
	}

	byName := make(map[string]model.Tool, len(r.Tools))
	for _, tool := range r.Tools {
		byName[tool.Name] = tool
	}
	if byName["search"].Description == "" {
		t.Error("expected search to be enriched with its doc description")
	}
	if byName["fetch"].Description == "" {
		t.Error("expected fetch to be enriched with its doc description")
	}
	if byName["cache"].Description != "" {
		t.Errorf("expected cache to stay undocumented, got %q", byName["cache"].Description)
	}
}

func TestAnalyzeInstallationDockerOutranksSourceBuild(t *testing.T) {
	readme := "```sh\ndocker run -i --rm mcp/server\n```\n\n```sh\ngo build ./cmd/server\n```\n"
	bundle := model.ScrapedBundle{
		Candidate: model.Candidate{Ecosystem: model.EcosystemRubyGems, Identifier: "mcp-server-go"},
		Registry:  &model.RegistryRecord{},
		Repo:      &model.RepoRecord{ReadmeText: readme, OwnerLogin: "acme-corp"},
	}
	r := Analyze(bundle, nil, nil)

	if len(r.InstallationMethods) == 0 {
		t.Fatal("expected installation methods")
	}
	primary := r.InstallationMethods[0]
	if primary.Kind != model.InstallDocker {
		t.Errorf("expected docker to be primary, got %+v", r.InstallationMethods)
	}
}

func TestAnalyzeAuthExtraction(t *testing.T) {
	readme := "Set the STRIPE_API_KEY environment variable. Uses api_key authentication."
	bundle := bundleWithReadme("stripe-mcp-server", readme)
	r := Analyze(bundle, nil, nil)

	if !r.Auth.Required {
		t.Error("expected auth to be required")
	}
	if len(r.Auth.RequiredEnvVars) != 1 || r.Auth.RequiredEnvVars[0] != "STRIPE_API_KEY" {
		t.Errorf("expected STRIPE_API_KEY to be extracted, got %v", r.Auth.RequiredEnvVars)
	}
}

func TestAnalyzeCategorySelection(t *testing.T) {
	bundle := bundleWithReadme("stripe-mcp-server", "Integrates with Stripe for billing and payments.")
	r := Analyze(bundle, nil, nil)
	if r.Category != model.CategoryPayments {
		t.Errorf("expected payments category, got %q", r.Category)
	}
}

func TestAnalyzeCategoryDefaultsToDevelopmentTools(t *testing.T) {
	bundle := bundleWithReadme("totally-generic-thing", "Does generic things with no recognizable keywords xyz123.")
	r := Analyze(bundle, nil, nil)
	if r.Category != model.CategoryDevelopmentTools {
		t.Errorf("expected development-tools sentinel default, got %q", r.Category)
	}
}

func TestAnalyzeTagsMeetFloor(t *testing.T) {
	bundle := bundleWithReadme("tiny-tool", "A small tool.")
	r := Analyze(bundle, nil, nil)
	if len(r.Tags) < minTags {
		t.Errorf("expected at least %d tags, got %d: %v", minTags, len(r.Tags), r.Tags)
	}
	if len(r.Tags) > maxTags {
		t.Errorf("expected at most %d tags, got %d", maxTags, len(r.Tags))
	}
}

func TestAnalyzeInstallationMethodsAlwaysIncludesFallback(t *testing.T) {
	bundle := bundleWithReadme("mcp-server-fs", "No install instructions documented.")
	r := Analyze(bundle, nil, nil)
	if len(r.InstallationMethods) == 0 {
		t.Fatal("expected at least the ecosystem fallback installation method")
	}
	if !strings.Contains(r.InstallationMethods[len(r.InstallationMethods)-1].Command, "npx") {
		t.Errorf("expected an npx fallback for an npm candidate, got %+v", r.InstallationMethods)
	}
}

func TestAnalyzeInstallationSpacingFixUp(t *testing.T) {
	readme := "```sh\ndocker run -i--rm-e VAR mcp/server\n```\n"
	bundle := bundleWithReadme("mcp-server-docker", readme)
	r := Analyze(bundle, nil, nil)

	found := false
	for _, m := range r.InstallationMethods {
		if strings.Contains(m.Command, "-i --rm -e VAR") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected docker flag spacing to be fixed up, got %+v", r.InstallationMethods)
	}
}

func TestAnalyzeSlugOfficialPackageHasNoOwnerSuffix(t *testing.T) {
	bundle := model.ScrapedBundle{
		Candidate: model.Candidate{Ecosystem: model.EcosystemNPM, Identifier: "@modelcontextprotocol/server-filesystem"},
		Registry:  &model.RegistryRecord{},
	}
	r := Analyze(bundle, nil, nil)
	if r.Slug != "server-filesystem" {
		t.Errorf("expected scope stripped from official package slug, got %q", r.Slug)
	}
}

func TestAnalyzeSlugCommunityPackageGetsOwnerSuffix(t *testing.T) {
	bundle := bundleWithReadme("weather-tool", "A generic MCP server.")
	r := Analyze(bundle, nil, nil)
	if !strings.HasSuffix(r.Slug, "acme-corp") {
		t.Errorf("expected owner suffix on community package slug, got %q", r.Slug)
	}
}

func TestAnalyzeSlugCollisionAppendsSuffix(t *testing.T) {
	bundle := bundleWithReadme("weather-tool", "A generic MCP server.")
	existing := map[string]model.Candidate{
		"weather-tool-acme-corp": {Ecosystem: model.EcosystemPyPI, Identifier: "other-weather-tool"},
	}
	r := Analyze(bundle, nil, existing)
	if r.Slug != "weather-tool-acme-corp-2" {
		t.Errorf("expected collision suffix -2, got %q", r.Slug)
	}
}

func TestAnalyzeDescriptionUsesDeclaredWhenSubstantive(t *testing.T) {
	bundle := bundleWithReadme("weather-tool", "")
	bundle.Candidate.Description = "Fetches real-time weather forecasts from a national weather API."
	r := Analyze(bundle, nil, nil)
	if r.LongDescription != bundle.Candidate.Description {
		t.Errorf("expected declared description to be used, got %q", r.LongDescription)
	}
}

func TestAnalyzeDescriptionSynthesizedWhenBoilerplate(t *testing.T) {
	bundle := bundleWithReadme("weather-tool", "")
	bundle.Candidate.Description = "An MCP server."
	r := Analyze(bundle, nil, nil)
	if r.LongDescription == bundle.Candidate.Description {
		t.Error("expected boilerplate description to be replaced by synthesis")
	}
}

func TestAnalyzeShortDescriptionTruncatedOnWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 50)
	short := truncateOnWordBoundary(long, 160)
	if len(short) > 160 {
		t.Errorf("expected short description within 160 chars, got %d", len(short))
	}
	if strings.HasSuffix(short, " ") {
		t.Errorf("expected no trailing space after truncation, got %q", short)
	}
}
