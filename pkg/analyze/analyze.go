// Package analyze implements the content analyzer (C5): a pipeline of pure
// extractor(sources) -> partial analysis functions composed in an explicit,
// ordered sequence over one accumulating Result, rather than a per-concern
// analyzer struct hierarchy.
package analyze

import (
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// Result is the analyzer's structured output: everything C7 needs to
// produce a CanonicalMCP, short of merge/dedup decisions.
type Result struct {
	Tools              []model.Tool
	Auth               model.AuthRequirement
	Category           model.Category
	Tags               []string
	UseCases           []string
	InstallationMethods []model.InstallationMethod
	Slug               string
	ShortDescription   string
	LongDescription    string
}

// sources bundles everything an extractor may read. Every extractor sees
// the same sources and only ever writes its own concern into Result,
// letting the pipeline run them in any order that respects declared
// dependencies (tools before tags/use-cases/description; nothing before
// tools).
type sources struct {
	bundle        model.ScrapedBundle
	intelligence  *model.IntelligenceReport
	combinedText  string // README + doc pages + observed stderr, lowercased once
	existingSlugs map[string]model.Candidate
}

// extractor is one pipeline stage: it reads sources and the Result
// accumulated so far, and returns the Result with its own concern filled
// in. Stages run strictly in order; later stages may read earlier stages'
// output (e.g. tag generation reads extracted tools).
type extractor func(s sources, r Result) Result

// pipeline is the fixed, ordered list of extractors run over every
// candidate. Order encodes real dependencies: tools must be extracted
// before tags, use cases, or description can reference them; slug
// generation reads no other extractor's output and simply runs last.
var pipeline = []extractor{
	extractTools,
	extractAuth,
	selectCategory,
	generateTags,
	generateUseCases,
	extractInstallationMethods,
	synthesizeDescription,
	generateSlug,
}

// Analyze runs the full extractor pipeline over a scraped bundle, with an
// optional live IntelligenceReport from C6 and the slugs already persisted
// (for collision handling in generateSlug).
func Analyze(bundle model.ScrapedBundle, intelligence *model.IntelligenceReport, existingSlugs map[string]model.Candidate) Result {
	s := sources{
		bundle:        bundle,
		intelligence:  intelligence,
		combinedText:  buildCombinedText(bundle, intelligence),
		existingSlugs: existingSlugs,
	}

	var r Result
	for _, stage := range pipeline {
		r = stage(s, r)
	}
	return r
}

func buildCombinedText(bundle model.ScrapedBundle, intelligence *model.IntelligenceReport) string {
	text := ""
	if bundle.Repo != nil {
		text += bundle.Repo.ReadmeText + "\n"
	}
	for _, page := range bundle.Docs.Pages {
		text += page.Text + "\n"
	}
	for _, hint := range bundle.AuthHints {
		text += hint + "\n"
	}
	if intelligence != nil {
		for _, e := range intelligence.ObservedErrors {
			text += e + "\n"
		}
	}
	return text
}
