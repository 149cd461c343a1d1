package analyze

import (
	"sort"
	"strings"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// categoryPriority breaks ties between equally-scored categories, matching
// the order the category enum is declared in (§6); earlier entries win.
var categoryPriority = func() map[model.Category]int {
	p := make(map[model.Category]int, len(model.Categories))
	for i, c := range model.Categories {
		p[c] = i
	}
	return p
}()

// selectCategory implements §4.5.3: score every category by keyword hits
// across identifier, description, README, observed tools, and
// dependencies; the highest score wins, ties broken by enum priority
// order. A zero-scoring candidate falls back to development-tools.
func selectCategory(s sources, r Result) Result {
	haystack := strings.ToLower(strings.Join([]string{
		s.bundle.Candidate.Identifier,
		s.bundle.Candidate.Description,
		s.combinedText,
		toolNamesJoined(r.Tools),
		dependenciesJoined(s.bundle.Registry),
	}, " "))

	scores := make(map[model.Category]int)
	for keyword, cat := range config.CategoryKeywords {
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			scores[cat]++
		}
	}

	r.Category = bestCategory(scores)
	return r
}

func bestCategory(scores map[model.Category]int) model.Category {
	best := model.CategoryDevelopmentTools
	bestScore := 0
	candidates := make([]model.Category, 0, len(scores))
	for c := range scores {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return categoryPriority[candidates[i]] < categoryPriority[candidates[j]]
	})
	for _, c := range candidates {
		if scores[c] > bestScore {
			best = c
			bestScore = scores[c]
		}
	}
	return best
}

func toolNamesJoined(tools []model.Tool) string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return strings.Join(names, " ")
}

func dependenciesJoined(reg *model.RegistryRecord) string {
	if reg == nil {
		return ""
	}
	return strings.Join(reg.Dependencies, " ")
}
