package analyze

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxUseCases    = 8
	minUseCaseLen  = 15
	maxUseCaseLen  = 150
)

// serviceUseCaseTemplates are sentences keyed by an identifier keyword,
// used regardless of which tools were actually observed.
var serviceUseCaseTemplates = map[string]string{
	"slack":   "Send automated notifications to Slack channels.",
	"stripe":  "Process payments and manage billing programmatically.",
	"github":  "Automate repository and pull request workflows.",
	"notion":  "Read and update Notion pages and databases.",
	"postgres": "Query and manage a PostgreSQL database.",
}

var toolVerbReadable = map[string]string{
	"create": "Create new records",
	"read":   "Read existing data",
	"update": "Update existing records",
	"delete": "Delete records",
	"search": "Search across available data",
	"list":   "List available resources",
	"execute": "Execute operations against the underlying service",
	"sync":   "Synchronize data with the underlying service",
}

// generateUseCases implements §4.5.5: up to 8 sentences, ranked by
// specificity (mentions the identifier > business-value verb > generic),
// with length bounds enforced.
func generateUseCases(s sources, r Result) Result {
	type scored struct {
		text  string
		score int
	}
	var candidates []scored

	identifier := strings.ToLower(s.bundle.Candidate.Identifier)
	seen := make(map[string]bool)
	addCandidate := func(text string, score int) {
		text = strings.TrimSpace(text)
		if len(text) < minUseCaseLen || len(text) > maxUseCaseLen {
			return
		}
		if seen[text] {
			return
		}
		seen[text] = true
		candidates = append(candidates, scored{text: text, score: score})
	}

	for keyword, sentence := range serviceUseCaseTemplates {
		if strings.Contains(identifier, keyword) {
			score := 2
			if strings.Contains(strings.ToLower(sentence), keyword) {
				score = 3
			}
			addCandidate(sentence, score)
		}
	}

	verbsSeen := make(map[string]bool)
	for _, t := range r.Tools {
		name := strings.ToLower(t.Name)
		for verb, readable := range toolVerbReadable {
			if strings.Contains(name, verb) && !verbsSeen[verb] {
				verbsSeen[verb] = true
				addCandidate(fmt.Sprintf("%s via %s.", readable, s.bundle.Candidate.Identifier), 1)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	useCases := make([]string, 0, maxUseCases)
	for _, c := range candidates {
		if len(useCases) >= maxUseCases {
			break
		}
		useCases = append(useCases, c.text)
	}

	r.UseCases = useCases
	return r
}
