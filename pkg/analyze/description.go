package analyze

import (
	"fmt"
	"regexp"
	"strings"
)

const shortDescriptionLimit = 160

var boilerplateDescriptionRE = regexp.MustCompile(`(?i)^\s*(an?\s+)?mcp\s+server\s*\.?\s*$`)

// synthesizeDescription implements §4.5.8. It runs after tool extraction,
// since the synthesized fallback reads the extracted tool count; it reads
// nothing from tags or use cases, and slug generation reads nothing from it.
func synthesizeDescription(s sources, r Result) Result {
	declared := strings.TrimSpace(s.bundle.Candidate.Description)

	var long string
	if len(declared) > 20 && !boilerplateDescriptionRE.MatchString(declared) {
		long = declared
	} else {
		long = synthesizeFromIdentifier(s.bundle.Candidate.Identifier, len(r.Tools))
	}

	r.LongDescription = long
	r.ShortDescription = truncateOnWordBoundary(long, shortDescriptionLimit)
	return r
}

func synthesizeFromIdentifier(identifier string, toolCount int) string {
	words := identifierSplitRE.Split(identifier, -1)
	var named []string
	for _, w := range words {
		if w != "" {
			named = append(named, strings.Title(strings.ToLower(w)))
		}
	}
	service := strings.Join(named, " ")
	if service == "" {
		service = identifier
	}
	if toolCount > 0 {
		return fmt.Sprintf("%s MCP server exposing %d tools.", service, toolCount)
	}
	return fmt.Sprintf("%s MCP server.", service)
}

func truncateOnWordBoundary(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
