package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/mcpcrawl/mcpcrawl/pkg/httpfetch"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// fetchDocs fetches up to budget URLs, skipping empty ones, and returns
// whatever succeeded. A nil fetcher (docs disabled) or every URL failing
// both yield an empty bundle, never an error.
func fetchDocs(ctx context.Context, fetcher *httpfetch.Fetcher, urls []string, budget int) model.DocsBundle {
	if fetcher == nil {
		return model.DocsBundle{}
	}

	var bundle model.DocsBundle
	seen := make(map[string]bool)
	for _, u := range urls {
		if len(bundle.Pages) >= budget {
			break
		}
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true

		text, err := fetcher.GetText(ctx, u)
		if err != nil {
			continue
		}
		bundle.Pages = append(bundle.Pages, model.DocsPage{
			URL:       u,
			Text:      text,
			WordCount: len(strings.Fields(text)),
		})
	}
	return bundle
}

// installCommandRE matches common package-manager install invocations as
// they appear in README prose and code fences.
var installCommandRE = regexp.MustCompile(`(?m)^.*\b(npm install|npx|pip install|pipx install|cargo install|cargo add|go install|gem install|composer require|docker run)\b.*$`)

// extractInstallHints returns every line in text that looks like a shell
// install invocation, with leading and trailing whitespace trimmed.
func extractInstallHints(text string) []string {
	matches := installCommandRE.FindAllString(text, -1)
	hints := make([]string, 0, len(matches))
	for _, m := range matches {
		hints = append(hints, strings.TrimSpace(m))
	}
	return hints
}

// authHintRE matches lines that mention credential/auth configuration, the
// raw material the analyzer's auth-extraction step (C5) later classifies
// into a structured AuthRequirement.
var authHintRE = regexp.MustCompile(`(?mi)^.*\b(api[_-]?key|access[_-]?token|bearer token|oauth|client[_-]?secret|\.env)\b.*$`)

func extractAuthHints(text string) []string {
	matches := authHintRE.FindAllString(text, -1)
	hints := make([]string, 0, len(matches))
	for _, m := range matches {
		hints = append(hints, strings.TrimSpace(m))
	}
	return hints
}
