package pypi

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mcpcrawl/mcpcrawl/pkg/integrations"
)

// PyPI has no JSON search API; the search UI at pypi.org/search is the only
// surface, so results are scraped from its result-card markup.
var searchResultRE = regexp.MustCompile(`package-snippet__name">([^<]+)<.*?package-snippet__description">([^<]*)<`)

// SearchResult is one hit from [Client.Search].
type SearchResult struct {
	Name        string
	Description string
}

// Search queries the PyPI web search for packages matching text, returning
// up to limit results parsed from the rendered results page.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	key := fmt.Sprintf("search:%s:%d", text, limit)

	var results []SearchResult
	err := c.Cached(ctx, key, false, &results, func() error {
		url := fmt.Sprintf("https://pypi.org/search/?q=%s", integrations.URLEncode(text))
		body, err := c.GetText(ctx, url)
		if err != nil {
			return err
		}
		matches := searchResultRE.FindAllStringSubmatch(body, limit)
		results = make([]SearchResult, 0, len(matches))
		for _, m := range matches {
			results = append(results, SearchResult{Name: strings.TrimSpace(m[1]), Description: strings.TrimSpace(m[2])})
		}
		return nil
	})
	return results, err
}
