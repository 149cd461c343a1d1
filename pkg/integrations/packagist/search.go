package packagist

import (
	"context"
	"fmt"

	"github.com/mcpcrawl/mcpcrawl/pkg/integrations"
)

// SearchResult is one hit from [Client.Search].
type SearchResult struct {
	Name        string
	Description string
}

// Search queries the Packagist search endpoint for packages matching text.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	key := fmt.Sprintf("search:%s:%d", text, limit)

	var results []SearchResult
	err := c.Cached(ctx, key, false, &results, func() error {
		url := fmt.Sprintf("https://packagist.org/search.json?q=%s&per_page=%d", integrations.URLEncode(text), limit)
		var data searchResponse
		if err := c.Get(ctx, url, &data); err != nil {
			return err
		}
		results = make([]SearchResult, 0, len(data.Results))
		for _, r := range data.Results {
			results = append(results, SearchResult{Name: r.Name, Description: r.Description})
		}
		return nil
	})
	return results, err
}

type searchResponse struct {
	Results []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"results"`
}
