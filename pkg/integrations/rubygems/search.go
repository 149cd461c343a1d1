package rubygems

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

// Search queries the RubyGems search endpoint for gems matching text.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	key := fmt.Sprintf("search:%s:%d", text, limit)

	var results []SearchResult
	err := c.Cached(ctx, key, false, &results, func() error {
		url := fmt.Sprintf("%s/search.json?query=%s", c.baseURL, integrations.URLEncode(text))
		var data []searchHit
		if err := c.Get(ctx, url, &data); err != nil {
			return err
		}
		if limit > 0 && len(data) > limit {
			data = data[:limit]
		}
		results = make([]SearchResult, 0, len(data))
		for _, hit := range data {
			results = append(results, SearchResult{Name: hit.Name, Description: hit.Info})
		}
		return nil
	})
	return results, err
}

type searchHit struct {
	Name string `json:"name"`
	Info string `json:"info"`
}
