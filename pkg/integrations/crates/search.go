package crates

import (
	"context"
	"fmt"

	"github.com/mcpcrawl/mcpcrawl/pkg/integrations"
)

// SearchResult is one hit from [Client.Search].
type SearchResult struct {
	Name        string
	Description string
	Keywords    []string
}

// Search queries crates.io's search endpoint for crates matching text.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	key := fmt.Sprintf("search:%s:%d", text, limit)

	var results []SearchResult
	err := c.Cached(ctx, key, false, &results, func() error {
		url := fmt.Sprintf("%s/crates?q=%s&per_page=%d", c.baseURL, integrations.URLEncode(text), limit)
		var data searchResponse
		if err := c.Get(ctx, url, &data); err != nil {
			return err
		}
		results = make([]SearchResult, 0, len(data.Crates))
		for _, cr := range data.Crates {
			results = append(results, SearchResult{Name: cr.Name, Description: cr.Description, Keywords: cr.Keywords})
		}
		return nil
	})
	return results, err
}

type searchResponse struct {
	Crates []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Keywords    []string `json:"keywords"`
	} `json:"crates"`
}
