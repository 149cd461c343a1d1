package npm

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

// Search queries the npm registry's search index for packages matching
// text, returning up to limit results. Search responses are always served
// from cache when available, since search result freshness matters less
// than registry API quota.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	key := fmt.Sprintf("search:%s:%d", text, limit)

	var results []SearchResult
	err := c.Cached(ctx, key, false, &results, func() error {
		url := fmt.Sprintf("%s/-/v1/search?text=%s&size=%d", c.baseURL, integrations.URLEncode(text), limit)
		var data searchResponse
		if err := c.Get(ctx, url, &data); err != nil {
			return err
		}
		results = make([]SearchResult, 0, len(data.Objects))
		for _, obj := range data.Objects {
			results = append(results, SearchResult{
				Name:        obj.Package.Name,
				Description: obj.Package.Description,
				Keywords:    obj.Package.Keywords,
			})
		}
		return nil
	})
	return results, err
}

type searchResponse struct {
	Objects []struct {
		Package struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			Keywords    []string `json:"keywords"`
		} `json:"package"`
	} `json:"objects"`
}
