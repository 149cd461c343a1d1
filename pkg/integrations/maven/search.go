package maven

import (
	"context"
	"fmt"

	"github.com/mcpcrawl/mcpcrawl/pkg/integrations"
)

// SearchResult is one hit from [Client.Search].
type SearchResult struct {
	GroupID    string
	ArtifactID string
}

// Search queries Maven Central's free-text search for artifacts matching
// text, across groupId/artifactId/description.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	key := fmt.Sprintf("search:%s:%d", text, limit)

	var results []SearchResult
	err := c.Cached(ctx, key, false, &results, func() error {
		url := fmt.Sprintf("%s?q=%s&rows=%d&wt=json", c.baseURL, integrations.URLEncode(text), limit)
		var data searchResponse
		if err := c.Get(ctx, url, &data); err != nil {
			return err
		}
		results = make([]SearchResult, 0, len(data.Response.Docs))
		for _, doc := range data.Response.Docs {
			results = append(results, SearchResult{GroupID: doc.GroupID, ArtifactID: doc.ArtifactID})
		}
		return nil
	})
	return results, err
}
