package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/cache"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations"
)

var repoURLPattern = regexp.MustCompile(`https?://gitlab\.com/([^/]+)/([^/]+)`)

// Client provides access to the GitLab API for repository metadata
// enrichment. It handles HTTP requests with caching, automatic retries, and
// optional authentication.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitLab API client with optional authentication.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching
//   - token: GitLab personal access token (empty string for unauthenticated)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
//
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"PRIVATE-TOKEN": token}
	}

	return &Client{
		Client:  integrations.NewClient(backend, "gitlab:", cacheTTL, headers),
		baseURL: "https://gitlab.com/api/v4",
	}
}

// Fetch retrieves repository metrics (stars, contributors, activity) from
// GitLab, in the same [integrations.RepoMetrics] shape the GitHub client
// produces, so downstream scraping does not need to branch on repo host.
//
// Release and contributor lookups are best-effort; a failure there does not
// fail the overall fetch, matching the GitHub client's behavior.
func (c *Client) Fetch(ctx context.Context, owner, repo string, refresh bool) (*integrations.RepoMetrics, error) {
	key := owner + "/" + repo

	var m integrations.RepoMetrics
	err := c.Cached(ctx, key, refresh, &m, func() error {
		return c.fetchMetrics(ctx, owner, repo, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) fetchMetrics(ctx context.Context, owner, repo string, m *integrations.RepoMetrics) error {
	id := url.QueryEscape(owner + "/" + repo)

	var data projectResponse
	reqURL := fmt.Sprintf("%s/projects/%s", c.baseURL, id)
	if err := c.Get(ctx, reqURL, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: gitlab project %s/%s", err, owner, repo)
		}
		return err
	}

	*m = integrations.RepoMetrics{
		RepoURL:  fmt.Sprintf("https://gitlab.com/%s/%s", owner, repo),
		Owner:    owner,
		Stars:    data.StarCount,
		Topics:   data.Topics,
		Archived: data.Archived,
	}
	if data.LastActivityAt != nil {
		m.LastCommitAt = data.LastActivityAt
	}

	if rel, err := c.fetchRelease(ctx, id); err == nil {
		m.LastReleaseAt = rel
	}
	if contribs, err := c.fetchContributors(ctx, id); err == nil {
		m.Contributors = contribs
	}
	return nil
}

func (c *Client) fetchRelease(ctx context.Context, id string) (*time.Time, error) {
	var releases []releaseResponse
	reqURL := fmt.Sprintf("%s/projects/%s/releases", c.baseURL, id)
	if err := c.Get(ctx, reqURL, &releases); err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, integrations.ErrNotFound
	}
	return &releases[0].ReleasedAt, nil
}

func (c *Client) fetchContributors(ctx context.Context, id string) ([]integrations.Contributor, error) {
	var data []contributorResponse
	reqURL := fmt.Sprintf("%s/projects/%s/repository/contributors?per_page=5", c.baseURL, id)
	if err := c.Get(ctx, reqURL, &data); err != nil {
		return nil, err
	}

	result := make([]integrations.Contributor, 0, len(data))
	for _, cr := range data {
		result = append(result, integrations.Contributor{
			Login:         cr.Name,
			Contributions: cr.Commits,
		})
	}
	return result, nil
}

// FetchReadme retrieves the repository's README as plain text via GitLab's
// raw-file endpoint on the default branch. GitLab's project API does not
// expose a content-negotiated README endpoint like GitHub's, so this fetches
// the conventional filename directly; a 404 for one casing is not fatal to
// the caller.
func (c *Client) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	key := "readme:" + owner + "/" + repo
	id := url.QueryEscape(owner + "/" + repo)

	var text string
	err := c.Cached(ctx, key, false, &text, func() error {
		reqURL := fmt.Sprintf("%s/projects/%s/repository/files/README.md/raw?ref=HEAD", c.baseURL, id)
		body, err := c.GetText(ctx, reqURL)
		if err != nil {
			return err
		}
		text = body
		return nil
	})
	return text, err
}

// ExtractURL extracts GitLab repository owner and name from package URLs.
//
// This function searches through urls map and homepage for GitLab URLs.
// It looks for patterns like "https://gitlab.com/owner/repo".
//
// Returns:
//   - owner: Repository owner username (empty if not found)
//   - repo: Repository name (empty if not found)
//   - ok: true if a GitLab URL was found, false otherwise
//
// This function is safe for concurrent use.
func ExtractURL(urls map[string]string, homepage string) (owner, repo string, ok bool) {
	return integrations.ExtractRepoURL(repoURLPattern, urls, homepage)
}

type projectResponse struct {
	StarCount      int        `json:"star_count"`
	Topics         []string   `json:"topics"`
	Archived       bool       `json:"archived"`
	LastActivityAt *time.Time `json:"last_activity_at"`
}

type releaseResponse struct {
	ReleasedAt time.Time `json:"released_at"`
}

type contributorResponse struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}
