package scrape

import (
	"context"

	"github.com/mcpcrawl/mcpcrawl/pkg/integrations"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/github"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/gitlab"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// resolveRepo finds a GitHub or GitLab repository among reg's candidate
// URLs and fetches its metadata and README. Absence of a resolvable
// repository, or any failure fetching it, is never fatal: both return
// values are simply empty/nil.
func resolveRepo(ctx context.Context, reg *registryResult, clients Clients) (readme string, record *model.RepoRecord) {
	if clients.GitHub != nil {
		if owner, repo, ok := github.ExtractURL(reg.repoURLs, reg.homepage); ok {
			return fetchGitHubRepo(ctx, clients.GitHub, owner, repo)
		}
	}
	if clients.GitLab != nil {
		if owner, repo, ok := gitlab.ExtractURL(reg.repoURLs, reg.homepage); ok {
			return fetchGitLabRepo(ctx, clients.GitLab, owner, repo)
		}
	}
	return "", nil
}

func fetchGitHubRepo(ctx context.Context, c *github.Client, owner, repo string) (string, *model.RepoRecord) {
	metrics, err := c.Fetch(ctx, owner, repo, false)
	var record *model.RepoRecord
	if err == nil {
		record = repoRecordFromMetrics(owner, metrics)
	}
	readme, _ := c.FetchReadme(ctx, owner, repo)
	if record != nil {
		record.ReadmeText = readme
	}
	return readme, record
}

func fetchGitLabRepo(ctx context.Context, c *gitlab.Client, owner, repo string) (string, *model.RepoRecord) {
	metrics, err := c.Fetch(ctx, owner, repo, false)
	var record *model.RepoRecord
	if err == nil {
		record = repoRecordFromMetrics(owner, metrics)
	}
	readme, _ := c.FetchReadme(ctx, owner, repo)
	if record != nil {
		record.ReadmeText = readme
	}
	return readme, record
}

func repoRecordFromMetrics(owner string, m *integrations.RepoMetrics) *model.RepoRecord {
	r := &model.RepoRecord{
		Stars:      m.Stars,
		Topics:     m.Topics,
		Archived:   m.Archived,
		License:    m.License,
		OwnerLogin: owner,
	}
	if m.LastCommitAt != nil {
		r.UpdatedAt = *m.LastCommitAt
	}
	return r
}
