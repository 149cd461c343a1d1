package discovery

import (
	"context"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/github"
)

// discoverGoModules has no registry search surface to call: the Go module
// proxy protocol (proxy.golang.org) is addressed by exact import path and
// exposes no keyword, dependency, or naming search. Discovery for the Go
// ecosystem therefore relies entirely on the topic/classifier method,
// searching GitHub for repositories tagged with an MCP-related topic.
// Each hit's module path is reconstructed as github.com/<owner>/<repo>,
// which is correct for the overwhelming majority of Go modules that match
// their repository host.
func discoverGoModules(ctx context.Context, gh *github.Client, add func(identifier, description, method string)) error {
	if gh == nil {
		return nil
	}

	for _, topic := range config.GitHubTopics {
		hits, err := gh.SearchRepositoriesByTopic(ctx, topic, perEcosystemSearchLimit, false)
		if err != nil {
			return err
		}
		for _, h := range hits {
			identifier := "github.com/" + h.Owner + "/" + h.Repo
			add(identifier, h.Description, provenance(MethodTopic, topic))
		}
	}
	return nil
}
