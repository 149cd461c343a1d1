package discovery

import (
	"context"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/maven"
)

// discoverMaven runs keyword and naming-pattern search against Maven
// Central. Maven Central's search index exposes no dependency-graph query,
// so the dependency method is skipped.
func discoverMaven(ctx context.Context, c *maven.Client, add func(identifier, description, method string)) error {
	if c == nil {
		return nil
	}

	emit := func(hits []maven.SearchResult, method string) {
		for _, h := range hits {
			add(h.GroupID+":"+h.ArtifactID, "", method)
		}
	}

	for _, term := range config.SeedTerms {
		hits, err := c.Search(ctx, term, perEcosystemSearchLimit)
		if err != nil {
			return err
		}
		emit(hits, provenance(MethodKeyword, term))
	}

	for _, prefix := range config.NamingPrefixes {
		hits, err := c.Search(ctx, prefix, perEcosystemSearchLimit)
		if err != nil {
			return err
		}
		emit(hits, provenance(MethodNamingPattern, prefix))
	}
	for _, suffix := range config.NamingSuffixes {
		hits, err := c.Search(ctx, suffix, perEcosystemSearchLimit)
		if err != nil {
			return err
		}
		emit(hits, provenance(MethodNamingPattern, suffix))
	}
	return nil
}
