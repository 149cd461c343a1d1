package discovery

import (
	"context"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/rubygems"
)

// discoverRubyGems runs keyword and naming-pattern search. RubyGems has no
// known MCP SDK gem at time of writing, so the dependency method is
// skipped rather than searching for an identifier that does not exist.
func discoverRubyGems(ctx context.Context, c *rubygems.Client, add func(identifier, description, method string)) error {
	if c == nil {
		return nil
	}

	for _, term := range config.SeedTerms {
		hits, err := c.Search(ctx, term, perEcosystemSearchLimit)
		if err != nil {
			return err
		}
		for _, h := range hits {
			add(h.Name, h.Description, provenance(MethodKeyword, term))
		}
	}

	for _, prefix := range config.NamingPrefixes {
		hits, err := c.Search(ctx, prefix, perEcosystemSearchLimit)
		if err != nil {
			return err
		}
		for _, h := range hits {
			add(h.Name, h.Description, provenance(MethodNamingPattern, prefix))
		}
	}
	for _, suffix := range config.NamingSuffixes {
		hits, err := c.Search(ctx, suffix, perEcosystemSearchLimit)
		if err != nil {
			return err
		}
		for _, h := range hits {
			add(h.Name, h.Description, provenance(MethodNamingPattern, suffix))
		}
	}
	return nil
}
