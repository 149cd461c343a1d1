package discovery

import (
	"context"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/packagist"
)

// discoverPackagist runs keyword and naming-pattern search against
// Packagist. No PHP MCP SDK is known at time of writing, so the dependency
// method is skipped.
func discoverPackagist(ctx context.Context, c *packagist.Client, add func(identifier, description, method string)) error {
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
