package discovery

import (
	"context"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/npm"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// discoverNPM runs keyword, dependency, and naming-pattern search against
// the npm registry. npm has no dependent-package reverse index in its
// public API, so the dependency method degrades to searching for the SDK
// identifier itself as a keyword.
func discoverNPM(ctx context.Context, c *npm.Client, add func(identifier, description, method string)) error {
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

	for _, dep := range config.DependencyIdentifiers[model.EcosystemNPM] {
		hits, err := c.Search(ctx, dep, perEcosystemSearchLimit)
		if err != nil {
			return err
		}
		for _, h := range hits {
			add(h.Name, h.Description, provenance(MethodDependency, dep))
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
