package scrape

import (
	"context"
	"fmt"

	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/crates"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/goproxy"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/maven"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/npm"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/packagist"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/pypi"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/rubygems"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

func fetchNPM(ctx context.Context, c *npm.Client, pkg string) (*registryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("scrape: npm client not configured")
	}
	info, err := c.FetchPackage(ctx, pkg, false)
	if err != nil {
		return nil, err
	}
	return &registryResult{
		record: model.RegistryRecord{
			Versions:     []string{info.Version},
			Author:       info.Author,
			License:      info.License,
			Dependencies: info.Dependencies,
		},
		repoURLs: map[string]string{"Repository": info.Repository, "Homepage": info.HomePage},
		homepage: info.HomePage,
	}, nil
}

func fetchPyPI(ctx context.Context, c *pypi.Client, pkg string) (*registryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("scrape: pypi client not configured")
	}
	info, err := c.FetchPackage(ctx, pkg, false)
	if err != nil {
		return nil, err
	}
	urls := make(map[string]string, len(info.ProjectURLs)+1)
	for k, v := range info.ProjectURLs {
		urls[k] = v
	}
	urls["Homepage"] = info.HomePage

	return &registryResult{
		record: model.RegistryRecord{
			Versions:     []string{info.Version},
			Author:       info.Author,
			License:      info.License,
			Dependencies: info.Dependencies,
		},
		repoURLs: urls,
		homepage: info.HomePage,
		docHosts: []string{"https://pypi.org/project/" + info.Name + "/"},
	}, nil
}

func fetchCrate(ctx context.Context, c *crates.Client, crate string) (*registryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("scrape: crates client not configured")
	}
	info, err := c.FetchCrate(ctx, crate, false)
	if err != nil {
		return nil, err
	}
	return &registryResult{
		record: model.RegistryRecord{
			Versions:     []string{info.Version},
			License:      info.License,
			Dependencies: info.Dependencies,
		},
		repoURLs: map[string]string{"Repository": info.Repository, "Homepage": info.HomePage},
		homepage: info.HomePage,
		docHosts: []string{"https://docs.rs/" + info.Name},
	}, nil
}

func fetchGoModule(ctx context.Context, c *goproxy.Client, mod string) (*registryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("scrape: goproxy client not configured")
	}
	info, err := c.FetchModule(ctx, mod, false)
	if err != nil {
		return nil, err
	}
	// Go modules are addressed by import path, which is almost always also
	// the repository host path (github.com/owner/repo@vX).
	homepage := "https://" + info.Path
	return &registryResult{
		record: model.RegistryRecord{
			Versions:     []string{info.Version},
			Dependencies: info.Dependencies,
		},
		repoURLs: map[string]string{"Homepage": homepage},
		homepage: homepage,
		docHosts: []string{"https://pkg.go.dev/" + info.Path},
	}, nil
}

func fetchGem(ctx context.Context, c *rubygems.Client, gem string) (*registryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("scrape: rubygems client not configured")
	}
	info, err := c.FetchGem(ctx, gem, false)
	if err != nil {
		return nil, err
	}
	return &registryResult{
		record: model.RegistryRecord{
			Versions:     []string{info.Version},
			Author:       info.Authors,
			License:      info.License,
			Dependencies: info.Dependencies,
		},
		repoURLs: map[string]string{"Source": info.SourceCodeURI, "Homepage": info.HomepageURI},
		homepage: info.HomepageURI,
	}, nil
}

func fetchMavenArtifact(ctx context.Context, c *maven.Client, coordinate string) (*registryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("scrape: maven client not configured")
	}
	info, err := c.FetchArtifact(ctx, coordinate, false)
	if err != nil {
		return nil, err
	}
	return &registryResult{
		record: model.RegistryRecord{
			Versions:     []string{info.Version},
			Dependencies: info.Dependencies,
		},
		repoURLs: map[string]string{},
		docHosts: []string{info.URL},
	}, nil
}

func fetchPackagistPackage(ctx context.Context, c *packagist.Client, pkg string) (*registryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("scrape: packagist client not configured")
	}
	info, err := c.FetchPackage(ctx, pkg, false)
	if err != nil {
		return nil, err
	}
	return &registryResult{
		record: model.RegistryRecord{
			Versions:     []string{info.Version},
			Author:       info.Author,
			License:      info.License,
			Dependencies: info.Dependencies,
		},
		repoURLs: map[string]string{"Repository": info.Repository, "Homepage": info.HomePage},
		homepage: info.HomePage,
	}, nil
}
