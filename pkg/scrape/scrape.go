// Package scrape implements the per-ecosystem scrapers (C4): given a
// Candidate, gather registry detail, repository metadata and README, and a
// bounded number of additional documentation pages into a ScrapedBundle.
package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcpcrawl/mcpcrawl/pkg/httpfetch"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/crates"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/github"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/gitlab"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/goproxy"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/maven"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/npm"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/packagist"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/pypi"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/rubygems"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// defaultDocBudget caps the number of additional documentation pages fetched
// per candidate, beyond the README.
const defaultDocBudget = 4

// ErrRegistryNotFound is returned when a candidate's registry detail could
// not be fetched at all; this is the only scrape failure that drops a
// candidate outright rather than yielding a partial bundle.
var ErrRegistryNotFound = errors.New("scrape: registry record not found")

// Clients bundles every registry and repository-host client the scraper may
// call, plus the shared documentation fetcher. Any field may be nil to
// disable that ecosystem or capability.
type Clients struct {
	NPM       *npm.Client
	PyPI      *pypi.Client
	Crates    *crates.Client
	GoProxy   *goproxy.Client
	RubyGems  *rubygems.Client
	Maven     *maven.Client
	Packagist *packagist.Client
	GitHub    *github.Client
	GitLab    *gitlab.Client
	Docs      *httpfetch.Fetcher
}

// registryResult is the ecosystem-agnostic shape every per-ecosystem
// registry fetch reduces to.
type registryResult struct {
	record   model.RegistryRecord
	repoURLs map[string]string // candidate URL keys (Source, Repository, Homepage, ...) → URL
	homepage string
	docHosts []string // extra language-specific doc URLs to try (docs.rs, pkg.go.dev, ...)
}

// Option configures a Scrape call.
type Option func(*options)

type options struct {
	docBudget int
}

// WithDocBudget overrides the default per-candidate documentation page cap.
func WithDocBudget(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.docBudget = n
		}
	}
}

// Scrape gathers everything available about c into a ScrapedBundle. Only a
// missing registry record is fatal; every other fetch degrades gracefully,
// leaving the corresponding bundle field empty.
func Scrape(ctx context.Context, c model.Candidate, clients Clients, opts ...Option) (*model.ScrapedBundle, error) {
	o := options{docBudget: defaultDocBudget}
	for _, opt := range opts {
		opt(&o)
	}

	reg, err := fetchRegistry(ctx, c, clients)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrRegistryNotFound, c.Ecosystem, c.Identifier, err)
	}

	bundle := &model.ScrapedBundle{
		Candidate: c,
		Registry:  &reg.record,
	}

	readme, repoRecord := resolveRepo(ctx, reg, clients)
	if repoRecord != nil {
		bundle.Repo = repoRecord
	}

	docURLs := make([]string, 0, len(reg.docHosts)+1)
	if reg.homepage != "" {
		docURLs = append(docURLs, reg.homepage)
	}
	docURLs = append(docURLs, reg.docHosts...)

	bundle.Docs = fetchDocs(ctx, clients.Docs, docURLs, o.docBudget)

	text := readme
	for _, page := range bundle.Docs.Pages {
		text += "\n" + page.Text
	}
	bundle.InstallHints = extractInstallHints(text)
	bundle.AuthHints = extractAuthHints(text)

	return bundle, nil
}

func fetchRegistry(ctx context.Context, c model.Candidate, clients Clients) (*registryResult, error) {
	switch c.Ecosystem {
	case model.EcosystemNPM:
		return fetchNPM(ctx, clients.NPM, c.Identifier)
	case model.EcosystemPyPI:
		return fetchPyPI(ctx, clients.PyPI, c.Identifier)
	case model.EcosystemCargo:
		return fetchCrate(ctx, clients.Crates, c.Identifier)
	case model.EcosystemGo:
		return fetchGoModule(ctx, clients.GoProxy, c.Identifier)
	case model.EcosystemRubyGems:
		return fetchGem(ctx, clients.RubyGems, c.Identifier)
	case model.EcosystemMaven:
		return fetchMavenArtifact(ctx, clients.Maven, c.Identifier)
	case model.EcosystemPackagist:
		return fetchPackagistPackage(ctx, clients.Packagist, c.Identifier)
	default:
		return nil, fmt.Errorf("scrape: unsupported ecosystem %q", c.Ecosystem)
	}
}
