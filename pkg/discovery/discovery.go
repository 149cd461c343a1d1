// Package discovery implements the ecosystem discoverers (C2): one
// implementation per package ecosystem that fans out keyword, dependency,
// naming-pattern, and topic searches and unions the results into a
// deduplicated set of Candidates.
package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/crates"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/github"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/goproxy"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/maven"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/npm"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/packagist"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/pypi"
	"github.com/mcpcrawl/mcpcrawl/pkg/integrations/rubygems"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// Method names the discovery technique that produced a Candidate, recorded
// in its DiscoveryMethod field as "method:detail" for provenance.
type Method string

const (
	MethodKeyword       Method = "keyword"
	MethodDependency    Method = "dependency"
	MethodNamingPattern Method = "naming_pattern"
	MethodTopic         Method = "topic"
)

func provenance(m Method, detail string) string {
	return fmt.Sprintf("%s:%s", m, detail)
}

// Clients bundles the per-ecosystem registry clients and the GitHub client
// used for the topic-search fallback. Any field may be nil; a nil client
// simply disables that ecosystem's discovery.
type Clients struct {
	NPM       *npm.Client
	PyPI      *pypi.Client
	Crates    *crates.Client
	GoProxy   *goproxy.Client
	RubyGems  *rubygems.Client
	Maven     *maven.Client
	Packagist *packagist.Client
	GitHub    *github.Client
}

// perEcosystemSearchLimit bounds how many hits each individual search call
// contributes, independent of the run-wide MaxCandidates cap applied by the
// caller (pkg/pipeline).
const perEcosystemSearchLimit = 50

// Discover runs every applicable discovery method for eco and returns the
// deduplicated union of Candidates found, each carrying discovery
// provenance. Candidates with an empty Identifier are never returned.
func Discover(ctx context.Context, eco model.Ecosystem, clients Clients) ([]model.Candidate, error) {
	seen := make(map[string]model.Candidate)
	add := func(identifier, description, method string) {
		identifier = trimIdentifier(identifier)
		if identifier == "" {
			return
		}
		c := model.Candidate{
			Ecosystem:       eco,
			Identifier:      identifier,
			Description:     description,
			DiscoveryMethod: method,
			DiscoveredAt:    now(),
		}
		if _, exists := seen[c.Key()]; !exists {
			seen[c.Key()] = c
		}
	}

	var err error
	switch eco {
	case model.EcosystemNPM:
		err = discoverNPM(ctx, clients.NPM, add)
	case model.EcosystemPyPI:
		err = discoverPyPI(ctx, clients.PyPI, add)
	case model.EcosystemCargo:
		err = discoverCrates(ctx, clients.Crates, add)
	case model.EcosystemGo:
		err = discoverGoModules(ctx, clients.GitHub, add)
	case model.EcosystemRubyGems:
		err = discoverRubyGems(ctx, clients.RubyGems, add)
	case model.EcosystemMaven:
		err = discoverMaven(ctx, clients.Maven, add)
	case model.EcosystemPackagist:
		err = discoverPackagist(ctx, clients.Packagist, add)
	default:
		return nil, fmt.Errorf("discovery: unsupported ecosystem %q", eco)
	}
	if err != nil && len(seen) == 0 {
		return nil, err
	}

	out := make([]model.Candidate, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	return out, nil
}

// DiscoverAll runs Discover for every ecosystem in ecosystems concurrently,
// bounded by concurrency, and returns the combined candidate set. A
// per-ecosystem error is logged into the returned errs slice but does not
// abort discovery of the other ecosystems.
func DiscoverAll(ctx context.Context, ecosystems []model.Ecosystem, clients Clients, concurrency int) ([]model.Candidate, []error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	type result struct {
		candidates []model.Candidate
		err        error
	}

	jobs := make(chan model.Ecosystem)
	results := make(chan result)

	worker := func() {
		for eco := range jobs {
			c, err := Discover(ctx, eco, clients)
			results <- result{candidates: c, err: err}
		}
	}

	workers := concurrency
	if workers > len(ecosystems) {
		workers = len(ecosystems)
	}
	if workers == 0 {
		return nil, nil
	}
	for i := 0; i < workers; i++ {
		go worker()
	}

	go func() {
		defer close(jobs)
		for _, eco := range ecosystems {
			select {
			case jobs <- eco:
			case <-ctx.Done():
				return
			}
		}
	}()

	var all []model.Candidate
	var errs []error
	for range ecosystems {
		r := <-results
		all = append(all, r.candidates...)
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	return all, errs
}

// now is overridden in tests; production code always uses time.Now.
var now = time.Now

func trimIdentifier(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}
