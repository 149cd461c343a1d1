package pipeline

import (
	"context"
	"sync"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/analyze"
	"github.com/mcpcrawl/mcpcrawl/pkg/filter"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
	"github.com/mcpcrawl/mcpcrawl/pkg/normalize"
	"github.com/mcpcrawl/mcpcrawl/pkg/scrape"
)

// runStats accumulates per-run counters under a mutex; every finalize
// worker writes to it concurrently.
type runStats struct {
	mu         sync.Mutex
	processedN int
	newN       int
	updatedN   int
	skippedN   int
	failedN    int
	conflictsN int
	errMsgs    []string
}

func (s *runStats) addProcessed(isNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processedN++
	if isNew {
		s.newN++
	} else {
		s.updatedN++
	}
}

func (s *runStats) addSkipped() {
	s.mu.Lock()
	s.skippedN++
	s.mu.Unlock()
}

func (s *runStats) addFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedN++
	if err != nil {
		s.errMsgs = append(s.errMsgs, err.Error())
	}
}

func (s *runStats) addConflict() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflictsN++
}

func (s *runStats) processed() int { s.mu.Lock(); defer s.mu.Unlock(); return s.processedN }
func (s *runStats) newCount() int  { s.mu.Lock(); defer s.mu.Unlock(); return s.newN }
func (s *runStats) updated() int   { s.mu.Lock(); defer s.mu.Unlock(); return s.updatedN }
func (s *runStats) skipped() int   { s.mu.Lock(); defer s.mu.Unlock(); return s.skippedN }
func (s *runStats) failed() int    { s.mu.Lock(); defer s.mu.Unlock(); return s.failedN }
func (s *runStats) conflicts() int { s.mu.Lock(); defer s.mu.Unlock(); return s.conflictsN }
func (s *runStats) errs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.errMsgs...)
}

// process drives every candidate through filter -> scrape -> pre-analyze ->
// intelligence -> finalize, fanning each stage out over its own bounded
// worker pool, and blocks until every candidate has drained out the far
// end. dedupIndex is mutated in place as candidates are persisted, so a
// later candidate in the same run can match an earlier one from this same
// run, not only records from a prior run.
func (r *Runner) process(ctx context.Context, candidates []model.Candidate, dedupIndex *normalize.DedupIndex, existingSlugs map[string]model.Candidate, stats *runStats) {
	intake := make(chan model.Candidate, stageWidth(r.Config.Concurrency))
	go func() {
		defer close(intake)
		for _, c := range candidates {
			select {
			case intake <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	filtered := runStage(r.Config.Concurrency, intake, func(c model.Candidate) (model.Candidate, bool) {
		// dependencies are not yet known at this stage: scraping (which
		// reads a registry's declared dependency list) runs after the
		// filter, so filter.LikelyMCP only ever sees name/description
		// signals here.
		if !filter.LikelyMCP(c, nil, config.DefaultFilterRules) {
			stats.addSkipped()
			return model.Candidate{}, false
		}
		return c, true
	})

	scraped := runStage(r.Config.Concurrency, filtered, func(c model.Candidate) (*model.ScrapedBundle, bool) {
		bundle, err := scrape.Scrape(ctx, c, r.Clients.Scrape)
		if err != nil {
			r.Logger.Warn("scrape failed, dropping candidate", "candidate", c.Key(), "err", err)
			stats.addFailed(err)
			return nil, false
		}
		return bundle, true
	})

	preAnalyzed := runStage(r.Config.Concurrency, scraped, func(bundle *model.ScrapedBundle) (candidateWork, bool) {
		pre := analyze.Analyze(*bundle, nil, existingSlugs)
		return candidateWork{candidate: bundle.Candidate, bundle: bundle, preAnalysis: pre}, true
	})

	withIntelligence := runStage(r.Config.IntelligencePool, preAnalyzed, func(w candidateWork) (candidateWork, bool) {
		var install model.InstallationMethod
		if len(w.preAnalysis.InstallationMethods) > 0 {
			install = w.preAnalysis.InstallationMethods[0]
		}
		report, health := r.Clients.Intelligence.Collect(ctx, w.candidate, install, w.preAnalysis.Auth)
		w.report = report
		w.health = health
		return w, true
	})

	finalized := runStage(r.Config.Concurrency, withIntelligence, func(w candidateWork) (struct{}, bool) {
		r.finalize(ctx, w, dedupIndex, existingSlugs, stats)
		return struct{}{}, true
	})

	for range finalized {
		// drained only to block until every candidate has finished.
	}
}

// finalize re-analyzes with the live IntelligenceReport folded in, resolves
// the candidate's dedup fingerprint against dedupIndex, normalizes, and
// persists.
func (r *Runner) finalize(ctx context.Context, w candidateWork, dedupIndex *normalize.DedupIndex, existingSlugs map[string]model.Candidate, stats *runStats) {
	final := analyze.Analyze(*w.bundle, w.report, existingSlugs)

	ecoKey := normalize.EcosystemIdentifierKey(w.candidate.Ecosystem, w.candidate.Identifier)
	var primaryCommand string
	if len(final.InstallationMethods) > 0 {
		primaryCommand = final.InstallationMethods[0].Command
	}
	found, matchedBy, ok := dedupIndex.Find(final.Slug, ecoKey, w.candidate.RepositoryURL, primaryCommand)
	var existing *model.CanonicalMCP
	if ok {
		mergeTarget, event := normalize.ResolveMatch(final.Slug, found, matchedBy)
		if event != nil {
			stats.addConflict()
			if err := r.Store.RecordMergeEvent(ctx, event.CandidateSlug, event.MatchedSlug, string(event.MatchedBy)); err != nil {
				r.Logger.Error("failed to record merge event", "err", err)
			}
		}
		existing = mergeTarget
	}

	canonical := normalize.NormalizeAndMerge(w.candidate, *w.bundle, final, w.report, w.health, existing)

	isNew, err := r.Store.Upsert(ctx, canonical)
	if err != nil {
		r.Logger.Error("failed to persist candidate", "candidate", w.candidate.Key(), "err", err)
		stats.addFailed(err)
		return
	}
	dedupIndex.Record(canonical, ecoKey)
	existingSlugs[canonical.Slug] = w.candidate

	if err := r.Clients.Archiver.Archive(ctx, canonical.Slug, *w.bundle); err != nil {
		r.Logger.Warn("archival write failed, continuing", "candidate", w.candidate.Key(), "err", err)
	}

	stats.addProcessed(isNew)
}
