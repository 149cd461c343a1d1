// Package pipeline implements the orchestrator (C9): it wires discovery,
// filtering, scraping, analysis, intelligence collection, normalization and
// persistence into one bounded, cancellable run, and schedules that run on
// a cron-like trigger.
//
// Each stage runs as its own bounded worker pool reading from the previous
// stage's output channel; channel capacity is the backpressure mechanism
// between stages, so a slow stage (intelligence collection, which spawns a
// subprocess per candidate) throttles the stages ahead of it rather than
// letting them run unbounded.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/analyze"
	"github.com/mcpcrawl/mcpcrawl/pkg/discovery"
	"github.com/mcpcrawl/mcpcrawl/pkg/filter"
	"github.com/mcpcrawl/mcpcrawl/pkg/intelligence"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
	"github.com/mcpcrawl/mcpcrawl/pkg/normalize"
	"github.com/mcpcrawl/mcpcrawl/pkg/observability"
	"github.com/mcpcrawl/mcpcrawl/pkg/scrape"
	"github.com/mcpcrawl/mcpcrawl/pkg/store"
)

// Clients bundles every external dependency the stages need: the registry
// and repository-host clients discovery and scrape share, the intelligence
// collector, and the optional archival side-store.
type Clients struct {
	Discovery    discovery.Clients
	Scrape       scrape.Clients
	Intelligence *intelligence.Collector
	Archiver     store.Archiver
}

// Runner orchestrates one crawl run at a time over a fixed Store, Clients
// and Config. A Runner also owns the scheduler goroutine started by
// EnableSchedule; it is safe to call RunOnce concurrently with a running
// schedule, since RunOnce itself enforces single-active-run.
type Runner struct {
	Store   *store.Store
	Clients Clients
	Config  *config.Config
	Logger  *log.Logger

	mu       sync.Mutex
	active   bool
	enabled  bool
	lastRun  *RunResult
	schedule *scheduler
}

// NewRunner builds a Runner, seeding its enabled flag from cfg.Enabled. If
// logger is nil, log.Default() is used.
func NewRunner(st *store.Store, clients Clients, cfg *config.Config, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Store: st, Clients: clients, Config: cfg, Logger: logger, enabled: cfg.Enabled}
}

// RunResult summarizes one orchestrated run, mirroring a store.RunRecord
// before it is assigned a database id.
type RunResult struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Status      string // completed | failed | skipped
	Discovered  int
	Processed   int
	New         int
	Updated     int
	Skipped     int
	Failed      int
	Conflicts   int
	Errors      []string
	Cause       string
}

// candidateWork threads one candidate's accumulating state through every
// downstream stage so later stages never need to recompute what an earlier
// stage already produced.
type candidateWork struct {
	candidate    model.Candidate
	bundle       *model.ScrapedBundle
	preAnalysis  analyze.Result
	report       *model.IntelligenceReport
	health       model.HealthStatus
}

// stageWidth bounds a channel's capacity relative to its consuming pool, so
// a burst of upstream work queues instead of blocking the producer
// indefinitely, while a stalled consumer still exerts backpressure once the
// buffer fills.
func stageWidth(workers int) int {
	if workers < 1 {
		workers = 1
	}
	return workers * 2
}

// runStage spawns workers goroutines that read from in, call fn, and send
// any successful result to the returned channel, closing it once every
// worker has drained in. fn reports ok=false to drop a work item silently
// (e.g. a candidate rejected by the filter) without treating it as a run
// failure.
func runStage[In, Out any](workers int, in <-chan In, fn func(In) (Out, bool)) <-chan Out {
	if workers < 1 {
		workers = 1
	}
	out := make(chan Out, stageWidth(workers))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range in {
				if result, ok := fn(item); ok {
					out <- result
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// RunOnce executes one full crawl: discover, filter, scrape, analyze,
// collect intelligence, re-analyze, normalize, and persist, then writes a
// crawler_runs row. It is bounded by Config.RunTimeout and by
// Config.MaxCandidates candidates discovered. Only one RunOnce may be
// active at a time; a concurrent call returns a skipped RunResult without
// touching the store or the network.
func (r *Runner) RunOnce(ctx context.Context) (*RunResult, error) {
	r.mu.Lock()
	if !r.enabled {
		r.mu.Unlock()
		skipped := &RunResult{
			StartedAt:   time.Now(),
			CompletedAt: time.Now(),
			Status:      "skipped",
			Cause:       "crawler is disabled",
		}
		r.Logger.Warn("run skipped: crawler is disabled")
		return skipped, nil
	}
	if r.active {
		r.mu.Unlock()
		skipped := &RunResult{
			StartedAt:   time.Now(),
			CompletedAt: time.Now(),
			Status:      "skipped",
			Cause:       "another run is already active",
		}
		r.Logger.Warn("run skipped: another run is already active")
		return skipped, nil
	}
	r.active = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, r.Config.RunTimeout)
	defer cancel()

	result := &RunResult{StartedAt: time.Now(), Status: "completed"}
	r.Logger.Info("run starting", "ecosystems", r.Config.Ecosystems, "max_candidates", r.Config.MaxCandidates)

	dedupIndex, existingSlugs, err := r.loadExistingState(ctx)
	if err != nil {
		result.Status = "failed"
		result.Cause = err.Error()
		result.CompletedAt = time.Now()
		r.recordRun(ctx, result)
		return result, err
	}

	candidates, discoverErrs := discovery.DiscoverAll(ctx, r.Config.Ecosystems, r.Clients.Discovery, r.Config.Concurrency)
	for _, e := range discoverErrs {
		result.Errors = append(result.Errors, e.Error())
	}
	result.Discovered = len(candidates)
	if len(candidates) > r.Config.MaxCandidates {
		r.Logger.Warn("discovered candidates exceed run budget, truncating",
			"discovered", len(candidates), "max_candidates", r.Config.MaxCandidates)
		candidates = candidates[:r.Config.MaxCandidates]
	}

	stats := &runStats{}
	r.process(ctx, candidates, dedupIndex, existingSlugs, stats)

	result.Processed = stats.processed()
	result.New = stats.newCount()
	result.Updated = stats.updated()
	result.Skipped = stats.skipped()
	result.Failed = stats.failed()
	result.Conflicts = stats.conflicts()
	result.Errors = append(result.Errors, stats.errs()...)
	result.CompletedAt = time.Now()
	if ctx.Err() != nil {
		result.Status = "failed"
		result.Cause = ctx.Err().Error()
	} else if result.Failed > 0 && result.Processed == result.Failed {
		result.Status = "failed"
	}

	r.recordRun(ctx, result)
	r.mu.Lock()
	r.lastRun = result
	r.mu.Unlock()
	r.Logger.Info("run complete", "status", result.Status, "processed", result.Processed,
		"new", result.New, "updated", result.Updated, "failed", result.Failed)
	return result, nil
}

// loadExistingState builds the dedup index and the candidate-keyed slug map
// analyze.Analyze needs for collision-safe slug generation, both seeded
// from every record already in the store.
func (r *Runner) loadExistingState(ctx context.Context) (*normalize.DedupIndex, map[string]model.Candidate, error) {
	all, err := r.Store.All(ctx)
	if err != nil {
		return nil, nil, err
	}
	index := normalize.NewDedupIndex()
	slugs := make(map[string]model.Candidate, len(all))
	for _, mcp := range all {
		key := normalize.EcosystemIdentifierKey(mcp.Ecosystem, mcp.Identifier)
		index.Record(mcp, key)
		slugs[mcp.Slug] = model.Candidate{Ecosystem: mcp.Ecosystem, Identifier: mcp.Identifier}
	}
	return index, slugs, nil
}

func (r *Runner) recordRun(ctx context.Context, result *RunResult) {
	completedAt := result.CompletedAt
	_, err := r.Store.RecordRun(ctx, store.RunRecord{
		StartedAt:    result.StartedAt,
		CompletedAt:  &completedAt,
		Status:       result.Status,
		Discovered:   result.Discovered,
		Processed:    result.Processed,
		NewCount:     result.New,
		UpdatedCount: result.Updated,
		Skipped:      result.Skipped,
		Failed:       result.Failed,
		Conflicts:    result.Conflicts,
		Errors:       result.Errors,
		Cause:        result.Cause,
	})
	if err != nil {
		r.Logger.Error("failed to record run history", "err", err)
	}
}
