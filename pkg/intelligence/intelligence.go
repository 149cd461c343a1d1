// Package intelligence implements C6: launching a candidate for real,
// speaking MCP to it over stdio, and reporting what actually works.
//
// The state machine is a fixed sequence: install, spawn, handshake,
// list_tools, probe_tools, report, cleanup. A failure in any phase before
// report short-circuits straight to a fallback report; cleanup always
// runs regardless of how the preceding phases went.
package intelligence

import (
	"context"
	"fmt"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
	"github.com/mcpcrawl/mcpcrawl/pkg/observability"
)

// Timeouts. Install, per-tool and total-budget timeouts are overridable via
// Option; the spawn, handshake and kill-grace timeouts always use these values.
const (
	DefaultInstallTimeout   = 120 * time.Second
	DefaultSpawnTimeout     = 10 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultToolTimeout      = 5 * time.Second
	DefaultBudget           = 180 * time.Second
	DefaultKillGrace        = 2 * time.Second
)

const clientName = "mcpcrawl-intelligence"

// Option customizes a Collector's timeouts.
type Option func(*Collector)

// WithInstallTimeout overrides the install-phase timeout.
func WithInstallTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.installTimeout = d
		}
	}
}

// WithBudget overrides the total per-candidate budget.
func WithBudget(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.budget = d
		}
	}
}

// WithToolTimeout overrides the per-tool probe timeout.
func WithToolTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.toolTimeout = d
		}
	}
}

// Collector runs the install→spawn→handshake→list_tools→probe_tools→report
// state machine for one candidate at a time; safe to share across
// goroutines, since it holds no per-candidate state between calls.
type Collector struct {
	installTimeout   time.Duration
	spawnTimeout     time.Duration
	handshakeTimeout time.Duration
	toolTimeout      time.Duration
	budget           time.Duration
	killGrace        time.Duration
}

// New builds a Collector with spec-default timeouts, adjusted by opts.
func New(opts ...Option) *Collector {
	c := &Collector{
		installTimeout:   DefaultInstallTimeout,
		spawnTimeout:     DefaultSpawnTimeout,
		handshakeTimeout: DefaultHandshakeTimeout,
		toolTimeout:      DefaultToolTimeout,
		budget:           DefaultBudget,
		killGrace:        DefaultKillGrace,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect runs the full state machine for one candidate and always returns
// a usable report: on any phase failure the report falls back to
// testing_strategy=fallback_basic instead of propagating an error. The
// report carries no auth classification.
func (c *Collector) Collect(ctx context.Context, candidate model.Candidate, install model.InstallationMethod, authHint model.AuthRequirement) (*model.IntelligenceReport, model.HealthStatus) {
	key := candidate.Key()
	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	dir, cleanup, err := newScratchDir(candidate)
	if err != nil {
		return c.fallback(ctx, key, authHint, fmt.Errorf("intelligence: scratch dir: %w", err))
	}
	defer cleanup()

	if err := c.runPhase(ctx, key, "install", c.installTimeout, func(ctx context.Context) error {
		return installCandidate(ctx, dir, install)
	}); err != nil {
		return c.fallback(ctx, key, authHint, err)
	}

	var sess *session
	if err := c.runPhase(ctx, key, "spawn", c.spawnTimeout, func(ctx context.Context) error {
		s, spawnErr := spawnSession(ctx, dir, install)
		sess = s
		return spawnErr
	}); err != nil {
		return c.fallback(ctx, key, authHint, err)
	}
	defer sess.stop(c.killGrace)

	var initResult handshakeResult
	if err := c.runPhase(ctx, key, "handshake", c.handshakeTimeout, func(ctx context.Context) error {
		res, hsErr := sess.handshake(ctx, clientName)
		initResult = res
		return hsErr
	}); err != nil {
		return c.fallback(ctx, key, authHint, err)
	}

	var tools []model.Tool
	if err := c.runPhase(ctx, key, "list_tools", c.handshakeTimeout, func(ctx context.Context) error {
		t, listErr := sess.listTools(ctx)
		tools = t
		return listErr
	}); err != nil {
		return c.fallback(ctx, key, authHint, err)
	}

	var probe probeOutcome
	c.runPhase(ctx, key, "probe_tools", 0, func(ctx context.Context) error {
		probe = sess.probeTools(ctx, tools, c.toolTimeout)
		return nil
	})

	report := &model.IntelligenceReport{
		ProtocolVersion:      initResult.protocolVersion,
		ServerCapabilities:   initResult.capabilities,
		InitializationTimeMS: initResult.durationMS,
		Tools:                tools,
		WorkingTools:         probe.working,
		FailingTools:         probe.failing,
		AvgToolResponseMS:    probe.avgResponseMS,
		ObservedErrors:       probe.observedErrors,
		TestingStrategy:      model.TestingFull,
	}
	if len(tools) > 0 {
		score := reliabilityScore(len(probe.working), len(tools))
		report.ReliabilityScore = &score
	}

	return report, classifyHealth(true, len(tools), len(probe.working), len(probe.failing), probe.authRequired)
}

func (c *Collector) runPhase(ctx context.Context, key, phase string, timeout time.Duration, fn func(context.Context) error) error {
	phaseCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		phaseCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	observability.Intelligence().OnPhaseStart(ctx, key, phase)
	start := time.Now()
	err := fn(phaseCtx)
	observability.Intelligence().OnPhaseComplete(ctx, key, phase, time.Since(start), err)
	return err
}

// fallback produces a testing_strategy=fallback_basic report. authHint is
// unused here because its guessed auth classification already lives on
// model.AuthRequirement, computed independently by the analyzer (C5); it
// stays a parameter so call sites read the same way regardless of outcome.
func (c *Collector) fallback(ctx context.Context, key string, _ model.AuthRequirement, reason error) (*model.IntelligenceReport, model.HealthStatus) {
	observability.Intelligence().OnFallback(ctx, key, reason)
	report := &model.IntelligenceReport{
		Tools:           nil,
		ObservedErrors:  []string{reason.Error()},
		TestingStrategy: model.TestingFallbackBasic,
	}
	return report, model.HealthUnknown
}

func reliabilityScore(working, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(working) / float64(total)
}
