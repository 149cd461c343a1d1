package pipeline

import (
	"context"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// HealthCheck re-runs C6's live validation against one already-persisted
// MCP, independent of a full crawl run: the `health-check` CLI command uses
// this to re-verify a record without rediscovering or rescraping it.
func (r *Runner) HealthCheck(ctx context.Context, mcp *model.CanonicalMCP) model.HealthStatus {
	candidate := model.Candidate{
		Ecosystem:     mcp.Ecosystem,
		Identifier:    mcp.Identifier,
		RepositoryURL: mcp.RepositoryURL,
	}

	var install model.InstallationMethod
	if len(mcp.InstallationMethods) > 0 {
		install = mcp.InstallationMethods[0]
	}

	report, health := r.Clients.Intelligence.Collect(ctx, candidate, install, mcp.Auth)

	mcp.HealthStatus = health
	mcp.ProtocolVersion = report.ProtocolVersion
	mcp.WorkingTools = report.WorkingTools
	mcp.FailingTools = report.FailingTools
	mcp.Verified = report.TestingStrategy == model.TestingFull
	now := time.Now()
	mcp.LastValidatedAt = &now
	mcp.UpdatedAt = now

	if _, err := r.Store.Upsert(ctx, mcp); err != nil {
		r.Logger.Error("health-check: persist updated status failed", "slug", mcp.Slug, "error", err)
	}
	return health
}
