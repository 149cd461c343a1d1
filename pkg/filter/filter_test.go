package filter

import (
	"testing"

	"github.com/mcpcrawl/mcpcrawl/internal/config"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

func TestLikelyMCPStrongPositive(t *testing.T) {
	c := model.Candidate{Identifier: "fastmcp", Description: "a model context protocol server framework"}
	if !LikelyMCP(c, nil, config.DefaultFilterRules) {
		t.Error("expected strong positive token to accept")
	}
}

func TestLikelyMCPScopedPackage(t *testing.T) {
	c := model.Candidate{Identifier: "@modelcontextprotocol/server-filesystem", Description: "filesystem access"}
	if !LikelyMCP(c, nil, config.DefaultFilterRules) {
		t.Error("expected @modelcontextprotocol/ scope to accept")
	}
}

func TestLikelyMCPDependencyPositive(t *testing.T) {
	c := model.Candidate{Identifier: "my-tool", Description: "does things"}
	if !LikelyMCP(c, []string{"@modelcontextprotocol/sdk"}, config.DefaultFilterRules) {
		t.Error("expected dependency on known SDK to accept")
	}
}

func TestLikelyMCPHeuristicPositive(t *testing.T) {
	c := model.Candidate{Identifier: "claude-tool-server", Description: "a server for claude tools"}
	if !LikelyMCP(c, nil, config.DefaultFilterRules) {
		t.Error("expected mcp+server-role heuristic to accept")
	}
}

func TestLikelyMCPHeuristicWithoutRoleRejected(t *testing.T) {
	c := model.Candidate{Identifier: "claude-utils", Description: "assorted claude helper functions"}
	if LikelyMCP(c, nil, config.DefaultFilterRules) {
		t.Error("expected mcp token without a server-role token to reject")
	}
}

func TestLikelyMCPExclusionOverridesHeuristic(t *testing.T) {
	c := model.Candidate{Identifier: "claude-eslint-server", Description: "an eslint webpack boilerplate server for claude"}
	if LikelyMCP(c, nil, config.DefaultFilterRules) {
		t.Error("expected exclusion token to override heuristic positive")
	}
}

func TestLikelyMCPExclusionNeverOverridesStrongPositive(t *testing.T) {
	c := model.Candidate{Identifier: "mcp-server-eslint-webpack", Description: "mcp-server wrapping eslint and webpack boilerplate"}
	if !LikelyMCP(c, nil, config.DefaultFilterRules) {
		t.Error("strong positive token must accept even alongside exclusion tokens")
	}
}

func TestLikelyMCPRejectsUnrelated(t *testing.T) {
	c := model.Candidate{Identifier: "requests", Description: "HTTP library for Python"}
	if LikelyMCP(c, nil, config.DefaultFilterRules) {
		t.Error("expected unrelated package to reject")
	}
}
