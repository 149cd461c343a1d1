package intelligence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// session wraps one live stdio MCP connection for the duration of a single
// Collect call, the way the teacher's pkg/mcp.Client wraps mark3labs/mcp-go
// for a single agent session.
type session struct {
	raw client.MCPClient
}

// spawnSession starts the candidate's subprocess over stdio and waits for
// it to accept the connection; it does not yet perform the MCP handshake.
func spawnSession(ctx context.Context, dir string, install model.InstallationMethod) (*session, error) {
	fields := strings.Fields(install.Command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("intelligence: empty spawn command")
	}
	cmd, args := fields[0], fields[1:]

	raw, err := client.NewStdioMCPClient(cmd, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("intelligence: spawn %s: %w", cmd, err)
	}
	if err := raw.Start(ctx); err != nil {
		return nil, fmt.Errorf("intelligence: start %s: %w", cmd, err)
	}
	return &session{raw: raw}, nil
}

// handshake sends the initialize request and records the server's declared
// protocol version and capabilities.
func (s *session) handshake(ctx context.Context, name string) (handshakeResult, error) {
	start := time.Now()

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: name, Version: "1.0.0"}

	resp, err := s.raw.Initialize(ctx, req)
	if err != nil {
		return handshakeResult{}, fmt.Errorf("intelligence: handshake: %w", err)
	}

	caps := map[string]any{
		"tools":     resp.Capabilities.Tools != nil,
		"resources": resp.Capabilities.Resources != nil,
		"prompts":   resp.Capabilities.Prompts != nil,
		"logging":   resp.Capabilities.Logging != nil,
	}
	return handshakeResult{
		protocolVersion: resp.ProtocolVersion,
		capabilities:    caps,
		durationMS:      time.Since(start).Milliseconds(),
	}, nil
}

// listTools requests the server's tool catalog and copies it into the
// canonical model.Tool shape verbatim, per §4.6's "record the returned
// schemas verbatim" contract.
func (s *session) listTools(ctx context.Context) ([]model.Tool, error) {
	resp, err := s.raw.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("intelligence: list_tools: %w", err)
	}

	tools := make([]model.Tool, 0, len(resp.Tools))
	for _, t := range resp.Tools {
		tools = append(tools, model.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schemaToMap(t.InputSchema),
		})
	}
	return tools, nil
}

// probeTools invokes every tool with empty arguments to classify it as
// working or failing, per §4.6's per-tool invocation step. A timeout or
// per-tool failure is recorded but never aborts the remaining probes.
func (s *session) probeTools(ctx context.Context, tools []model.Tool, perToolTimeout time.Duration) probeOutcome {
	var out probeOutcome
	var totalMS int64

	for _, t := range tools {
		toolCtx, cancel := context.WithTimeout(ctx, perToolTimeout)
		start := time.Now()

		req := mcp.CallToolRequest{}
		req.Params.Name = t.Name
		req.Params.Arguments = map[string]any{}

		_, err := s.raw.CallTool(toolCtx, req)
		cancel()
		totalMS += time.Since(start).Milliseconds()

		if err == nil {
			out.working = append(out.working, t.Name)
			continue
		}
		if looksLikeAuthError(err.Error()) {
			out.authRequired = true
			continue
		}
		out.failing = append(out.failing, t.Name)
		out.observedErrors = append(out.observedErrors, fmt.Sprintf("%s: %s", t.Name, err.Error()))
	}

	sort.Strings(out.working)
	sort.Strings(out.failing)
	if len(tools) > 0 {
		out.avgResponseMS = totalMS / int64(len(tools))
	}
	return out
}

// stop closes the session, giving the underlying transport killGrace to
// shut down its subprocess cleanly before the collector's context
// cancellation (already wired into raw's I/O) forces it closed.
func (s *session) stop(killGrace time.Duration) {
	if s == nil || s.raw == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		s.raw.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(killGrace):
	}
}

func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	return map[string]any{
		"type":       schema.Type,
		"properties": schema.Properties,
		"required":   schema.Required,
	}
}

var authErrorMarkers = []string{"unauthorized", "forbidden", "auth", "api key", "api_key", "token", "credential", "permission denied"}

func looksLikeAuthError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range authErrorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
