package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcpcrawl.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleMCP(slug string) *model.CanonicalMCP {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &model.CanonicalMCP{
		Slug:             slug,
		Name:             "mcp-server-filesystem",
		DisplayName:      "Filesystem",
		ShortDescription: "Read and write local files.",
		LongDescription:  "An MCP server exposing filesystem read and write tools.",
		Ecosystem:        model.EcosystemNPM,
		Identifier:       "mcp-server-filesystem",
		InstallType:      model.InstallNPM,
		EndpointCommand:  "npx -y mcp-server-filesystem",
		InstallationMethods: []model.InstallationMethod{
			{Kind: model.InstallNPM, Command: "npx -y mcp-server-filesystem", Priority: 0, Confidence: 90},
		},
		Tools: []model.Tool{
			{Name: "read_file", Description: "Read a file"},
			{Name: "write_file", Description: "Write a file"},
		},
		ToolCount:       2,
		WorkingTools:    []string{"read_file", "write_file"},
		Auth:            model.AuthRequirement{Required: false, SetupComplexity: model.SetupSimple},
		ProtocolVersion: "2025-06-18",
		ConnectionType:  model.ConnectionStdio,
		Category:        model.CategoryDevelopmentTools,
		Tags:            []string{"filesystem", "mcp", "files"},
		UseCases:        []string{"Let an agent read project files."},
		RepositoryURL:   "https://github.com/example/mcp-server-filesystem",
		Author:          "example",
		License:         "MIT",
		HealthStatus:    model.HealthHealthy,
		Verified:        true,
		AutoDiscovered:  true,
		DiscoverySource: "keyword:mcp-server",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestUpsertThenGetBySlugRoundTrips(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mcp := sampleMCP("server-filesystem")
	isNew, err := s.Upsert(ctx, mcp)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !isNew {
		t.Error("expected first upsert to report isNew=true")
	}

	got, found, err := s.GetBySlug(ctx, "server-filesystem")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}
	if got.Name != mcp.Name || got.ToolCount != 2 || len(got.Tools) != 2 {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Tools[0].Name != "read_file" || got.Tools[1].Name != "write_file" {
		t.Errorf("expected tool order preserved, got %+v", got.Tools)
	}
}

func TestUpsertOnExistingSlugReportsNotNew(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mcp := sampleMCP("server-filesystem")
	if _, err := s.Upsert(ctx, mcp); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	mcp.ShortDescription = "updated description"
	isNew, err := s.Upsert(ctx, mcp)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if isNew {
		t.Error("expected second upsert to report isNew=false")
	}

	got, _, err := s.GetBySlug(ctx, "server-filesystem")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ShortDescription != "updated description" {
		t.Errorf("expected updated field to persist, got %q", got.ShortDescription)
	}
}

func TestGetBySlugMissingReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, found, err := s.GetBySlug(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected found=false for a missing slug")
	}
}

func TestSearchFindsByTagAndDescription(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, sampleMCP("server-filesystem")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	results, err := s.Search(ctx, "filesystem", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Slug != "server-filesystem" {
		t.Errorf("expected one match for %q, got %+v", "filesystem", results)
	}
}

func TestAgentReadyExcludesUnverifiedAndUnhealthy(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ready := sampleMCP("ready-one")
	notVerified := sampleMCP("not-verified")
	notVerified.Verified = false
	down := sampleMCP("down-one")
	down.HealthStatus = model.HealthDown
	noUseCases := sampleMCP("no-use-cases")
	noUseCases.UseCases = nil

	for _, mcp := range []*model.CanonicalMCP{ready, notVerified, down, noUseCases} {
		if _, err := s.Upsert(ctx, mcp); err != nil {
			t.Fatalf("Upsert %s: %v", mcp.Slug, err)
		}
	}

	results, err := s.AgentReady(ctx)
	if err != nil {
		t.Fatalf("AgentReady: %v", err)
	}
	if len(results) != 1 || results[0].Slug != "ready-one" {
		t.Errorf("expected only ready-one in agent_ready_mcps, got %+v", results)
	}
}

func TestByEcosystemIdentifierFindsExistingRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mcp := sampleMCP("server-filesystem")
	if _, err := s.Upsert(ctx, mcp); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, found, err := s.ByEcosystemIdentifier(ctx, model.EcosystemNPM, "mcp-server-filesystem")
	if err != nil {
		t.Fatalf("ByEcosystemIdentifier: %v", err)
	}
	if !found || got.Slug != "server-filesystem" {
		t.Errorf("expected to find server-filesystem by (ecosystem, identifier), got found=%v got=%v", found, got)
	}
}

func TestRecordRunAndHistoryOrdersMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	if _, err := s.RecordRun(ctx, RunRecord{StartedAt: t1, Status: "completed", Discovered: 10}); err != nil {
		t.Fatalf("RecordRun 1: %v", err)
	}
	if _, err := s.RecordRun(ctx, RunRecord{StartedAt: t2, Status: "failed", Discovered: 5, Errors: []string{"boom"}}); err != nil {
		t.Fatalf("RecordRun 2: %v", err)
	}

	history, err := s.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(history))
	}
	if history[0].Status != "failed" || history[0].Discovered != 5 {
		t.Errorf("expected most recent run first, got %+v", history[0])
	}
	if len(history[0].Errors) != 1 || history[0].Errors[0] != "boom" {
		t.Errorf("expected errors to round trip, got %+v", history[0].Errors)
	}
}

func TestHistoryRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.RecordRun(ctx, RunRecord{StartedAt: time.Now(), Status: "completed"}); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	history, err := s.History(ctx, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected history capped at 2, got %d", len(history))
	}
}

func TestRecordMergeEventDoesNotErrorAndIsQueryable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RecordMergeEvent(ctx, "new-slug", "existing-slug", "repo_and_command"); err != nil {
		t.Fatalf("RecordMergeEvent: %v", err)
	}

	var count int
	row := s.db.QueryRow(`SELECT COUNT(*) FROM merge_events WHERE candidate_slug = ?`, "new-slug")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one merge event recorded, got %d", count)
	}
}

func TestDeleteRemovesRowAndFTSEntry(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, sampleMCP("server-filesystem")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Delete(ctx, "server-filesystem"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, found, err := s.GetBySlug(ctx, "server-filesystem")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if found {
		t.Error("expected record to be gone after Delete")
	}

	results, err := s.Search(ctx, "filesystem", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no search hits after Delete, got %+v", results)
	}
}

func TestNewArchiverReturnsNoopWhenURLEmpty(t *testing.T) {
	a, err := NewArchiver(context.Background(), "")
	if err != nil {
		t.Fatalf("NewArchiver: %v", err)
	}
	if _, ok := a.(NoopArchiver); !ok {
		t.Errorf("expected NoopArchiver for empty URL, got %T", a)
	}
	if err := a.Archive(context.Background(), "slug", model.ScrapedBundle{}); err != nil {
		t.Errorf("NoopArchiver.Archive should never error, got %v", err)
	}
}
