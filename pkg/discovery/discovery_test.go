package discovery

import (
	"context"
	"testing"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

func TestDiscoverNilClientReturnsEmpty(t *testing.T) {
	got, err := Discover(context.Background(), model.EcosystemNPM, Clients{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates with a nil client, got %d", len(got))
	}
}

func TestDiscoverUnsupportedEcosystem(t *testing.T) {
	_, err := Discover(context.Background(), model.Ecosystem("cobol"), Clients{})
	if err == nil {
		t.Fatal("expected an error for an unsupported ecosystem")
	}
}

func TestDiscoverAllSkipsEmptyEcosystemList(t *testing.T) {
	got, errs := DiscoverAll(context.Background(), nil, Clients{}, 4)
	if len(got) != 0 || len(errs) != 0 {
		t.Fatalf("expected no candidates or errors, got %d candidates, %d errors", len(got), len(errs))
	}
}

func TestDiscoverAllRunsEveryEcosystem(t *testing.T) {
	ecosystems := []model.Ecosystem{model.EcosystemNPM, model.EcosystemPyPI, model.EcosystemCargo}
	got, errs := DiscoverAll(context.Background(), ecosystems, Clients{}, 2)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates with every client nil, got %d", len(got))
	}
}

func TestTrimIdentifier(t *testing.T) {
	cases := map[string]string{
		"  foo  ": "foo",
		"\tbar\n": "bar",
		"":        "",
		"baz":     "baz",
	}
	for in, want := range cases {
		if got := trimIdentifier(in); got != want {
			t.Errorf("trimIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProvenanceFormat(t *testing.T) {
	if got := provenance(MethodKeyword, "mcp-server"); got != "keyword:mcp-server" {
		t.Errorf("provenance() = %q, want %q", got, "keyword:mcp-server")
	}
}

func TestCandidateKeyDedup(t *testing.T) {
	seen := map[string]model.Candidate{}
	a := model.Candidate{Ecosystem: model.EcosystemNPM, Identifier: "mcp-server-fs"}
	b := model.Candidate{Ecosystem: model.EcosystemNPM, Identifier: "mcp-server-fs"}
	seen[a.Key()] = a
	seen[b.Key()] = b
	if len(seen) != 1 {
		t.Fatalf("expected duplicate candidates to collapse to one entry, got %d", len(seen))
	}
}
