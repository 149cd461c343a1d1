package model

import "testing"

func TestEcosystemValid(t *testing.T) {
	valid := []Ecosystem{EcosystemNPM, EcosystemPyPI, EcosystemCargo, EcosystemGo,
		EcosystemRubyGems, EcosystemMaven, EcosystemPackagist}
	for _, e := range valid {
		if !e.Valid() {
			t.Errorf("Ecosystem(%q).Valid() = false, want true", e)
		}
	}
	if Ecosystem("homebrew").Valid() {
		t.Error("unrecognized ecosystem reported valid")
	}
}

func TestCandidateKey(t *testing.T) {
	a := Candidate{Ecosystem: EcosystemNPM, Identifier: "fastmcp"}
	b := Candidate{Ecosystem: EcosystemPyPI, Identifier: "fastmcp"}
	if a.Key() == b.Key() {
		t.Error("candidates in different ecosystems with the same identifier must have distinct keys")
	}
	if a.Key() != "npm:fastmcp" {
		t.Errorf("Key() = %q, want npm:fastmcp", a.Key())
	}
}

func TestHealthStatusValid(t *testing.T) {
	for _, h := range []HealthStatus{HealthHealthy, HealthDegraded, HealthDown, HealthUnknown} {
		if !h.Valid() {
			t.Errorf("HealthStatus(%q).Valid() = false, want true", h)
		}
	}
	if HealthStatus("broken").Valid() {
		t.Error("unrecognized health status reported valid")
	}
}

func TestCategoryValid(t *testing.T) {
	if len(Categories) != 20 {
		t.Fatalf("len(Categories) = %d, want 20", len(Categories))
	}
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("Category(%q).Valid() = false, want true", c)
		}
	}
	if Category("woodworking").Valid() {
		t.Error("unrecognized category reported valid")
	}
}

func TestFieldSourceDefaultsToCrawler(t *testing.T) {
	m := &CanonicalMCP{}
	if m.IsOperatorOwned("Category") {
		t.Error("field with no recorded source must not be operator-owned")
	}
	m.FieldSources = map[string]FieldSource{"Category": SourceOperator}
	if !m.IsOperatorOwned("Category") {
		t.Error("field explicitly marked operator-owned must report so")
	}
	if m.IsOperatorOwned("Tags") {
		t.Error("unrelated field must not inherit another field's source")
	}
}
