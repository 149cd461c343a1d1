package normalize

import "github.com/mcpcrawl/mcpcrawl/pkg/model"

// mergeInto folds fresh into existing per §4.7's merge rules: operator-owned
// fields are preserved untouched; crawler-owned fields take the new value
// only when it is non-empty and differs; updated_at only advances if
// something actually changed.
func mergeInto(existing, fresh *model.CanonicalMCP) *model.CanonicalMCP {
	result := *existing
	if existing.FieldSources != nil {
		result.FieldSources = make(map[string]model.FieldSource, len(existing.FieldSources))
		for k, v := range existing.FieldSources {
			result.FieldSources[k] = v
		}
	}

	changed := false

	mergeString(existing, "Name", &result.Name, fresh.Name, &changed)
	mergeString(existing, "DisplayName", &result.DisplayName, fresh.DisplayName, &changed)
	mergeString(existing, "ShortDescription", &result.ShortDescription, fresh.ShortDescription, &changed)
	mergeString(existing, "LongDescription", &result.LongDescription, fresh.LongDescription, &changed)
	mergeString(existing, "EndpointCommand", &result.EndpointCommand, fresh.EndpointCommand, &changed)
	mergeString(existing, "RepositoryURL", &result.RepositoryURL, fresh.RepositoryURL, &changed)
	mergeString(existing, "DocumentationURL", &result.DocumentationURL, fresh.DocumentationURL, &changed)
	mergeString(existing, "HomepageURL", &result.HomepageURL, fresh.HomepageURL, &changed)
	mergeString(existing, "Author", &result.Author, fresh.Author, &changed)
	mergeString(existing, "Company", &result.Company, fresh.Company, &changed)
	mergeString(existing, "License", &result.License, fresh.License, &changed)
	mergeString(existing, "ProtocolVersion", &result.ProtocolVersion, fresh.ProtocolVersion, &changed)
	mergeString(existing, "DiscoverySource", &result.DiscoverySource, fresh.DiscoverySource, &changed)

	mergeTyped(existing, "Category", &result.Category, fresh.Category, &changed)
	mergeTyped(existing, "InstallType", &result.InstallType, fresh.InstallType, &changed)
	mergeTyped(existing, "ConnectionType", &result.ConnectionType, fresh.ConnectionType, &changed)
	mergeTyped(existing, "HealthStatus", &result.HealthStatus, fresh.HealthStatus, &changed)

	if !existing.IsOperatorOwned("InstallationMethods") && len(fresh.InstallationMethods) > 0 {
		result.InstallationMethods = fresh.InstallationMethods
		changed = true
	}

	if !existing.IsOperatorOwned("Auth") && fresh.Auth.Summary != "" && fresh.Auth.Summary != existing.Auth.Summary {
		result.Auth = fresh.Auth
		changed = true
	}

	if !existing.IsOperatorOwned("Tools") {
		live := fresh.Verified
		newTools := mergeTools(existing.Tools, fresh.Tools, live)
		if !sameTools(newTools, result.Tools) {
			result.Tools = newTools
			result.ToolCount = len(newTools)
			changed = true
		}
	}
	result.WorkingTools = fresh.WorkingTools
	result.FailingTools = fresh.FailingTools
	result.Verified = fresh.Verified

	if !existing.IsOperatorOwned("Tags") {
		union := sortedUniqueTags(existing.Tags, fresh.Tags)
		if !sameStrings(union, existing.Tags) {
			result.Tags = union
			changed = true
		}
	}

	if !existing.IsOperatorOwned("UseCases") && len(fresh.UseCases) > 0 {
		if !sameStrings(fresh.UseCases, existing.UseCases) {
			result.UseCases = fresh.UseCases
			changed = true
		}
	}

	result.AutoDiscovered = existing.AutoDiscovered || fresh.AutoDiscovered

	ts := now()
	result.LastScrapedAt = &ts
	if changed {
		result.UpdatedAt = ts
	}
	return &result
}

// mergeTools implements §4.7's tool-list rule: a live list always wins;
// otherwise the prior list survives only if the new, documentation-derived
// list is a subset of it (i.e. brings nothing new).
func mergeTools(existing, fresh []model.Tool, live bool) []model.Tool {
	if live || len(existing) == 0 {
		return fresh
	}
	if isSubsetByName(fresh, existing) {
		return existing
	}
	return fresh
}

func isSubsetByName(candidate, superset []model.Tool) bool {
	names := make(map[string]bool, len(superset))
	for _, t := range superset {
		names[t.Name] = true
	}
	for _, t := range candidate {
		if !names[t.Name] {
			return false
		}
	}
	return true
}

func sameTools(a, b []model.Tool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mergeString(existing *model.CanonicalMCP, field string, cur *string, neu string, changed *bool) {
	if existing.IsOperatorOwned(field) {
		return
	}
	if neu != "" && neu != *cur {
		*cur = neu
		*changed = true
	}
}

func mergeTyped[T comparable](existing *model.CanonicalMCP, field string, cur *T, neu T, changed *bool) {
	if existing.IsOperatorOwned(field) {
		return
	}
	var zero T
	if neu != zero && neu != *cur {
		*cur = neu
		*changed = true
	}
}
