package analyze

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

var toolNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var toolNameStopwords = map[string]bool{
	"get": true, "set": true, "is": true, "has": true, "can": true, "will": true,
}

// identifierToolInference maps well-known package-identifier shapes to the
// tool names their servers conventionally expose, used only when no
// higher-authority source produced any tools.
var identifierToolInference = []struct {
	match string
	tools []string
}{
	{"filesystem", []string{"read_file", "write_file", "list_directory"}},
	{"file", []string{"read_file", "write_file", "list_directory"}},
	{"database", []string{"execute_query", "list_tables", "describe_table"}},
	{"sql", []string{"execute_query", "list_tables", "describe_table"}},
	{"git", []string{"git_status", "git_diff", "git_commit"}},
	{"search", []string{"search", "fetch_result"}},
	{"browser", []string{"navigate", "screenshot", "click"}},
}

var toolHeadingWithParamsRE = regexp.MustCompile(`(?m)^#{2,4}\s+([A-Za-z_][A-Za-z0-9_]*)\(([^)]*)\)\s*$`)
var toolHeadingPlainRE = regexp.MustCompile(`(?m)^#{2,4}\s+([A-Za-z_][A-Za-z0-9_]*)\s*$\n+(?:.*\n)*?\s*Parameters:`)
var toolBulletRE = regexp.MustCompile(`(?m)^[-*]\s+\*\*([A-Za-z_][A-Za-z0-9_]*)\*\*:\s*(.+)$`)
var toolTableRowRE = regexp.MustCompile(`(?m)^\|\s*([A-Za-z_][A-Za-z0-9_]*)\s*\|\s*([^|]+?)\s*\|`)
var jsonToolsBlobRE = regexp.MustCompile(`\{"tools":\s*\[[^\]]*\]\}`)

// extractTools implements §4.5.1: live JSON-RPC tools/list (authoritative),
// then subprocess JSON blobs, then documentation patterns, then identifier
// inference as a last resort.
func extractTools(s sources, r Result) Result {
	var tools []model.Tool

	live := s.intelligence != nil && len(s.intelligence.Tools) > 0
	if live {
		tools = append(tools, s.intelligence.Tools...)
	}

	if len(tools) == 0 {
		tools = append(tools, extractToolsFromStderrJSON(s.combinedText)...)
	}

	docTools := extractToolsFromDocs(s.combinedText)
	if live {
		// Live tools/list is authoritative for which tools exist, but later
		// sources still enrich descriptions the server itself left empty.
		tools = mergeToolDescriptions(tools, docTools)
	} else if len(tools) == 0 {
		tools = append(tools, docTools...)
	}

	if len(tools) == 0 {
		tools = append(tools, inferToolsFromIdentifier(s.bundle.Candidate.Identifier)...)
	}

	r.Tools = dedupTools(tools)
	return r
}

// mergeToolDescriptions fills in empty descriptions on tools (the
// authoritative set) from matching doc-extracted tools, keyed by lowercase
// name. It never adds or removes a tool.
func mergeToolDescriptions(tools, docs []model.Tool) []model.Tool {
	docByName := make(map[string]model.Tool, len(docs))
	for _, d := range docs {
		key := strings.ToLower(d.Name)
		if existing, ok := docByName[key]; !ok || len(d.Description) > len(existing.Description) {
			docByName[key] = d
		}
	}

	merged := make([]model.Tool, len(tools))
	for i, t := range tools {
		merged[i] = t
		if t.Description == "" {
			if d, ok := docByName[strings.ToLower(t.Name)]; ok && d.Description != "" {
				merged[i].Description = d.Description
			}
		}
	}
	return merged
}

func extractToolsFromStderrJSON(text string) []model.Tool {
	var tools []model.Tool
	for _, m := range jsonToolsBlobRE.FindAllString(text, -1) {
		var blob struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"tools"`
		}
		if err := json.Unmarshal([]byte(m), &blob); err != nil {
			continue
		}
		for _, t := range blob.Tools {
			tools = append(tools, model.Tool{Name: t.Name, Description: t.Description})
		}
	}
	return tools
}

func extractToolsFromDocs(text string) []model.Tool {
	var tools []model.Tool

	for _, m := range toolHeadingWithParamsRE.FindAllStringSubmatch(text, -1) {
		name := m[1]
		params := parseInlineParams(m[2])
		tools = append(tools, model.Tool{Name: name, InputSchema: paramsToSchema(params)})
	}

	for _, m := range toolHeadingPlainRE.FindAllStringSubmatch(text, -1) {
		tools = append(tools, model.Tool{Name: m[1]})
	}

	for _, m := range toolBulletRE.FindAllStringSubmatch(text, -1) {
		tools = append(tools, model.Tool{Name: m[1], Description: strings.TrimSpace(m[2])})
	}

	for _, m := range toolTableRowRE.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if strings.EqualFold(name, "name") || strings.EqualFold(name, "tool") {
			continue // header row
		}
		tools = append(tools, model.Tool{Name: name, Description: strings.TrimSpace(m[2])})
	}

	return tools
}

// parseInlineParams parses a `name: type, other: type` parameter list from
// a `tool_name(params)` heading into normalized Parameters.
func parseInlineParams(raw string) []model.Parameter {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var params []model.Parameter
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := part
		typ := ""
		if idx := strings.Index(part, ":"); idx >= 0 {
			name = strings.TrimSpace(part[:idx])
			typ = strings.TrimSpace(part[idx+1:])
		}
		params = append(params, model.Parameter{
			Name:     name,
			Type:     normalizeParamType(typ),
			Required: !strings.Contains(strings.ToLower(raw), "optional"),
		})
	}
	return params
}

func normalizeParamType(t string) string {
	switch strings.ToLower(t) {
	case "string", "str":
		return "string"
	case "number", "int", "integer", "float":
		return "number"
	case "boolean", "bool":
		return "boolean"
	case "array", "list", "[]":
		return "array"
	case "object", "dict", "map":
		return "object"
	default:
		return "string"
	}
}

func paramsToSchema(params []model.Parameter) map[string]any {
	if len(params) == 0 {
		return nil
	}
	props := make(map[string]any, len(params))
	for _, p := range params {
		props[p.Name] = map[string]any{"type": p.Type, "description": p.Description}
	}
	return map[string]any{"type": "object", "properties": props}
}

func inferToolsFromIdentifier(identifier string) []model.Tool {
	lower := strings.ToLower(identifier)
	for _, shape := range identifierToolInference {
		if strings.Contains(lower, shape.match) {
			tools := make([]model.Tool, 0, len(shape.tools))
			for _, name := range shape.tools {
				tools = append(tools, model.Tool{Name: name})
			}
			return tools
		}
	}
	return nil
}

// isValidToolName reports whether name passes §4.5.1's validation rule.
func isValidToolName(name string) bool {
	if len(name) < 3 {
		return false
	}
	if !toolNameRE.MatchString(name) {
		return false
	}
	return !toolNameStopwords[strings.ToLower(name)]
}

// dedupTools collapses duplicates by lowercase name, keeping the entry with
// the richest description and richest parameter list, and drops invalid
// names.
func dedupTools(tools []model.Tool) []model.Tool {
	byName := make(map[string]model.Tool)
	order := make([]string, 0, len(tools))

	for _, t := range tools {
		if !isValidToolName(t.Name) {
			continue
		}
		key := strings.ToLower(t.Name)
		existing, ok := byName[key]
		if !ok {
			byName[key] = t
			order = append(order, key)
			continue
		}
		if richerTool(t, existing) {
			byName[key] = t
		}
	}

	out := make([]model.Tool, 0, len(order))
	for _, key := range order {
		out = append(out, byName[key])
	}
	return out
}

func richerTool(candidate, existing model.Tool) bool {
	if len(candidate.Description) != len(existing.Description) {
		return len(candidate.Description) > len(existing.Description)
	}
	return len(candidate.InputSchema) > len(existing.InputSchema)
}
