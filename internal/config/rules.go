package config

import "github.com/mcpcrawl/mcpcrawl/pkg/model"

// SeedTerms are the keyword-search seeds used by every ecosystem
// discoverer's keyword-search method (see pkg/discovery).
var SeedTerms = []string{
	"mcp-server",
	"model-context-protocol",
	"model context protocol",
	"anthropic mcp",
	"claude mcp",
}

// DependencyIdentifiers are known MCP SDK package identifiers; a
// dependency-search discoverer looks for packages that depend on one of
// these, per ecosystem.
var DependencyIdentifiers = map[model.Ecosystem][]string{
	model.EcosystemNPM:   {"@modelcontextprotocol/sdk"},
	model.EcosystemPyPI:  {"mcp", "fastmcp"},
	model.EcosystemCargo: {"rmcp", "mcp-sdk"},
	model.EcosystemGo:    {"github.com/mark3labs/mcp-go", "github.com/modelcontextprotocol/go-sdk"},
}

// NamingPrefixes and NamingSuffixes drive the naming-pattern discoverer.
var (
	NamingPrefixes = []string{"mcp-", "mcp_"}
	NamingSuffixes = []string{"-mcp", "_mcp", "-mcp-server"}
)

// GitHubTopics drive the topic/classifier discoverer and the Go-module
// fallback (repositories tagged with any of these are strong candidates).
var GitHubTopics = []string{"mcp-server", "model-context-protocol", "mcp"}

// FilterRules is the data-driven token configuration for likely_mcp (C3).
// Kept as plain data, not code, per the candidate-filter contract.
type FilterRules struct {
	StrongPositiveTokens []string
	HeuristicTokens      []string
	ServerRoleTokens     []string
	ExclusionTokens      []string
}

// DefaultFilterRules is the compiled-in token configuration the pipeline
// uses; the TOML config file has no keys for it, so it is not overridable
// at run time.
var DefaultFilterRules = FilterRules{
	StrongPositiveTokens: []string{
		"mcp-server",
		"model context protocol",
		"model-context-protocol",
		"@modelcontextprotocol/",
	},
	HeuristicTokens:  []string{"mcp", "claude", "anthropic"},
	ServerRoleTokens: []string{"server", "tool", "cli", "agent", "service", "bot"},
	ExclusionTokens: []string{
		"web framework", "tensorflow", "pytorch", "boilerplate",
		"eslint", "webpack", "linter", "starter template",
	},
}

// CategoryKeywords maps free-text keywords to one of the fixed 20
// categories, used by the analyzer's category-selection step (C5). It is
// a data table here rather than logic in the analyzer (Open Question 3);
// the TOML config file has no keys for it, so it is not overridable at
// run time.
var CategoryKeywords = map[string]model.Category{
	"database": model.CategoryDatabases, "sql": model.CategoryDatabases, "postgres": model.CategoryDatabases,
	"mysql": model.CategoryDatabases, "mongodb": model.CategoryDatabases, "redis": model.CategoryDatabases,
	"payment": model.CategoryPayments, "stripe": model.CategoryPayments, "billing": model.CategoryPayments,
	"llm": model.CategoryAITools, "llmops": model.CategoryAITools, "ai": model.CategoryAITools,
	"embedding": model.CategoryAITools, "rag": model.CategoryAITools,
	"git": model.CategoryDevelopmentTools, "github": model.CategoryDevelopmentTools,
	"ci": model.CategoryDevelopmentTools, "devops": model.CategoryInfrastructure,
	"kubernetes": model.CategoryInfrastructure, "docker": model.CategoryInfrastructure,
	"terraform": model.CategoryInfrastructure, "aws": model.CategoryCloudStorage,
	"s3": model.CategoryCloudStorage, "gcs": model.CategoryCloudStorage, "storage": model.CategoryCloudStorage,
	"slack": model.CategoryMessaging, "discord": model.CategoryMessaging, "email": model.CategoryCommunication,
	"sms": model.CategoryCommunication, "notion": model.CategoryProductivity, "calendar": model.CategoryProductivity,
	"blog": model.CategoryContentCreation, "cms": model.CategoryContentCreation, "image": model.CategoryMediaProcessing,
	"video": model.CategoryMediaProcessing, "audio": model.CategoryMediaProcessing,
	"prometheus": model.CategoryMonitoring, "grafana": model.CategoryMonitoring, "logging": model.CategoryMonitoring,
	"jira": model.CategoryProjectManagement, "trello": model.CategoryProjectManagement, "asana": model.CategoryProjectManagement,
	"auth": model.CategorySecurity, "oauth": model.CategorySecurity, "vault": model.CategorySecurity,
	"automation": model.CategoryAutomation, "workflow": model.CategoryAutomation, "zapier": model.CategoryAutomation,
	"twitter": model.CategorySocialMedia, "x.com": model.CategorySocialMedia, "instagram": model.CategorySocialMedia,
	"rest": model.CategoryWebAPIs, "graphql": model.CategoryWebAPIs, "webhook": model.CategoryWebAPIs,
	"finance": model.CategoryFinance, "crypto": model.CategoryFinance, "trading": model.CategoryFinance,
	"research": model.CategoryResearch, "arxiv": model.CategoryResearch, "pubmed": model.CategoryResearch,
	"iot": model.CategoryIoT, "mqtt": model.CategoryIoT, "sensor": model.CategoryIoT,
}
