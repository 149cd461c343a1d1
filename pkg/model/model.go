// Package model defines the canonical data types that flow through the
// crawl pipeline: the transient per-stage records (Candidate,
// RegistryRecord, RepoRecord, DocsBundle) and the persisted CanonicalMCP.
package model

import "time"

// Ecosystem identifies one of the seven package registries the crawler
// discovers candidates in: four enabled by default and three extended ones.
type Ecosystem string

const (
	EcosystemNPM   Ecosystem = "npm"
	EcosystemPyPI  Ecosystem = "pypi"
	EcosystemCargo Ecosystem = "cargo"
	EcosystemGo    Ecosystem = "go"

	// Extended ecosystems, disabled by default (see CRAWLER_EXTRA_ECOSYSTEMS).
	EcosystemRubyGems  Ecosystem = "rubygems"
	EcosystemMaven     Ecosystem = "maven"
	EcosystemPackagist Ecosystem = "packagist"
)

// Valid reports whether e is one of the recognized ecosystems.
func (e Ecosystem) Valid() bool {
	switch e {
	case EcosystemNPM, EcosystemPyPI, EcosystemCargo, EcosystemGo,
		EcosystemRubyGems, EcosystemMaven, EcosystemPackagist:
		return true
	}
	return false
}

// Candidate is the minimal result of discovery: a package identifier that
// might be an MCP server, not yet validated. Identity is (Ecosystem,
// Identifier). A Candidate is created by a discoverer, consumed by a
// scraper, and discarded once scraping completes.
type Candidate struct {
	Ecosystem      Ecosystem
	Identifier     string
	Description    string
	RepositoryURL  string
	DiscoveryMethod string // free-form provenance, e.g. "keyword:mcp-server"
	DiscoveredAt   time.Time
}

// Key returns the Candidate's identity tuple as a single comparable string,
// used by discovery to collapse duplicates across discovery methods.
func (c Candidate) Key() string {
	return string(c.Ecosystem) + ":" + c.Identifier
}

// RegistryRecord holds raw metadata pulled from an ecosystem's registry
// API. Owned transiently by the scraper (C4); never persisted as-is.
type RegistryRecord struct {
	Versions     []string
	Author       string
	License      string
	Dependencies []string
	Keywords     []string
	UploadedAt   time.Time
	Classifiers  []string // PyPI trove classifiers, Maven-equivalent tags, etc.
}

// RepoRecord holds raw metadata from the candidate's source repository
// host (GitHub or GitLab). Owned transiently by the scraper; may be absent
// entirely if no repository URL could be resolved.
type RepoRecord struct {
	Stars        int
	Forks        int
	Topics       []string
	DefaultBranch string
	Archived     bool
	License      string
	ReadmeText   string
	OwnerLogin   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DocsPage is one scraped documentation page.
type DocsPage struct {
	URL       string
	Title     string
	Markdown  string
	Text      string
	WordCount int
	Links     []string
}

// DocsBundle is the set of documentation pages scraped for a candidate,
// beyond its README. Zero pages is valid.
type DocsBundle struct {
	Pages []DocsPage
}

// ScrapedBundle is C4's output: everything gathered about one candidate
// before analysis. RepoRecord and DocsBundle may both be nil/empty if
// unavailable; only a missing RegistryRecord is fatal to the candidate.
type ScrapedBundle struct {
	Candidate      Candidate
	Registry       *RegistryRecord
	Repo           *RepoRecord
	Docs           DocsBundle
	InstallHints   []string // raw shell-like lines found in docs, pre-parse
	AuthHints      []string // raw text snippets suggestive of auth requirements
}

// Tool is one operation an MCP server exposes via tools/list.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any `json:"inputSchema"`
	Category    string         `json:"category,omitempty"`
}

// Parameter describes one entry of a Tool's InputSchema, normalized during
// analysis for documentation-derived tools (live JSON-RPC schemas are kept
// verbatim instead).
type Parameter struct {
	Name        string
	Type        string // string | number | boolean | array | object
	Required    bool
	Description string
}

// InstallKind is the package-manager or deployment mechanism an
// InstallationMethod uses.
type InstallKind string

const (
	InstallNPM    InstallKind = "npm"
	InstallPipx   InstallKind = "pipx"
	InstallCargo  InstallKind = "cargo"
	InstallGo     InstallKind = "go"
	InstallDocker InstallKind = "docker"
	InstallGit    InstallKind = "git"
	InstallBinary InstallKind = "binary"
)

// InstallationMethod is one documented or inferred way to run a candidate.
type InstallationMethod struct {
	Kind        InstallKind
	Command     string
	Description string
	Priority    int // lower = preferred
	Confidence  int // 0-100
}

// AuthMethod is one way an MCP server may authenticate its caller.
type AuthMethod string

const (
	AuthNone        AuthMethod = "none"
	AuthAPIKey      AuthMethod = "api_key"
	AuthOAuth       AuthMethod = "oauth"
	AuthToken       AuthMethod = "token"
	AuthCredentials AuthMethod = "credentials"
	AuthBasic       AuthMethod = "basic"
	AuthCustom      AuthMethod = "custom"
)

// SetupComplexity classifies how much configuration an MCP server needs
// before it can be used.
type SetupComplexity string

const (
	SetupSimple   SetupComplexity = "simple"
	SetupModerate SetupComplexity = "moderate"
	SetupComplex  SetupComplexity = "complex"
)

// AuthRequirement is the analyzer's determination of a candidate's
// authentication needs.
type AuthRequirement struct {
	Required         bool
	Methods          []AuthMethod
	RequiredEnvVars  []string // ordered, deduplicated, uppercase
	OptionalEnvVars  []string
	SetupComplexity  SetupComplexity
	Summary          string
}

// TestingStrategy records how thoroughly C6 validated a candidate.
type TestingStrategy string

const (
	TestingFull          TestingStrategy = "full"
	TestingFallbackBasic TestingStrategy = "fallback_basic"
)

// IntelligenceReport is the product of live-launching a candidate and
// speaking MCP to it (C6).
type IntelligenceReport struct {
	ProtocolVersion      string
	ServerCapabilities   map[string]any
	InitializationTimeMS int64
	Tools                []Tool // authoritative when TestingStrategy == TestingFull
	WorkingTools         []string
	FailingTools         []string
	AvgToolResponseMS    int64
	ReliabilityScore     *float64 // nil when TestingStrategy == TestingFallbackBasic
	ObservedErrors       []string
	TestingStrategy      TestingStrategy
}

// HealthStatus is the four-valued classification of whether an MCP
// actually works when launched.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthDown     HealthStatus = "down"
	HealthUnknown  HealthStatus = "unknown"
)

// Valid reports whether h is one of the four recognized statuses.
func (h HealthStatus) Valid() bool {
	switch h {
	case HealthHealthy, HealthDegraded, HealthDown, HealthUnknown:
		return true
	}
	return false
}

// ConnectionType is the transport an MCP server speaks.
type ConnectionType string

const (
	ConnectionStdio     ConnectionType = "stdio"
	ConnectionHTTP      ConnectionType = "http"
	ConnectionWebSocket ConnectionType = "websocket"
)

// Category is one of the fixed, authoritative set of MCP categories.
// Any other value is a bug.
type Category string

const (
	CategoryDatabases         Category = "databases"
	CategoryPayments          Category = "payments"
	CategoryAITools           Category = "ai-tools"
	CategoryDevelopmentTools  Category = "development-tools"
	CategoryCloudStorage      Category = "cloud-storage"
	CategoryMessaging         Category = "messaging"
	CategoryContentCreation   Category = "content-creation"
	CategoryMonitoring        Category = "monitoring"
	CategoryProjectManagement Category = "project-management"
	CategorySecurity          Category = "security"
	CategoryAutomation        Category = "automation"
	CategorySocialMedia       Category = "social-media"
	CategoryWebAPIs           Category = "web-apis"
	CategoryProductivity      Category = "productivity"
	CategoryInfrastructure    Category = "infrastructure"
	CategoryMediaProcessing   Category = "media-processing"
	CategoryFinance           Category = "finance"
	CategoryCommunication     Category = "communication"
	CategoryResearch          Category = "research"
	CategoryIoT               Category = "iot"
)

// Categories is the authoritative, ordered enum of all 20 categories.
var Categories = []Category{
	CategoryDatabases, CategoryPayments, CategoryAITools, CategoryDevelopmentTools,
	CategoryCloudStorage, CategoryMessaging, CategoryContentCreation, CategoryMonitoring,
	CategoryProjectManagement, CategorySecurity, CategoryAutomation, CategorySocialMedia,
	CategoryWebAPIs, CategoryProductivity, CategoryInfrastructure, CategoryMediaProcessing,
	CategoryFinance, CategoryCommunication, CategoryResearch, CategoryIoT,
}

// Valid reports whether c is one of the fixed 20 categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// FieldSource records whether a CanonicalMCP field's current value was
// last set by the crawler or by a human operator. Operator-sourced fields
// are never overwritten by a subsequent crawl (see pkg/normalize).
type FieldSource string

const (
	SourceCrawler  FieldSource = "crawler"
	SourceOperator FieldSource = "operator"
)

// CanonicalMCP is the persisted entity: one normalized, deduplicated
// record describing a single MCP server.
type CanonicalMCP struct {
	Slug string

	Name             string
	DisplayName      string
	ShortDescription string
	LongDescription  string

	// Ecosystem and Identifier together are the candidate's original
	// registry identity; unlike Name, Identifier is never operator-owned
	// and never changes once a record is created.
	Ecosystem           Ecosystem
	Identifier          string
	InstallType         InstallKind
	EndpointCommand     string
	InstallationMethods []InstallationMethod

	Tools        []Tool
	ToolCount    int
	WorkingTools []string
	FailingTools []string

	Auth AuthRequirement

	ProtocolVersion string
	ConnectionType  ConnectionType

	Category Category
	Tags     []string // 20-30 hyphenated tokens
	UseCases []string // up to 8 sentences

	RepositoryURL    string
	DocumentationURL string
	HomepageURL      string
	Author           string
	Company          string
	License          string

	HealthStatus HealthStatus

	Verified        bool
	AutoDiscovered  bool
	DiscoverySource string

	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastScrapedAt  *time.Time
	LastValidatedAt *time.Time

	// FieldSources tracks, per exported field name, whether its current
	// value is crawler- or operator-owned. Absence means SourceCrawler.
	FieldSources map[string]FieldSource

	// SearchText is derived from Name, LongDescription, Tags, UseCases,
	// Category, and Author at persistence time (see pkg/store).
	SearchText string
}

// FieldSource returns the recorded source of field, defaulting to
// SourceCrawler when unset.
func (m *CanonicalMCP) FieldSource(field string) FieldSource {
	if m.FieldSources == nil {
		return SourceCrawler
	}
	if s, ok := m.FieldSources[field]; ok {
		return s
	}
	return SourceCrawler
}

// IsOperatorOwned reports whether field was last edited by a human
// operator and must never be overwritten by the crawler.
func (m *CanonicalMCP) IsOperatorOwned(field string) bool {
	return m.FieldSource(field) == SourceOperator
}
