package store

import (
	"encoding/json"
	"strings"
	"time"

	mcperrors "github.com/mcpcrawl/mcpcrawl/pkg/errors"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// row is the flat, column-shaped view of a model.CanonicalMCP used for both
// marshaling into sqlite and scanning back out of it.
type row struct {
	slug                string
	ecosystem           string
	identifier          string
	name                string
	displayName         string
	shortDescription    string
	longDescription     string
	installType         string
	endpointCommand     string
	installationMethods string
	tools               string
	toolCount           int
	workingTools        string
	failingTools        string
	authRequired        int
	authMethods         string
	requiredEnvVars     string
	optionalEnvVars     string
	setupComplexity     string
	protocolVersion     string
	connectionType      string
	category            string
	tags                string
	useCases            string
	repositoryURL       string
	documentationURL    string
	homepageURL         string
	author              string
	company             string
	license             string
	healthStatus        string
	verified            int
	autoDiscovered      int
	discoverySource     string
	fieldSources        string
	searchText          string
	createdAt           string
	updatedAt           string
	lastScrapedAt       *string
	lastValidatedAt     *string
}

func toRow(mcp *model.CanonicalMCP) (row, error) {
	installationMethods, err := json.Marshal(nonNilMethods(mcp.InstallationMethods))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal installation_methods")
	}
	tools, err := json.Marshal(nonNilTools(mcp.Tools))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal tools")
	}
	workingTools, err := json.Marshal(nonNilStrings(mcp.WorkingTools))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal working_tools")
	}
	failingTools, err := json.Marshal(nonNilStrings(mcp.FailingTools))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal failing_tools")
	}
	authMethods, err := json.Marshal(nonNilAuthMethods(mcp.Auth.Methods))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal auth_methods")
	}
	requiredEnvVars, err := json.Marshal(nonNilStrings(mcp.Auth.RequiredEnvVars))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal required_env_vars")
	}
	optionalEnvVars, err := json.Marshal(nonNilStrings(mcp.Auth.OptionalEnvVars))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal optional_env_vars")
	}
	tags, err := json.Marshal(nonNilStrings(mcp.Tags))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal tags")
	}
	useCases, err := json.Marshal(nonNilStrings(mcp.UseCases))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal use_cases")
	}
	fieldSources, err := json.Marshal(nonNilFieldSources(mcp.FieldSources))
	if err != nil {
		return row{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal field_sources")
	}

	r := row{
		slug:                mcp.Slug,
		ecosystem:           string(mcp.Ecosystem),
		identifier:          mcp.Identifier,
		name:                mcp.Name,
		displayName:         mcp.DisplayName,
		shortDescription:    mcp.ShortDescription,
		longDescription:     mcp.LongDescription,
		installType:         string(mcp.InstallType),
		endpointCommand:     mcp.EndpointCommand,
		installationMethods: string(installationMethods),
		tools:               string(tools),
		toolCount:           mcp.ToolCount,
		workingTools:        string(workingTools),
		failingTools:        string(failingTools),
		authRequired:        boolToInt(mcp.Auth.Required),
		authMethods:         string(authMethods),
		requiredEnvVars:     string(requiredEnvVars),
		optionalEnvVars:     string(optionalEnvVars),
		setupComplexity:     string(mcp.Auth.SetupComplexity),
		protocolVersion:     mcp.ProtocolVersion,
		connectionType:      string(mcp.ConnectionType),
		category:            string(mcp.Category),
		tags:                string(tags),
		useCases:            string(useCases),
		repositoryURL:       mcp.RepositoryURL,
		documentationURL:    mcp.DocumentationURL,
		homepageURL:         mcp.HomepageURL,
		author:              mcp.Author,
		company:             mcp.Company,
		license:             mcp.License,
		healthStatus:        string(mcp.HealthStatus),
		verified:            boolToInt(mcp.Verified),
		autoDiscovered:      boolToInt(mcp.AutoDiscovered),
		discoverySource:     mcp.DiscoverySource,
		fieldSources:        string(fieldSources),
		searchText:          computeSearchText(mcp),
		createdAt:           formatTime(mcp.CreatedAt),
		updatedAt:           formatTime(mcp.UpdatedAt),
		lastScrapedAt:       formatTimePtr(mcp.LastScrapedAt),
		lastValidatedAt:     formatTimePtr(mcp.LastValidatedAt),
	}
	return r, nil
}

func fromRow(r row) (*model.CanonicalMCP, error) {
	var installationMethods []model.InstallationMethod
	if err := json.Unmarshal([]byte(r.installationMethods), &installationMethods); err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: unmarshal installation_methods")
	}
	var tools []model.Tool
	if err := json.Unmarshal([]byte(r.tools), &tools); err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: unmarshal tools")
	}
	var workingTools, failingTools, requiredEnvVars, optionalEnvVars, tags, useCases []string
	var authMethods []model.AuthMethod
	var fieldSources map[string]model.FieldSource
	for _, pair := range []struct {
		src string
		dst any
	}{
		{r.workingTools, &workingTools},
		{r.failingTools, &failingTools},
		{r.authMethods, &authMethods},
		{r.requiredEnvVars, &requiredEnvVars},
		{r.optionalEnvVars, &optionalEnvVars},
		{r.tags, &tags},
		{r.useCases, &useCases},
		{r.fieldSources, &fieldSources},
	} {
		if err := json.Unmarshal([]byte(pair.src), pair.dst); err != nil {
			return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: unmarshal row column")
		}
	}

	createdAt, err := parseTime(r.createdAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(r.updatedAt)
	if err != nil {
		return nil, err
	}
	lastScrapedAt, err := parseTimePtr(r.lastScrapedAt)
	if err != nil {
		return nil, err
	}
	lastValidatedAt, err := parseTimePtr(r.lastValidatedAt)
	if err != nil {
		return nil, err
	}

	return &model.CanonicalMCP{
		Slug:             r.slug,
		Name:             r.name,
		DisplayName:      r.displayName,
		ShortDescription: r.shortDescription,
		LongDescription:  r.longDescription,

		Ecosystem:           model.Ecosystem(r.ecosystem),
		Identifier:          r.identifier,
		InstallType:         model.InstallKind(r.installType),
		EndpointCommand:     r.endpointCommand,
		InstallationMethods: installationMethods,

		Tools:        tools,
		ToolCount:    r.toolCount,
		WorkingTools: workingTools,
		FailingTools: failingTools,

		Auth: model.AuthRequirement{
			Required:        r.authRequired != 0,
			Methods:         authMethods,
			RequiredEnvVars: requiredEnvVars,
			OptionalEnvVars: optionalEnvVars,
			SetupComplexity: model.SetupComplexity(r.setupComplexity),
		},

		ProtocolVersion: r.protocolVersion,
		ConnectionType:  model.ConnectionType(r.connectionType),

		Category: model.Category(r.category),
		Tags:     tags,
		UseCases: useCases,

		RepositoryURL:    r.repositoryURL,
		DocumentationURL: r.documentationURL,
		HomepageURL:      r.homepageURL,
		Author:           r.author,
		Company:          r.company,
		License:          r.license,

		HealthStatus: model.HealthStatus(r.healthStatus),

		Verified:        r.verified != 0,
		AutoDiscovered:  r.autoDiscovered != 0,
		DiscoverySource: r.discoverySource,

		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		LastScrapedAt:   lastScrapedAt,
		LastValidatedAt: lastValidatedAt,

		FieldSources: fieldSources,
		SearchText:   r.searchText,
	}, nil
}

// computeSearchText matches §6's generated search index: name, description,
// tags, use cases, category, and author folded to lowercase.
func computeSearchText(mcp *model.CanonicalMCP) string {
	parts := []string{
		mcp.Name,
		mcp.LongDescription,
		strings.Join(mcp.Tags, " "),
		strings.Join(mcp.UseCases, " "),
		string(mcp.Category),
		mcp.Author,
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: parse timestamp %q", s)
	}
	return t, nil
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilMethods(v []model.InstallationMethod) []model.InstallationMethod {
	if v == nil {
		return []model.InstallationMethod{}
	}
	return v
}

func nonNilTools(v []model.Tool) []model.Tool {
	if v == nil {
		return []model.Tool{}
	}
	return v
}

func nonNilAuthMethods(v []model.AuthMethod) []model.AuthMethod {
	if v == nil {
		return []model.AuthMethod{}
	}
	return v
}

func nonNilFieldSources(v map[string]model.FieldSource) map[string]model.FieldSource {
	if v == nil {
		return map[string]model.FieldSource{}
	}
	return v
}
