package store

import (
	"context"
	"database/sql"
	"time"

	mcperrors "github.com/mcpcrawl/mcpcrawl/pkg/errors"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
	"github.com/mcpcrawl/mcpcrawl/pkg/observability"
)

const mcpColumns = `slug, ecosystem, identifier, name, display_name, short_description,
	long_description, install_type, endpoint_command, installation_methods,
	tools, tool_count, working_tools, failing_tools, auth_required,
	auth_methods, required_env_vars, optional_env_vars, setup_complexity,
	protocol_version, connection_type, category, tags, use_cases,
	repository_url, documentation_url, homepage_url, author, company,
	license, health_status, verified, auto_discovered, discovery_source,
	field_sources, search_text, created_at, updated_at, last_scraped_at,
	last_validated_at`

// Upsert inserts mcp or, if its slug already exists, overwrites every
// column of the row except created_at (pkg/normalize has already computed the merge; the store is a
// dumb writer of whatever CanonicalMCP it is given). The companion FTS row
// is kept in sync in the same transaction.
func (s *Store) Upsert(ctx context.Context, mcp *model.CanonicalMCP) (isNew bool, err error) {
	lock := s.lockFor(mcp.Slug)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		observability.Store().OnUpsert(ctx, mcp.Slug, isNew, time.Since(start), err)
	}()

	_, found, err := s.GetBySlug(ctx, mcp.Slug)
	if err != nil {
		return false, err
	}
	isNew = !found

	r, err := toRow(mcp)
	if err != nil {
		return false, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO mcps (`+mcpColumns+`)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(slug) DO UPDATE SET
				ecosystem=excluded.ecosystem, identifier=excluded.identifier,
				name=excluded.name, display_name=excluded.display_name,
				short_description=excluded.short_description, long_description=excluded.long_description,
				install_type=excluded.install_type, endpoint_command=excluded.endpoint_command,
				installation_methods=excluded.installation_methods, tools=excluded.tools,
				tool_count=excluded.tool_count, working_tools=excluded.working_tools,
				failing_tools=excluded.failing_tools, auth_required=excluded.auth_required,
				auth_methods=excluded.auth_methods, required_env_vars=excluded.required_env_vars,
				optional_env_vars=excluded.optional_env_vars, setup_complexity=excluded.setup_complexity,
				protocol_version=excluded.protocol_version, connection_type=excluded.connection_type,
				category=excluded.category, tags=excluded.tags, use_cases=excluded.use_cases,
				repository_url=excluded.repository_url, documentation_url=excluded.documentation_url,
				homepage_url=excluded.homepage_url, author=excluded.author, company=excluded.company,
				license=excluded.license, health_status=excluded.health_status,
				verified=excluded.verified, auto_discovered=excluded.auto_discovered,
				discovery_source=excluded.discovery_source, field_sources=excluded.field_sources,
				search_text=excluded.search_text, updated_at=excluded.updated_at,
				last_scraped_at=excluded.last_scraped_at, last_validated_at=excluded.last_validated_at
		`,
			r.slug, r.ecosystem, r.identifier, r.name, r.displayName, r.shortDescription,
			r.longDescription, r.installType, r.endpointCommand, r.installationMethods,
			r.tools, r.toolCount, r.workingTools, r.failingTools, r.authRequired,
			r.authMethods, r.requiredEnvVars, r.optionalEnvVars, r.setupComplexity,
			r.protocolVersion, r.connectionType, r.category, r.tags, r.useCases,
			r.repositoryURL, r.documentationURL, r.homepageURL, r.author, r.company,
			r.license, r.healthStatus, r.verified, r.autoDiscovered, r.discoverySource,
			r.fieldSources, r.searchText, r.createdAt, r.updatedAt, r.lastScrapedAt,
			r.lastValidatedAt,
		); err != nil {
			return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: upsert mcp %s", mcp.Slug)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM mcps_fts WHERE slug = ?`, r.slug); err != nil {
			return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: clear fts row for %s", mcp.Slug)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO mcps_fts (slug, search_text) VALUES (?, ?)`, r.slug, r.searchText); err != nil {
			return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: index mcp %s", mcp.Slug)
		}
		return nil
	})
	return isNew, err
}

// GetBySlug returns the record for slug, or found=false if no such row exists.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*model.CanonicalMCP, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mcpColumns+` FROM mcps WHERE slug = ?`, slug)
	mcp, err := scanMCP(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return mcp, true, nil
}

// Delete removes the record for slug. Not an error if no such row exists.
func (s *Store) Delete(ctx context.Context, slug string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM mcps WHERE slug = ?`, slug); err != nil {
			return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: delete mcp %s", slug)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM mcps_fts WHERE slug = ?`, slug); err != nil {
			return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: delete fts row for %s", slug)
		}
		return nil
	})
}

// Search runs a full-text query against mcps_fts and returns the matching
// rows from mcps, most relevant first, capped at limit.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]*model.CanonicalMCP, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.`+mcpColumnsQualified()+`
		FROM mcps_fts f
		JOIN mcps m ON m.slug = f.slug
		WHERE mcps_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: search %q", query)
	}
	defer rows.Close()
	return scanMCPs(rows)
}

// AgentReady returns every row the agent_ready_mcps view selects: healthy
// or degraded, verified, with at least one use case.
func (s *Store) AgentReady(ctx context.Context) ([]*model.CanonicalMCP, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mcpColumns+` FROM agent_ready_mcps`)
	if err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: query agent_ready_mcps")
	}
	defer rows.Close()
	return scanMCPs(rows)
}

// ByEcosystemIdentifier looks up a record by its original (ecosystem,
// identifier) dedup key.
func (s *Store) ByEcosystemIdentifier(ctx context.Context, ecosystem model.Ecosystem, identifier string) (*model.CanonicalMCP, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mcpColumns+` FROM mcps WHERE ecosystem = ? AND identifier = ?`, string(ecosystem), identifier)
	mcp, err := scanMCP(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return mcp, true, nil
}

// All returns every persisted record, used by the dedup index's startup
// seeding pass and by operator tooling.
func (s *Store) All(ctx context.Context) ([]*model.CanonicalMCP, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mcpColumns+` FROM mcps`)
	if err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: query all mcps")
	}
	defer rows.Close()
	return scanMCPs(rows)
}

func mcpColumnsQualified() string {
	return `slug, m.ecosystem, m.identifier, m.name, m.display_name, m.short_description,
	m.long_description, m.install_type, m.endpoint_command, m.installation_methods,
	m.tools, m.tool_count, m.working_tools, m.failing_tools, m.auth_required,
	m.auth_methods, m.required_env_vars, m.optional_env_vars, m.setup_complexity,
	m.protocol_version, m.connection_type, m.category, m.tags, m.use_cases,
	m.repository_url, m.documentation_url, m.homepage_url, m.author, m.company,
	m.license, m.health_status, m.verified, m.auto_discovered, m.discovery_source,
	m.field_sources, m.search_text, m.created_at, m.updated_at, m.last_scraped_at,
	m.last_validated_at`
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMCP(sc scannable) (*model.CanonicalMCP, error) {
	var r row
	err := sc.Scan(
		&r.slug, &r.ecosystem, &r.identifier, &r.name, &r.displayName, &r.shortDescription,
		&r.longDescription, &r.installType, &r.endpointCommand, &r.installationMethods,
		&r.tools, &r.toolCount, &r.workingTools, &r.failingTools, &r.authRequired,
		&r.authMethods, &r.requiredEnvVars, &r.optionalEnvVars, &r.setupComplexity,
		&r.protocolVersion, &r.connectionType, &r.category, &r.tags, &r.useCases,
		&r.repositoryURL, &r.documentationURL, &r.homepageURL, &r.author, &r.company,
		&r.license, &r.healthStatus, &r.verified, &r.autoDiscovered, &r.discoverySource,
		&r.fieldSources, &r.searchText, &r.createdAt, &r.updatedAt, &r.lastScrapedAt,
		&r.lastValidatedAt,
	)
	if err != nil {
		return nil, err
	}
	return fromRow(r)
}

func scanMCPs(rows *sql.Rows) ([]*model.CanonicalMCP, error) {
	var out []*model.CanonicalMCP
	for rows.Next() {
		mcp, err := scanMCP(rows)
		if err != nil {
			return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: scan mcp row")
		}
		out = append(out, mcp)
	}
	if err := rows.Err(); err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: iterate mcp rows")
	}
	return out, nil
}
