// Package store implements C8: the sqlite-backed persistence adapter. One
// Store wraps a *sql.DB opened against the pure-Go modernc.org/sqlite
// driver, owns schema creation, and serializes writes per slug so a
// concurrent pipeline never races two upserts of the same record.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	mcperrors "github.com/mcpcrawl/mcpcrawl/pkg/errors"
)

// Store is the persistence adapter for the mcps and crawler_runs tables.
type Store struct {
	db *sql.DB

	// slugLocks serializes upserts per slug: two workers finishing
	// analysis for the same candidate at the same time must not
	// interleave their read-modify-write of one row.
	slugLocks sync.Map // map[string]*sync.Mutex
}

// Open creates the database file's parent directory if needed, opens a
// connection pool against it, and ensures the schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, mcperrors.New(mcperrors.ErrCodeInvalidInput, "store: empty database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: create db directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: open %s", path)
	}
	// modernc.org/sqlite serializes internally; one open connection avoids
	// "database is locked" errors under concurrent writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mcps (
			slug TEXT PRIMARY KEY,
			ecosystem TEXT NOT NULL,
			identifier TEXT NOT NULL,
			name TEXT NOT NULL,
			display_name TEXT NOT NULL,
			short_description TEXT NOT NULL,
			long_description TEXT NOT NULL,
			install_type TEXT NOT NULL,
			endpoint_command TEXT NOT NULL,
			installation_methods TEXT NOT NULL,
			tools TEXT NOT NULL,
			tool_count INTEGER NOT NULL,
			working_tools TEXT NOT NULL,
			failing_tools TEXT NOT NULL,
			auth_required INTEGER NOT NULL,
			auth_methods TEXT NOT NULL,
			required_env_vars TEXT NOT NULL,
			optional_env_vars TEXT NOT NULL,
			setup_complexity TEXT NOT NULL,
			protocol_version TEXT NOT NULL,
			connection_type TEXT NOT NULL,
			category TEXT NOT NULL,
			tags TEXT NOT NULL,
			use_cases TEXT NOT NULL,
			repository_url TEXT,
			documentation_url TEXT,
			homepage_url TEXT,
			author TEXT,
			company TEXT,
			license TEXT,
			health_status TEXT NOT NULL,
			verified INTEGER NOT NULL,
			auto_discovered INTEGER NOT NULL,
			discovery_source TEXT NOT NULL,
			field_sources TEXT NOT NULL,
			search_text TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			last_scraped_at TEXT,
			last_validated_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mcps_ecosystem_identifier ON mcps(ecosystem, identifier);`,
		`CREATE INDEX IF NOT EXISTS idx_mcps_category ON mcps(category);`,
		`CREATE INDEX IF NOT EXISTS idx_mcps_health_status ON mcps(health_status);`,
		// mcps_fts is a standalone (not external-content) FTS5 index: slug
		// is the join key back to mcps, kept in sync by upsertSearchIndex
		// inside the same transaction as every mcps write.
		`CREATE VIRTUAL TABLE IF NOT EXISTS mcps_fts USING fts5(slug UNINDEXED, search_text);`,
		`CREATE VIEW IF NOT EXISTS agent_ready_mcps AS
			SELECT * FROM mcps
			WHERE health_status IN ('healthy','degraded')
			  AND verified = 1
			  AND use_cases != '[]';`,
		`CREATE TABLE IF NOT EXISTS crawler_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			completed_at TEXT,
			status TEXT NOT NULL,
			discovered INTEGER,
			processed INTEGER,
			new_count INTEGER,
			updated_count INTEGER,
			skipped INTEGER,
			failed INTEGER,
			conflicts INTEGER,
			errors TEXT,
			cause TEXT,
			last_candidate TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS merge_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			candidate_slug TEXT NOT NULL,
			matched_slug TEXT NOT NULL,
			matched_by TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: apply schema")
		}
	}
	return nil
}

func (s *Store) lockFor(slug string) *sync.Mutex {
	v, _ := s.slugLocks.LoadOrStore(slug, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error (including a panic, which is re-raised after rollback).
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: commit transaction")
	}
	return nil
}
