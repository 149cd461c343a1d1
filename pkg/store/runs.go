package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	mcperrors "github.com/mcpcrawl/mcpcrawl/pkg/errors"
	"github.com/mcpcrawl/mcpcrawl/pkg/observability"
)

// RunRecord is one append-only crawler_runs row, written once per
// orchestrated run (run_once or a scheduled trigger).
type RunRecord struct {
	ID            int64
	StartedAt     time.Time
	CompletedAt   *time.Time
	Status        string // completed | failed | skipped
	Discovered    int
	Processed     int
	NewCount      int
	UpdatedCount  int
	Skipped       int
	Failed        int
	Conflicts     int
	Errors        []string
	Cause         string
	LastCandidate string
}

// RecordRun appends run to crawler_runs and returns its assigned id.
func (s *Store) RecordRun(ctx context.Context, run RunRecord) (id int64, err error) {
	defer func() {
		observability.Store().OnRunRecorded(ctx, run.Status, err)
	}()

	errorsJSON, err := json.Marshal(nonNilStrings(run.Errors))
	if err != nil {
		return 0, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: marshal run errors")
	}

	var completedAt *string
	if run.CompletedAt != nil {
		v := formatTime(*run.CompletedAt)
		completedAt = &v
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO crawler_runs (
			started_at, completed_at, status, discovered, processed, new_count,
			updated_count, skipped, failed, conflicts, errors, cause, last_candidate
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		formatTime(run.StartedAt), completedAt, run.Status, run.Discovered, run.Processed,
		run.NewCount, run.UpdatedCount, run.Skipped, run.Failed, run.Conflicts,
		string(errorsJSON), run.Cause, run.LastCandidate,
	)
	if err != nil {
		return 0, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: record run")
	}
	return res.LastInsertId()
}

const runColumns = `id, started_at, completed_at, status, discovered, processed,
	new_count, updated_count, skipped, failed, conflicts, errors, cause, last_candidate`

// History returns the n most recent runs, most recent first. n<=0 returns
// every run ever recorded.
func (s *Store) History(ctx context.Context, n int) ([]RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM crawler_runs ORDER BY id DESC`
	args := []any{}
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: query run history")
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: iterate run history")
	}
	return out, nil
}

func scanRun(rows *sql.Rows) (RunRecord, error) {
	var rec RunRecord
	var startedAt string
	var completedAt *string
	var errorsJSON string
	if err := rows.Scan(
		&rec.ID, &startedAt, &completedAt, &rec.Status, &rec.Discovered, &rec.Processed,
		&rec.NewCount, &rec.UpdatedCount, &rec.Skipped, &rec.Failed, &rec.Conflicts,
		&errorsJSON, &rec.Cause, &rec.LastCandidate,
	); err != nil {
		return RunRecord{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: scan run row")
	}

	t, err := parseTime(startedAt)
	if err != nil {
		return RunRecord{}, err
	}
	rec.StartedAt = t
	if c, err := parseTimePtr(completedAt); err != nil {
		return RunRecord{}, err
	} else {
		rec.CompletedAt = c
	}
	if err := json.Unmarshal([]byte(errorsJSON), &rec.Errors); err != nil {
		return RunRecord{}, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: unmarshal run errors")
	}
	return rec, nil
}

// RecordMergeEvent persists a normalize.MergeEvent for operator review; the
// crawler itself never rewrites a slug on the strength of this record.
func (s *Store) RecordMergeEvent(ctx context.Context, candidateSlug, matchedSlug, matchedBy string) error {
	err := func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO merge_events (candidate_slug, matched_slug, matched_by, created_at)
			VALUES (?, ?, ?, ?)
		`, candidateSlug, matchedSlug, matchedBy, formatTime(time.Now()))
		if err != nil {
			return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "store: record merge event")
		}
		return nil
	}()
	observability.Store().OnMergeEvent(ctx, candidateSlug, matchedSlug)
	return err
}
