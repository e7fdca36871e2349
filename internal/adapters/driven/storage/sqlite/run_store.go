package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// runDetails is the JSON payload of the details column.
type runDetails struct {
	Results  []domain.ApplyResult `json:"results,omitempty"`
	Warnings []domain.Warning     `json:"warnings,omitempty"`
	Orphans  []domain.Orphan      `json:"orphans,omitempty"`
}

// Record stores or replaces a run report.
func (s *runStore) Record(ctx context.Context, report *domain.RunReport) error {
	if report == nil || report.ID == "" {
		return domain.ErrInvalidInput
	}

	details, err := json.Marshal(runDetails{
		Results:  report.Results,
		Warnings: report.Warnings,
		Orphans:  report.Orphans,
	})
	if err != nil {
		return fmt.Errorf("marshalling run details: %w", err)
	}

	summary := report.Summary()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, ended_at, dry_run, creates, updates, unchanged, unmanaged,
			applied, failed, error, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			dry_run = excluded.dry_run,
			creates = excluded.creates,
			updates = excluded.updates,
			unchanged = excluded.unchanged,
			unmanaged = excluded.unmanaged,
			applied = excluded.applied,
			failed = excluded.failed,
			error = excluded.error,
			details = excluded.details
	`, report.ID, formatTime(report.StartedAt), formatNullableTime(report.EndedAt),
		boolToInt(report.DryRun), report.Creates, report.Updates, report.Unchanged, report.Unmanaged,
		summary.Applied, summary.Failed, nullString(report.Error), string(details))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.RunReport, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, ended_at, dry_run, creates, updates, unchanged, unmanaged, error, details
		FROM runs WHERE id = ?
	`, id)

	report, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// List returns the most recent runs first. A limit <= 0 returns all runs.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, dry_run, creates, updates, unchanged, unmanaged, error, details
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.RunReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return reports, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.RunReport, error) {
	var report domain.RunReport
	var startedAt, details string
	var endedAt, errMsg sql.NullString
	var dryRun int

	if err := row.Scan(&report.ID, &startedAt, &endedAt, &dryRun,
		&report.Creates, &report.Updates, &report.Unchanged, &report.Unmanaged,
		&errMsg, &details); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	var d runDetails
	if err := json.Unmarshal([]byte(details), &d); err != nil {
		return nil, fmt.Errorf("unmarshalling run details: %w", err)
	}

	report.StartedAt = parseTime(startedAt)
	report.EndedAt = parseNullableTime(endedAt)
	report.DryRun = dryRun == 1
	report.Error = errMsg.String
	report.Results = d.Results
	report.Warnings = d.Warnings
	report.Orphans = d.Orphans
	return &report, nil
}
