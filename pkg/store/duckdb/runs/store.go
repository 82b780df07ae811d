package runs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/tagwarden/pkg/adapters"
	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/de-tools/tagwarden/pkg/models/store"
	"github.com/de-tools/tagwarden/pkg/store/duckdb"
)

const DefaultListLimit = 20

// Store keeps one row per governance or metrics run
type Store interface {
	Add(ctx context.Context, summary domain.RunSummary) error
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)
	Get(ctx context.Context, id string) (*domain.RunSummary, error)
}

type runStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &runStore{db: db}, nil
}

func (s *runStore) Add(ctx context.Context, summary domain.RunSummary) error {
	row := adapters.MapRunSummaryDomainToStore(summary)
	var payload any
	if row.Payload != "" {
		payload = row.Payload
	}

	_, err := duckdb.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO runs (
			id, kind, status, mode, started_at, finished_at,
			scanned, non_compliant, deleted, in_grace_period, error_count, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID,
		row.Kind,
		row.Status,
		row.Mode,
		row.StartedAt,
		row.FinishedAt,
		row.Scanned,
		row.NonCompliant,
		row.Deleted,
		row.InGracePeriod,
		row.ErrorCount,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const selectRuns = `
	SELECT id, kind, status, mode, started_at, finished_at,
		scanned, non_compliant, deleted, in_grace_period, error_count,
		COALESCE(CAST(payload AS VARCHAR), '')
	FROM runs`

// List returns the most recent runs first; a non-positive limit uses DefaultListLimit
func (s *runStore) List(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := duckdb.ExecutorFrom(ctx, s.db).QueryContext(ctx, selectRuns+`
		ORDER BY started_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.RunSummary, 0)
	for rows.Next() {
		row, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, adapters.MapStoreRunToDomain(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// Get returns nil without error when the run does not exist
func (s *runStore) Get(ctx context.Context, id string) (*domain.RunSummary, error) {
	row, err := scanRun(duckdb.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, selectRuns+`
		WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	summary := adapters.MapStoreRunToDomain(row)
	return &summary, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (store.Run, error) {
	var r store.Run
	err := s.Scan(
		&r.ID,
		&r.Kind,
		&r.Status,
		&r.Mode,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Scanned,
		&r.NonCompliant,
		&r.Deleted,
		&r.InGracePeriod,
		&r.ErrorCount,
		&r.Payload,
	)
	if err == sql.ErrNoRows {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}
