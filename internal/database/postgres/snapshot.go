package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
	"github.com/hyeonso/EnhanceBot_Go/internal/estimator"
	"github.com/hyeonso/EnhanceBot_Go/internal/repository"
)

type snapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new PostgreSQL aggregate snapshot repository
func NewSnapshotRepository(db *pgxpool.Pool) repository.Snapshot {
	return &snapshotRepository{db: db}
}

// Upsert stores the snapshot under its dataset key
func (r *snapshotRepository) Upsert(ctx context.Context, snap *repository.AggregateSnapshot) error {
	query := `
		INSERT INTO aggregate_snapshots (dataset, range_start, range_end, tables)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (dataset) DO UPDATE SET
			range_start = EXCLUDED.range_start,
			range_end = EXCLUDED.range_end,
			tables = EXCLUDED.tables,
			updated_at = NOW()
		RETURNING snapshot_id, created_at, updated_at
	`

	tablesJSON, err := json.Marshal(snap.Tables)
	if err != nil {
		return fmt.Errorf("encoding snapshot tables: %w", err)
	}

	err = r.db.QueryRow(ctx, query, snap.Dataset, snap.Start, snap.End, tablesJSON).
		Scan(&snap.ID, &snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting snapshot %q: %w", snap.Dataset, err)
	}
	return nil
}

// Get retrieves the snapshot for a dataset
func (r *snapshotRepository) Get(ctx context.Context, dataset string) (*repository.AggregateSnapshot, error) {
	query := `
		SELECT snapshot_id, dataset, range_start, range_end, tables, created_at, updated_at
		FROM aggregate_snapshots
		WHERE dataset = $1
	`

	var (
		snap       repository.AggregateSnapshot
		tablesJSON []byte
	)
	err := r.db.QueryRow(ctx, query, dataset).Scan(
		&snap.ID, &snap.Dataset, &snap.Start, &snap.End, &tablesJSON,
		&snap.CreatedAt, &snap.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: dataset %q", domain.ErrSnapshotNotFound, dataset)
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot %q: %w", dataset, err)
	}

	snap.Tables = &estimator.Tables{}
	if err := json.Unmarshal(tablesJSON, snap.Tables); err != nil {
		return nil, fmt.Errorf("decoding snapshot tables for %q: %w", dataset, err)
	}
	return &snap, nil
}

// List returns the most recently updated snapshots, newest first
func (r *snapshotRepository) List(ctx context.Context, limit int) ([]repository.AggregateSnapshot, error) {
	query := `
		SELECT snapshot_id, dataset, range_start, range_end, tables, created_at, updated_at
		FROM aggregate_snapshots
		ORDER BY updated_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []repository.AggregateSnapshot
	for rows.Next() {
		var (
			snap       repository.AggregateSnapshot
			tablesJSON []byte
		)
		if err := rows.Scan(
			&snap.ID, &snap.Dataset, &snap.Start, &snap.End, &tablesJSON,
			&snap.CreatedAt, &snap.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		snap.Tables = &estimator.Tables{}
		if err := json.Unmarshal(tablesJSON, snap.Tables); err != nil {
			return nil, fmt.Errorf("decoding snapshot tables for %q: %w", snap.Dataset, err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
