package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hyeonso/EnhanceBot_Go/internal/estimator"
)

// AggregateSnapshot is one persisted table set: the aggregates of one data
// set plus the time range of the transcripts that produced them.
type AggregateSnapshot struct {
	ID      uuid.UUID        `json:"id"`
	Dataset string           `json:"dataset"`
	Start   time.Time        `json:"start"`
	End     time.Time        `json:"end"`
	Tables  *estimator.Tables `json:"tables"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot defines the interface for aggregate snapshot storage
type Snapshot interface {
	// Upsert stores the snapshot under its dataset key, replacing any
	// previous content.
	Upsert(ctx context.Context, snap *AggregateSnapshot) error

	// Get retrieves the snapshot for a dataset. Returns
	// domain.ErrSnapshotNotFound when the dataset has never been stored.
	Get(ctx context.Context, dataset string) (*AggregateSnapshot, error)

	// List returns the most recently updated snapshots, newest first.
	List(ctx context.Context, limit int) ([]AggregateSnapshot, error)
}

// MergeInto folds a new run's tables and time range into an existing
// snapshot. The range extends to cover both runs; table merging follows
// estimator.Tables.Merge semantics including the fatal cost check.
func MergeInto(snap *AggregateSnapshot, tables *estimator.Tables, start, end time.Time) error {
	if err := snap.Tables.Merge(tables); err != nil {
		return err
	}
	if snap.Start.IsZero() || start.Before(snap.Start) {
		snap.Start = start
	}
	if end.After(snap.End) {
		snap.End = end
	}
	return nil
}
