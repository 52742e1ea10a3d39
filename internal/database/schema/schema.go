package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Aggregate snapshot storage

CREATE TABLE IF NOT EXISTS aggregate_snapshots (
    snapshot_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    dataset VARCHAR(100) UNIQUE NOT NULL,
    range_start TIMESTAMPTZ NOT NULL,
    range_end TIMESTAMPTZ NOT NULL,
    tables JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_aggregate_snapshots_updated_at
    ON aggregate_snapshots (updated_at DESC);
`
