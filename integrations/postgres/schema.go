package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Statements table with natural key (source, period_from)
CREATE TABLE IF NOT EXISTS statements (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    source VARCHAR(255) NOT NULL,
    period_from DATE NOT NULL,
    period_to DATE NOT NULL,
    opening_debit_balance NUMERIC(18,2) NOT NULL DEFAULT 0,
    total_borrowed NUMERIC(18,2) NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    -- Natural key for deduplication
    UNIQUE(source, period_from)
);

-- One row per extracted balance change, in extraction order
CREATE TABLE IF NOT EXISTS balance_changes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    statement_id UUID NOT NULL REFERENCES statements(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    kind VARCHAR(10) NOT NULL CHECK (kind IN ('interest', 'payment', 'repayment')),
    date DATE NOT NULL,
    amount NUMERIC(18,2) NOT NULL,
    rate NUMERIC(10,6),
    created_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(statement_id, seq)
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_statements_period_from ON statements(period_from);
CREATE INDEX IF NOT EXISTS idx_balance_changes_statement_id ON balance_changes(statement_id);
CREATE INDEX IF NOT EXISTS idx_balance_changes_date ON balance_changes(date);
`

// EnsureSchema creates the tables if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
