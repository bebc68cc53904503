package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"slstmt/ledger"
)

// StatementExists checks if a statement already exists using the
// natural key (source, period start).
func (db *DB) StatementExists(ctx context.Context, source string, periodFrom time.Time) (bool, string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM statements
		WHERE source = $1 AND period_from = $2
	`, source, periodFrom).Scan(&id)

	if err != nil {
		if err == pgx.ErrNoRows {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to check statement: %w", err)
	}

	return true, id, nil
}

// CreateStatement inserts a new statement record.
func (db *DB) CreateStatement(ctx context.Context, stmt ledger.Statement) (string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO statements (
			source, period_from, period_to,
			opening_debit_balance, total_borrowed
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		stmt.Source, stmt.PeriodFrom, stmt.PeriodTo,
		stmt.OpeningDebitBalance, stmt.TotalBorrowed,
	).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create statement: %w", err)
	}

	return id, nil
}

// CreateBalanceChanges bulk inserts the statement's balance changes in
// extraction order (interests, payments, repayments).
func (db *DB) CreateBalanceChanges(ctx context.Context, statementID string, stmt ledger.Statement) error {
	entries := make([]ledger.Entry, 0, stmt.Events())
	entries = append(entries, stmt.Interests...)
	entries = append(entries, stmt.Payments...)
	entries = append(entries, stmt.Repayments...)
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for seq, entry := range entries {
		var rate any
		if entry.Kind == ledger.KindInterest {
			rate = entry.Rate
		}
		batch.Queue(`
			INSERT INTO balance_changes (statement_id, seq, kind, date, amount, rate)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, statementID, seq, string(entry.Kind), entry.Date, entry.Amount, rate)
	}

	results := db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert balance change: %w", err)
		}
	}

	return nil
}

// DeleteStatement removes a statement and its balance changes (cascade).
func (db *DB) DeleteStatement(ctx context.Context, statementID string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM statements WHERE id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	return nil
}
