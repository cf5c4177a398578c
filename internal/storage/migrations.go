package storage

import (
	"context"
	"fmt"

	"github.com/hisabkitab/hisab/internal/common"
)

// migrations run in order; PRAGMA user_version tracks the last applied one.
var migrations = []string{
	// 1: base schema.
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		mobile TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		profile_image TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS cashbooks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cashbook_id INTEGER NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('inflow','outflow')),
		amount REAL NOT NULL CHECK (amount > 0),
		description TEXT,
		date TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (cashbook_id) REFERENCES cashbooks(id) ON DELETE CASCADE
	);`,

	// 2: indexes for the assistant's range and recency scans.
	`CREATE INDEX IF NOT EXISTS idx_transactions_cashbook_date
		ON transactions(cashbook_id, date);
	CREATE INDEX IF NOT EXISTS idx_cashbooks_user
		ON cashbooks(user_id);`,
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}

		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}

		common.LogDebug("applied schema migration", common.Fields{"version": i + 1})
	}

	return nil
}
