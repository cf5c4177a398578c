package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hisabkitab/hisab/internal/model"
)

const transactionColumns = `t.id, t.cashbook_id, t.type, t.amount, COALESCE(t.description, ''), t.date, t.created_at`

// GetTransactionsInRange returns the transactions of one owned cashbook
// within an inclusive day range, ordered by date then insertion time.
func (s *SQLiteStorage) GetTransactionsInRange(ctx context.Context, userID, cashbookID int64, start, end model.Day) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		INNER JOIN cashbooks c ON t.cashbook_id = c.id
		WHERE t.cashbook_id = ? AND c.user_id = ?
			AND t.date >= ? AND t.date <= ?
		ORDER BY t.date ASC, t.created_at ASC, t.id ASC`,
		cashbookID, userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions in range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetAllTimeBalance computes the signed-sum balance of one owned cashbook
// without materializing its transaction rows.
func (s *SQLiteStorage) GetAllTimeBalance(ctx context.Context, userID, cashbookID int64) (model.Balance, error) {
	if err := validateContext(ctx); err != nil {
		return model.Balance{}, err
	}

	var b model.Balance
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN t.type = 'inflow' THEN t.amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.type = 'outflow' THEN t.amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.type = 'inflow' THEN t.amount ELSE -t.amount END), 0)
		FROM transactions t
		INNER JOIN cashbooks c ON t.cashbook_id = c.id
		WHERE t.cashbook_id = ? AND c.user_id = ?`,
		cashbookID, userID).Scan(&b.TotalInflow, &b.TotalOutflow, &b.Balance)
	if err != nil {
		return model.Balance{}, fmt.Errorf("failed to compute balance: %w", err)
	}

	return b, nil
}

// GetRecentTransactions returns the newest transactions of one owned
// cashbook. The limit clamps to 1..20 with a default of 5.
func (s *SQLiteStorage) GetRecentTransactions(ctx context.Context, userID, cashbookID int64, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		INNER JOIN cashbooks c ON t.cashbook_id = c.id
		WHERE t.cashbook_id = ? AND c.user_id = ?
		ORDER BY t.date DESC, t.created_at DESC, t.id DESC
		LIMIT ?`,
		cashbookID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetTransactionCount returns the all-time transaction count of one owned
// cashbook without scanning rows.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context, userID, cashbookID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions t
		INNER JOIN cashbooks c ON t.cashbook_id = c.id
		WHERE t.cashbook_id = ? AND c.user_id = ?`,
		cashbookID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// AddTransaction inserts a transaction row. Used by the surrounding CRUD
// layer and by tests to seed fixtures.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, cashbookID int64, txnType model.TransactionType, amount float64, date model.Day, description string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %v", amount)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (cashbook_id, type, amount, description, date)
		VALUES (?, ?, ?, ?, ?)`,
		cashbookID, string(txnType), amount, description, date.String())
	if err != nil {
		return 0, fmt.Errorf("failed to add transaction: %w", err)
	}
	return res.LastInsertId()
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var (
			txn       model.Transaction
			txnType   string
			dateStr   string
			createdAt time.Time
		)
		if err := rows.Scan(&txn.ID, &txn.CashbookID, &txnType, &txn.Amount, &txn.Description, &dateStr, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		day, err := model.ParseDay(dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad transaction date %q: %w", dateStr, err)
		}
		txn.Type = model.TransactionType(txnType)
		txn.Date = day
		txn.CreatedAt = createdAt
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}
