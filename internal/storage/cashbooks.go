package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hisabkitab/hisab/internal/common"
	"github.com/hisabkitab/hisab/internal/model"
)

// ListCashbooks returns every cashbook owned by the user, newest first.
func (s *SQLiteStorage) ListCashbooks(ctx context.Context, userID int64) ([]model.Cashbook, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, COALESCE(description, ''), created_at
		FROM cashbooks
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cashbooks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cashbooks []model.Cashbook
	for rows.Next() {
		var cb model.Cashbook
		if err := rows.Scan(&cb.ID, &cb.UserID, &cb.Name, &cb.Description, &cb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cashbook: %w", err)
		}
		cashbooks = append(cashbooks, cb)
	}

	return cashbooks, rows.Err()
}

// GetUserProfile returns the identity fields for a user.
func (s *SQLiteStorage) GetUserProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var p model.UserProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, mobile
		FROM users
		WHERE id = ?`, userID).Scan(&p.ID, &p.Username, &p.Email, &p.Mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return &p, nil
}

// CreateUser inserts a user row. Used by the surrounding CRUD layer and
// by tests to seed fixtures.
func (s *SQLiteStorage) CreateUser(ctx context.Context, username, email, mobile, password string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, mobile, password)
		VALUES (?, ?, ?, ?)`, username, email, mobile, password)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.LastInsertId()
}

// CreateCashbook inserts a cashbook row for a user.
func (s *SQLiteStorage) CreateCashbook(ctx context.Context, userID int64, name, description string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cashbooks (user_id, name, description)
		VALUES (?, ?, ?)`, userID, name, description)
	if err != nil {
		return 0, fmt.Errorf("failed to create cashbook: %w", err)
	}
	return res.LastInsertId()
}
