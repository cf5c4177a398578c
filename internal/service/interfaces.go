// Package service defines the interfaces for the application's collaborators.
package service

import (
	"context"
	"time"

	"github.com/hisabkitab/hisab/internal/model"
)

// Storage defines the read contract the assistant depends on. Every method
// is scoped by userID: implementations must return empty results for
// cashbooks the user does not own.
type Storage interface {
	ListCashbooks(ctx context.Context, userID int64) ([]model.Cashbook, error)
	GetTransactionsInRange(ctx context.Context, userID, cashbookID int64, start, end model.Day) ([]model.Transaction, error)
	GetAllTimeBalance(ctx context.Context, userID, cashbookID int64) (model.Balance, error)
	GetRecentTransactions(ctx context.Context, userID, cashbookID int64, limit int) ([]model.Transaction, error)
	GetTransactionCount(ctx context.Context, userID, cashbookID int64) (int, error)
	GetUserProfile(ctx context.Context, userID int64) (*model.UserProfile, error)

	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
