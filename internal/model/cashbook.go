package model

import "time"

// Cashbook is a named ledger of transactions owned by one user.
type Cashbook struct {
	CreatedAt   time.Time
	Name        string
	Description string
	ID          int64
	UserID      int64
}

// UserProfile carries the identity fields the assistant may answer from.
type UserProfile struct {
	Username string
	Email    string
	Mobile   string
	ID       int64
}
