// Package model defines the core domain types shared across the application.
package model

import "time"

// TransactionType distinguishes money entering from money leaving a cashbook.
type TransactionType string

// Transaction types.
const (
	Inflow  TransactionType = "inflow"
	Outflow TransactionType = "outflow"
)

// Transaction is a single cashbook entry. Amount is always positive; the
// type carries the direction. The description may carry an encoded
// category tag (see DecodeCategory).
type Transaction struct {
	Date        Day
	CreatedAt   time.Time
	Description string
	Type        TransactionType
	ID          int64
	CashbookID  int64
	Amount      float64
}

// Category returns the decoded category tag, or "" when none is present.
func (t Transaction) Category() string {
	category, _ := DecodeCategory(t.Description)
	return category
}

// DisplayDescription returns the description with any category tag stripped.
func (t Transaction) DisplayDescription() string {
	_, description := DecodeCategory(t.Description)
	return description
}

// Balance holds the all-time signed-sum accounting figures for a cashbook.
type Balance struct {
	TotalInflow  float64
	TotalOutflow float64
	Balance      float64
}
