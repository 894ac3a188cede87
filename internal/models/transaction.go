package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction.
type TransactionType string

const (
	TypeExpense  TransactionType = "expense"
	TypeIncome   TransactionType = "income"
	TypeTransfer TransactionType = "transfer"
)

// TransferDirection records which way a transfer moved, when known.
type TransferDirection string

const (
	TransferIn  TransferDirection = "in"
	TransferOut TransferDirection = "out"
)

// Transaction is an immutable monetary record owned by one user.
// The amount is always stored non-negative; type and direction carry the sign.
// This core reads transactions from the ledger and never modifies them.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// OwnerID is the user who owns this transaction.
	OwnerID string

	// Date is the day the transaction occurred.
	Date time.Time

	// Amount is the transaction value, always non-negative.
	Amount decimal.Decimal

	// Category is the spending category (e.g., "groceries").
	Category string

	// Type is expense, income, or transfer.
	Type TransactionType

	// Direction is set for transfers only ("in" or "out"), empty otherwise.
	Direction TransferDirection

	// Description is free text, typically the bank statement line.
	Description string
}
