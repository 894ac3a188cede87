package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill groups one or more transactions shared among a set of members.
// A bill is created atomically with all of its members; deleting a bill
// cascades to members and bill-transaction links but never touches the
// underlying transactions.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// CreatedBy is the user who created the bill. Only the creator may
	// delete it or apply payments against it.
	CreatedBy string

	// Description is free text. Defaults to the first selected transaction's
	// description, truncated to 240 characters.
	Description string

	// Date is when the bill was created.
	Date time.Time

	// Total is the exact sum of the selected transactions' amounts.
	Total decimal.Decimal

	// Members are the bill's members, exactly one per user. Loaded with the
	// bill; the creator is always among them.
	Members []BillMember
}

// BillMember is one member's owed share and credited paid amount within a bill.
// Paid only ever increases.
type BillMember struct {
	// ID is the unique identifier for the member row (UUID format).
	ID string

	// BillID is the bill this membership belongs to.
	BillID string

	// UserID identifies the member.
	UserID string

	// Share is the fixed amount this member owes.
	Share decimal.Decimal

	// Paid is the amount credited against the share so far.
	Paid decimal.Decimal
}

// BillTransaction links a bill to a transaction, recording how much of the
// transaction's value was applied to the bill. A transaction may appear in
// multiple bills, but at most once per bill.
type BillTransaction struct {
	// ID is the unique identifier for the link (UUID format).
	ID string

	// BillID is the bill the amount was applied to.
	BillID string

	// TransactionID is the underlying transaction.
	TransactionID string

	// AmountApplied is the portion of the transaction's value allocated to
	// this bill.
	AmountApplied decimal.Decimal
}
