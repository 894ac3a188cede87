package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/finsoc/splitledger/internal/calculator"
	"github.com/finsoc/splitledger/internal/errs"
	"github.com/finsoc/splitledger/internal/models"
	"github.com/finsoc/splitledger/internal/storage"
)

// SettlementService applies reimbursement transactions against a bill's
// outstanding member shares and derives the settlement state. Settled and
// remaining are always recomputed from current child rows, never cached.
type SettlementService struct {
	store storage.Store
	hooks Hooks
}

// NewSettlementService creates a new SettlementService with the given storage
// backend.
func NewSettlementService(store storage.Store, hooks Hooks) *SettlementService {
	return &SettlementService{store: store, hooks: hooks}
}

// ApplyResult is the derived state returned after a payment is applied.
type ApplyResult struct {
	// MemberID is the credited member's user ID, or empty when the payment
	// was recorded without crediting anyone (no usable association).
	MemberID string

	// NewPaid and NewOutstanding reflect the credited member after the apply.
	// Zero values when MemberID is empty.
	NewPaid        decimal.Decimal
	NewOutstanding decimal.Decimal

	// Remaining is the transaction's unallocated amount across all bills.
	Remaining decimal.Decimal

	// BillSettled reports whether this payment settled the whole bill.
	BillSettled bool
}

// ApplyTransaction records amount of the given transaction against the bill
// and credits the member associated with the transaction, if any.
//
// Only the bill's creator may apply payments. A transaction may be applied to
// a bill at most once; a second apply conflicts. When the transaction has a
// confirmed association and that friend is a member of the bill, the member's
// paid amount advances atomically with the link insert. When no usable
// association exists the payment is still recorded on the transaction side
// but no member is credited; the gap is logged.
//
// Over-allocation past the transaction's remaining amount is not rejected;
// callers observe it through the returned Remaining.
func (s *SettlementService) ApplyTransaction(ctx context.Context, requesterID, billID, txID string, amount decimal.Decimal) (*ApplyResult, error) {
	if !amount.IsPositive() {
		return nil, errs.Invalid("amount_applied must be positive, got %s", amount)
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.CreatedBy != requesterID {
		return nil, errs.Unauthorized("only the bill creator may apply payments to bill %s", billID)
	}

	tx, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}

	// Resolve the credited member through the confirmed association.
	creditUserID := ""
	assoc, err := s.store.GetAssociationByTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	switch {
	case assoc == nil:
		slog.Warn("Payment applied without a counterparty association; no member credited",
			"bill_id", billID,
			"transaction_id", txID,
		)
	case !isMember(bill, assoc.FriendID):
		slog.Warn("Associated friend is not a member of the bill; no member credited",
			"bill_id", billID,
			"transaction_id", txID,
			"friend_id", assoc.FriendID,
		)
	default:
		creditUserID = assoc.FriendID
	}

	link := &models.BillTransaction{
		BillID:        billID,
		TransactionID: txID,
		AmountApplied: amount,
	}
	if err := s.store.ApplyBillTransaction(ctx, link, creditUserID); err != nil {
		return nil, err
	}
	s.hooks.paymentApplied(billID, txID, amount)

	result := &ApplyResult{MemberID: creditUserID}

	if creditUserID != "" {
		member, err := s.store.GetBillMember(ctx, billID, creditUserID)
		if err != nil {
			return nil, err
		}
		result.NewPaid = member.Paid
		result.NewOutstanding = calculator.Outstanding(*member)
	}

	// Derived state, recomputed fresh from child rows.
	applications, err := s.store.ListTransactionApplications(ctx, txID)
	if err != nil {
		return nil, err
	}
	result.Remaining = calculator.Remaining(tx.Amount, applications)

	updated, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	wasSettled := calculator.BillSettled(bill.Members)
	result.BillSettled = calculator.BillSettled(updated.Members)
	if result.BillSettled && !wasSettled {
		slog.Info("Bill settled", "bill_id", billID)
		s.hooks.billSettled(billID)
	}

	slog.Info("Payment applied",
		"bill_id", billID,
		"transaction_id", txID,
		"amount", amount,
		"member_id", creditUserID,
		"remaining", result.Remaining,
	)
	return result, nil
}

func isMember(bill *models.Bill, userID string) bool {
	for _, m := range bill.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
