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

// maxDescriptionLen caps a bill's defaulted description.
const maxDescriptionLen = 240

// BillService implements the bill allocator: grouping a creator's
// transactions into a bill split equally among the creator and a set of
// friends.
type BillService struct {
	store storage.Store
	hooks Hooks
}

// NewBillService creates a new BillService with the given storage backend.
func NewBillService(store storage.Store, hooks Hooks) *BillService {
	return &BillService{store: store, hooks: hooks}
}

// CreateBill creates a bill from the creator's selected transactions, split
// equally among {creator} ∪ members.
//
// Every transaction must exist and belong to the creator; every member must
// exist and be in the creator's friend set. The per-head share is the total
// divided by the member count, rounded half-up to the cent, so the shares may
// overshoot the total by up to members-1 cents. The creator's own share is
// seeded as already paid: they covered the original transactions.
//
// The bill and all member rows persist as one atomic unit; any validation
// failure aborts with no partial writes.
func (s *BillService) CreateBill(ctx context.Context, creatorID string, transactionIDs, memberIDs []string, description string) (*models.Bill, error) {
	if len(transactionIDs) == 0 {
		return nil, errs.Invalid("at least one transaction is required")
	}

	// Authorization boundary: a user can only allocate their own money.
	amounts := make([]decimal.Decimal, 0, len(transactionIDs))
	var firstDescription string
	seenTx := make(map[string]bool, len(transactionIDs))
	for _, txID := range transactionIDs {
		if seenTx[txID] {
			return nil, errs.Invalid("transaction %s selected more than once", txID)
		}
		seenTx[txID] = true

		tx, err := s.store.GetTransaction(ctx, txID)
		if err != nil {
			return nil, err
		}
		if tx.OwnerID != creatorID {
			return nil, errs.Unauthorized("transaction %s does not belong to the creator", txID)
		}
		if firstDescription == "" {
			firstDescription = tx.Description
		}
		amounts = append(amounts, tx.Amount)
	}

	// Trust boundary: members must be the creator's friends.
	memberSet := []string{creatorID}
	seen := map[string]bool{creatorID: true}
	for _, memberID := range memberIDs {
		if seen[memberID] {
			continue
		}
		seen[memberID] = true

		if _, err := s.store.GetUser(ctx, memberID); err != nil {
			return nil, err
		}
		isFriend, err := s.store.IsFriend(ctx, creatorID, memberID)
		if err != nil {
			return nil, err
		}
		if !isFriend {
			return nil, errs.Unauthorized("user %s is not in the creator's friend set", memberID)
		}
		memberSet = append(memberSet, memberID)
	}

	total := calculator.SumAmounts(amounts)
	perHead, err := calculator.EqualShare(total, len(memberSet))
	if err != nil {
		return nil, errs.Invalid("%v", err)
	}

	if description == "" {
		description = truncate(firstDescription, maxDescriptionLen)
	}

	bill := &models.Bill{
		CreatedBy:   creatorID,
		Description: description,
		Total:       total,
	}
	for _, userID := range memberSet {
		paid := decimal.Zero
		if userID == creatorID {
			paid = perHead
		}
		bill.Members = append(bill.Members, models.BillMember{
			UserID: userID,
			Share:  perHead,
			Paid:   paid,
		})
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "creator_id", creatorID, "error", err)
		return nil, err
	}

	slog.Info("Bill created",
		"bill_id", bill.ID,
		"creator_id", creatorID,
		"total", total,
		"members", len(memberSet),
		"per_head", perHead,
	)
	s.hooks.billCreated(bill)
	return bill, nil
}

// GetBill retrieves a bill. Visible only to the creator and its members.
func (s *BillService) GetBill(ctx context.Context, requesterID, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if !canView(bill, requesterID) {
		return nil, errs.Unauthorized("bill %s is not visible to the requester", billID)
	}
	return bill, nil
}

// ListBills returns the bills where the requester is creator or member,
// newest first.
func (s *BillService) ListBills(ctx context.Context, requesterID string) ([]models.Bill, error) {
	return s.store.ListBillsForUser(ctx, requesterID)
}

// DeleteBill deletes a bill. Only the creator may delete; the delete cascades
// to members and bill-transaction links but never touches the transaction
// ledger.
func (s *BillService) DeleteBill(ctx context.Context, requesterID, billID string) error {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return err
	}
	if bill.CreatedBy != requesterID {
		return errs.Unauthorized("only the bill creator may delete bill %s", billID)
	}

	if err := s.store.DeleteBill(ctx, billID); err != nil {
		slog.Error("DeleteBill failed", "bill_id", billID, "error", err)
		return err
	}
	slog.Info("Bill deleted", "bill_id", billID, "creator_id", requesterID)
	return nil
}

func canView(bill *models.Bill, userID string) bool {
	if bill.CreatedBy == userID {
		return true
	}
	for _, m := range bill.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
