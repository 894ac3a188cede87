package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/finsoc/splitledger/internal/errs"
	"github.com/finsoc/splitledger/internal/models"
)

// ApplyBillTransaction inserts a bill-transaction link and, when creditUserID
// is non-empty, advances that member's paid amount, all inside one write
// transaction. SQLite serializes write transactions, so the read-modify-write
// on paid cannot race with another apply against the same member.
func (s *SQLiteStore) ApplyBillTransaction(ctx context.Context, link *models.BillTransaction, creditUserID string) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// A transaction may be applied to a bill at most once.
	var existingID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM bill_transactions WHERE bill_id = ? AND transaction_id = ?",
		link.BillID, link.TransactionID,
	).Scan(&existingID)
	if err == nil {
		return errs.Conflict(existingID,
			"transaction %s is already applied to bill %s", link.TransactionID, link.BillID)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing link: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bill_transactions (id, bill_id, transaction_id, amount_applied) VALUES (?, ?, ?, ?)",
		link.ID, link.BillID, link.TransactionID, link.AmountApplied.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill transaction: %w", err)
	}

	if creditUserID != "" {
		var paidRaw string
		err = tx.QueryRowContext(ctx,
			"SELECT paid FROM bill_members WHERE bill_id = ? AND user_id = ?",
			link.BillID, creditUserID,
		).Scan(&paidRaw)
		if err == sql.ErrNoRows {
			return errs.NotFound("bill member", creditUserID)
		}
		if err != nil {
			return fmt.Errorf("failed to read member paid: %w", err)
		}

		paid, err := parseAmount(paidRaw)
		if err != nil {
			return err
		}
		newPaid := paid.Add(link.AmountApplied)

		_, err = tx.ExecContext(ctx,
			"UPDATE bill_members SET paid = ? WHERE bill_id = ? AND user_id = ?",
			newPaid.String(), link.BillID, creditUserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update member paid: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bill transaction: %w", err)
	}
	return nil
}

// ListBillTransactions returns the links attached to one bill.
func (s *SQLiteStore) ListBillTransactions(ctx context.Context, billID string) ([]models.BillTransaction, error) {
	return s.listLinks(ctx,
		"SELECT id, bill_id, transaction_id, amount_applied FROM bill_transactions WHERE bill_id = ? ORDER BY id",
		billID)
}

// ListTransactionApplications returns every link referencing the transaction
// across all bills.
func (s *SQLiteStore) ListTransactionApplications(ctx context.Context, txID string) ([]models.BillTransaction, error) {
	return s.listLinks(ctx,
		"SELECT id, bill_id, transaction_id, amount_applied FROM bill_transactions WHERE transaction_id = ? ORDER BY id",
		txID)
}

func (s *SQLiteStore) listLinks(ctx context.Context, query, id string) ([]models.BillTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query bill transactions: %w", err)
	}
	defer rows.Close()

	var links []models.BillTransaction
	for rows.Next() {
		var link models.BillTransaction
		var amount string
		if err := rows.Scan(&link.ID, &link.BillID, &link.TransactionID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan bill transaction: %w", err)
		}
		if link.AmountApplied, err = parseAmount(amount); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill transactions: %w", err)
	}
	return links, nil
}
