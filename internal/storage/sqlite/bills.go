package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsoc/splitledger/internal/errs"
	"github.com/finsoc/splitledger/internal/models"
)

// CreateBill persists a bill together with all of its members as a single
// atomic unit. Any failure rolls the whole bill back; there is no
// partially-created bill.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.Date.IsZero() {
		bill.Date = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, created_by, description, date, total) VALUES (?, ?, ?, ?, ?)",
		bill.ID, bill.CreatedBy, bill.Description, bill.Date.Format(dateFormat), bill.Total.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range bill.Members {
		member := &bill.Members[i]
		if member.ID == "" {
			member.ID = uuid.New().String()
		}
		member.BillID = bill.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO bill_members (id, bill_id, user_id, share, paid) VALUES (?, ?, ?, ?, ?)",
			member.ID, member.BillID, member.UserID, member.Share.String(), member.Paid.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill with its members.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var (
		desc  sql.NullString
		date  string
		total string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, created_by, description, date, total FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.CreatedBy, &desc, &date, &total)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("bill", billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if desc.Valid {
		bill.Description = desc.String
	}
	if bill.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if bill.Total, err = parseAmount(total); err != nil {
		return nil, err
	}

	if bill.Members, err = s.listBillMembers(ctx, billID); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBillsForUser returns the bills where the user is creator or member,
// newest first. Members are loaded for each bill so callers can derive
// settlement state.
func (s *SQLiteStore) ListBillsForUser(ctx context.Context, userID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT b.id FROM bills b
		 LEFT JOIN bill_members m ON m.bill_id = b.id
		 WHERE b.created_by = ? OR m.user_id = ?
		 ORDER BY b.date DESC, b.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	bills := make([]models.Bill, 0, len(ids))
	for _, id := range ids {
		bill, err := s.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}
	return bills, nil
}

// DeleteBill removes a bill. Members and bill-transaction links cascade via
// foreign keys; underlying transactions are untouched.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return errs.NotFound("bill", billID)
	}
	return nil
}

// GetBillMember retrieves one member row of a bill.
func (s *SQLiteStore) GetBillMember(ctx context.Context, billID, userID string) (*models.BillMember, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, bill_id, user_id, share, paid FROM bill_members WHERE bill_id = ? AND user_id = ?",
		billID, userID,
	)
	member, err := scanBillMember(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("bill member", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill member: %w", err)
	}
	return member, nil
}

func (s *SQLiteStore) listBillMembers(ctx context.Context, billID string) ([]models.BillMember, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, bill_id, user_id, share, paid FROM bill_members WHERE bill_id = ? ORDER BY user_id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bill members: %w", err)
	}
	defer rows.Close()

	var members []models.BillMember
	for rows.Next() {
		member, err := scanBillMember(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill member: %w", err)
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill members: %w", err)
	}
	return members, nil
}

func scanBillMember(scan func(...any) error) (*models.BillMember, error) {
	member := &models.BillMember{}
	var share, paid string
	if err := scan(&member.ID, &member.BillID, &member.UserID, &share, &paid); err != nil {
		return nil, err
	}

	var err error
	if member.Share, err = parseAmount(share); err != nil {
		return nil, err
	}
	if member.Paid, err = parseAmount(paid); err != nil {
		return nil, err
	}
	return member, nil
}
