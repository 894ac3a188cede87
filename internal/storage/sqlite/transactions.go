package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/finsoc/splitledger/internal/errs"
	"github.com/finsoc/splitledger/internal/models"
)

// CreateTransaction persists a ledger transaction. The core treats
// transactions as read-only; this is the ingest path used by the owning
// system and by tests.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Amount.IsNegative() {
		return errs.Invalid("transaction amount cannot be negative")
	}

	var direction any
	if tx.Direction != "" {
		direction = string(tx.Direction)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, date, amount, category, type, transfer_direction, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, tx.Date.Format(dateFormat), tx.Amount.String(),
		tx.Category, string(tx.Type), direction, tx.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, date, amount, category, type, transfer_direction, description
		 FROM transactions WHERE id = ?`,
		txID,
	)
	tx, err := scanTransaction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("transaction", txID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactionsByOwner returns the owner's transactions, newest first,
// capped at limit (0 means no cap).
func (s *SQLiteStore) ListTransactionsByOwner(ctx context.Context, ownerID string, limit int) ([]models.Transaction, error) {
	query := `SELECT id, owner_id, date, amount, category, type, transfer_direction, description
	          FROM transactions WHERE owner_id = ? ORDER BY date DESC, id`
	args := []any{ownerID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

// scanTransaction reads one transaction row through the given Scan func.
func scanTransaction(scan func(...any) error) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var (
		date      string
		amount    string
		txType    string
		direction sql.NullString
		desc      sql.NullString
	)
	if err := scan(&tx.ID, &tx.OwnerID, &date, &amount, &tx.Category, &txType, &direction, &desc); err != nil {
		return nil, err
	}

	var err error
	if tx.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if tx.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	tx.Type = models.TransactionType(txType)
	if direction.Valid {
		tx.Direction = models.TransferDirection(direction.String)
	}
	if desc.Valid {
		tx.Description = desc.String
	}
	return tx, nil
}
