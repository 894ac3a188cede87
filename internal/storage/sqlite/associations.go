package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/finsoc/splitledger/internal/errs"
	"github.com/finsoc/splitledger/internal/models"
)

// CreateAssociation records a transaction → friend association. The existence
// check and insert run in one transaction so two concurrent confirmations
// cannot both succeed; the loser gets a ConflictError naming the winner.
func (s *SQLiteStore) CreateAssociation(ctx context.Context, assoc *models.TransactionFriend) error {
	if assoc.ID == "" {
		assoc.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingFriend string
	err = tx.QueryRowContext(ctx,
		"SELECT friend_id FROM transaction_friends WHERE transaction_id = ?",
		assoc.TransactionID,
	).Scan(&existingFriend)
	if err == nil {
		return errs.Conflict(existingFriend,
			"transaction %s is already associated with friend %s", assoc.TransactionID, existingFriend)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing association: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO transaction_friends (id, transaction_id, friend_id, confidence) VALUES (?, ?, ?, ?)",
		assoc.ID, assoc.TransactionID, assoc.FriendID, assoc.Confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to insert association: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit association: %w", err)
	}
	return nil
}

// GetAssociationByTransaction returns the transaction's confirmed association,
// or (nil, nil) when none exists. A missing association is an expected state
// during settlement, not an error.
func (s *SQLiteStore) GetAssociationByTransaction(ctx context.Context, txID string) (*models.TransactionFriend, error) {
	assoc := &models.TransactionFriend{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, transaction_id, friend_id, confidence FROM transaction_friends WHERE transaction_id = ?",
		txID,
	).Scan(&assoc.ID, &assoc.TransactionID, &assoc.FriendID, &assoc.Confidence)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get association: %w", err)
	}
	return assoc, nil
}
