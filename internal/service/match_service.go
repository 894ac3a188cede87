package service

import (
	"context"
	"log/slog"

	"github.com/finsoc/splitledger/internal/errs"
	"github.com/finsoc/splitledger/internal/matcher"
	"github.com/finsoc/splitledger/internal/models"
	"github.com/finsoc/splitledger/internal/storage"
)

// MatchService implements the counterparty matcher and the association store:
// fuzzy suggestions over the requester's own transactions, and confirmed
// at-most-one transaction → friend links.
type MatchService struct {
	store storage.Store
}

// NewMatchService creates a new MatchService with the given storage backend.
func NewMatchService(store storage.Store) *MatchService {
	return &MatchService{store: store}
}

// SuggestCounterparties returns ranked fuzzy matches for the transaction's
// description among the requester's other transactions. Pure read: nothing is
// persisted. Pass threshold/limit <= 0 for the defaults (85, 20).
func (s *MatchService) SuggestCounterparties(ctx context.Context, requesterID, txID string, threshold, limit int) ([]matcher.Match, error) {
	base, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if base.OwnerID != requesterID {
		return nil, errs.Unauthorized("transaction %s does not belong to the requester", txID)
	}

	// The candidate pool is the owner's own history, capped for performance.
	candidates, err := s.store.ListTransactionsByOwner(ctx, base.OwnerID, matcher.MaxScan)
	if err != nil {
		return nil, err
	}

	matches := matcher.Suggest(*base, candidates, threshold, limit)
	slog.Debug("Counterparty suggestions computed",
		"transaction_id", txID,
		"candidates", len(candidates),
		"matches", len(matches),
	)
	return matches, nil
}

// AssociateCounterparty records a confirmed transaction → friend association.
// The transaction must belong to the requester and the friend must be in the
// requester's friend set. A transaction can hold at most one association; a
// second call conflicts, naming the existing counterparty.
func (s *MatchService) AssociateCounterparty(ctx context.Context, requesterID, txID, friendID string, confidence float64) (*models.TransactionFriend, error) {
	if confidence < 0 || confidence > 1 {
		return nil, errs.Invalid("confidence must be in [0, 1], got %v", confidence)
	}

	tx, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.OwnerID != requesterID {
		return nil, errs.Unauthorized("transaction %s does not belong to the requester", txID)
	}

	isFriend, err := s.store.IsFriend(ctx, requesterID, friendID)
	if err != nil {
		return nil, err
	}
	if !isFriend {
		return nil, errs.Unauthorized("user %s is not in the requester's friend set", friendID)
	}

	assoc := &models.TransactionFriend{
		TransactionID: txID,
		FriendID:      friendID,
		Confidence:    confidence,
	}
	if err := s.store.CreateAssociation(ctx, assoc); err != nil {
		return nil, err
	}

	slog.Info("Counterparty associated",
		"transaction_id", txID,
		"friend_id", friendID,
		"confidence", confidence,
	)
	return assoc, nil
}
