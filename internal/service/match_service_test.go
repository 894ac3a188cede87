package service

import (
	"context"
	"errors"
	"testing"

	"github.com/finsoc/splitledger/internal/errs"
)

func TestMatchService_SuggestCounterparties(t *testing.T) {
	store := setupTestStore(t)
	svc := NewMatchService(store)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	mallory := seedUser(t, store, "mallory")

	base := seedTransaction(t, store, alice, "90.00", "Transfer from Bob rent")
	match := seedTransfer(t, store, alice, "30.00", "transfer from bob rent")
	seedTransfer(t, store, alice, "12.00", "woolworths groceries")
	foreign := seedTransfer(t, store, mallory, "30.00", "transfer from bob rent")

	t.Run("ranked matches over own transactions only", func(t *testing.T) {
		matches, err := svc.SuggestCounterparties(ctx, alice, base, 85, 20)
		if err != nil {
			t.Fatalf("SuggestCounterparties failed: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Transaction.ID != match {
			t.Errorf("matched %s, want %s", matches[0].Transaction.ID, match)
		}
		if matches[0].Transaction.ID == foreign {
			t.Error("matched another user's transaction")
		}
	})

	t.Run("foreign base transaction denied", func(t *testing.T) {
		_, err := svc.SuggestCounterparties(ctx, alice, foreign, 85, 20)
		var ae *errs.AuthorizationError
		if !errors.As(err, &ae) {
			t.Errorf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("missing base transaction", func(t *testing.T) {
		_, err := svc.SuggestCounterparties(ctx, alice, "nonexistent", 85, 20)
		var nf *errs.NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestMatchService_AssociateCounterparty(t *testing.T) {
	store := setupTestStore(t)
	svc := NewMatchService(store)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	carol := seedUser(t, store, "carol")
	stranger := seedUser(t, store, "stranger")
	seedFriendship(t, store, alice, bob)
	seedFriendship(t, store, alice, carol)

	txID := seedTransfer(t, store, alice, "30.00", "Transfer from Bob")

	t.Run("happy path with explicit confidence", func(t *testing.T) {
		assoc, err := svc.AssociateCounterparty(ctx, alice, txID, bob, 0.92)
		if err != nil {
			t.Fatalf("AssociateCounterparty failed: %v", err)
		}
		if assoc.FriendID != bob || assoc.Confidence != 0.92 {
			t.Errorf("assoc = %+v", assoc)
		}
	})

	t.Run("second association conflicts, names existing friend, no overwrite", func(t *testing.T) {
		_, err := svc.AssociateCounterparty(ctx, alice, txID, carol, 1.0)
		var conflict *errs.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if conflict.ExistingID != bob {
			t.Errorf("ExistingID = %s, want %s", conflict.ExistingID, bob)
		}

		assoc, err := store.GetAssociationByTransaction(ctx, txID)
		if err != nil {
			t.Fatalf("GetAssociationByTransaction failed: %v", err)
		}
		if assoc.FriendID != bob {
			t.Errorf("association overwritten to %s", assoc.FriendID)
		}
	})

	t.Run("non-friend denied", func(t *testing.T) {
		other := seedTransfer(t, store, alice, "10.00", "Transfer")
		_, err := svc.AssociateCounterparty(ctx, alice, other, stranger, 1.0)
		var ae *errs.AuthorizationError
		if !errors.As(err, &ae) {
			t.Errorf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("foreign transaction denied", func(t *testing.T) {
		foreign := seedTransfer(t, store, stranger, "10.00", "Transfer")
		_, err := svc.AssociateCounterparty(ctx, alice, foreign, bob, 1.0)
		var ae *errs.AuthorizationError
		if !errors.As(err, &ae) {
			t.Errorf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("confidence out of range", func(t *testing.T) {
		other := seedTransfer(t, store, alice, "10.00", "Transfer")
		_, err := svc.AssociateCounterparty(ctx, alice, other, bob, 1.5)
		var ve *errs.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}
