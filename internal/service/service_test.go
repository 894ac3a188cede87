package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsoc/splitledger/internal/models"
	"github.com/finsoc/splitledger/internal/storage/sqlite"
)

// setupTestStore creates a temp SQLite database for service tests.
func setupTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedUser(t *testing.T, store *sqlite.SQLiteStore, username string) string {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user.ID
}

func seedFriendship(t *testing.T, store *sqlite.SQLiteStore, userID, friendID string) {
	t.Helper()
	if err := store.AddFriend(context.Background(), userID, friendID); err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
}

func seedTransaction(t *testing.T, store *sqlite.SQLiteStore, ownerID, amount, desc string) string {
	t.Helper()
	tx := &models.Transaction{
		OwnerID:     ownerID,
		Date:        time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC),
		Amount:      dec(amount),
		Category:    "shared",
		Type:        models.TypeExpense,
		Description: desc,
	}
	if err := store.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	return tx.ID
}

func seedTransfer(t *testing.T, store *sqlite.SQLiteStore, ownerID, amount, desc string) string {
	t.Helper()
	tx := &models.Transaction{
		OwnerID:     ownerID,
		Date:        time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC),
		Amount:      dec(amount),
		Category:    "transfer",
		Type:        models.TypeTransfer,
		Direction:   models.TransferIn,
		Description: desc,
	}
	if err := store.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	return tx.ID
}
