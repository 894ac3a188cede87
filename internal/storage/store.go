// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/finsoc/splitledger/internal/models"
)

// Store defines the persistence operations of the settlement core.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Store also fronts the two external collaborators the core reads from: the
// transaction ledger (read-by-id, read-list-by-owner) and the friend graph
// (IsFriend plus the two adjacency views). Their write methods exist so the
// owning systems, and tests, can seed rows; the core itself never calls them.
//
// Implementations return the errs taxonomy: NotFoundError for missing rows
// and ConflictError for uniqueness violations.
type Store interface {
	// CreateUser persists a new user, generating an ID if unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// AddFriend records the directed edge userID → friendID.
	AddFriend(ctx context.Context, userID, friendID string) error

	// IsFriend reports whether friendID is in userID's friend set.
	IsFriend(ctx context.Context, userID, friendID string) (bool, error)

	// ListFriends returns the IDs userID has friended ("friends of X").
	ListFriends(ctx context.Context, userID string) ([]string, error)

	// ListFriendedBy returns the IDs that friended userID ("friended-by X").
	ListFriendedBy(ctx context.Context, userID string) ([]string, error)

	// CreateTransaction persists a ledger transaction.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves a transaction by ID.
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)

	// ListTransactionsByOwner returns the owner's transactions, newest first,
	// capped at limit (0 means no cap).
	ListTransactionsByOwner(ctx context.Context, ownerID string, limit int) ([]models.Transaction, error)

	// CreateAssociation records a transaction → friend association. Returns a
	// ConflictError naming the existing friend if the transaction is already
	// associated.
	CreateAssociation(ctx context.Context, assoc *models.TransactionFriend) error

	// GetAssociationByTransaction returns the transaction's confirmed
	// association, or (nil, nil) when none exists.
	GetAssociationByTransaction(ctx context.Context, txID string) (*models.TransactionFriend, error)

	// CreateBill persists a bill together with all of its members as a single
	// atomic unit. IDs and the date are populated when unset.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill with its members.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBillsForUser returns the bills where the user is creator or member,
	// newest first.
	ListBillsForUser(ctx context.Context, userID string) ([]models.Bill, error)

	// DeleteBill removes a bill, cascading to its members and
	// bill-transaction links. Underlying transactions are untouched.
	DeleteBill(ctx context.Context, billID string) error

	// ApplyBillTransaction inserts a bill-transaction link and, when
	// creditUserID is non-empty, atomically increments that member's paid
	// amount, all in one transaction. Returns a ConflictError if the
	// transaction is already linked to the bill.
	ApplyBillTransaction(ctx context.Context, link *models.BillTransaction, creditUserID string) error

	// GetBillMember retrieves one member row of a bill.
	GetBillMember(ctx context.Context, billID, userID string) (*models.BillMember, error)

	// ListBillTransactions returns the links attached to one bill.
	ListBillTransactions(ctx context.Context, billID string) ([]models.BillTransaction, error)

	// ListTransactionApplications returns every link referencing the
	// transaction across all bills, for computing its remaining amount.
	ListTransactionApplications(ctx context.Context, txID string) ([]models.BillTransaction, error)

	// Close releases any resources held by the store.
	Close() error
}
