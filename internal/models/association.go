package models

// TransactionFriend is a confirmed association between a transaction and the
// friend who is its likely payer or recipient. At most one association exists
// per transaction; a second confirmation is a conflict, not an overwrite.
type TransactionFriend struct {
	// ID is the unique identifier for the association (UUID format).
	ID string

	// TransactionID is the associated transaction. Unique across all rows.
	TransactionID string

	// FriendID is the counterparty.
	FriendID string

	// Confidence is the match confidence in [0, 1]. Manual confirmations
	// default to 1.0; matcher-driven ones carry the suggestion score.
	Confidence float64
}
