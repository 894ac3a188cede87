package models

// User represents an account. Accounts, credentials, and sessions are managed
// by the external auth system; this core keeps user rows only for referential
// integrity and friend-graph lookups.
//
// The friend relation is a directed edge set between users with two adjacency
// views: "friends of X" (edges out of X) and "friended-by X" (edges into X).
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the display name, unique.
	Username string

	// Email is the user's email address, unique.
	Email string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}
