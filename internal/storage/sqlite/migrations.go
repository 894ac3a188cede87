package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: users and transactions must be created BEFORE the bill tables
// due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS friends (
    user_id TEXT NOT NULL,
    friend_id TEXT NOT NULL,
    PRIMARY KEY (user_id, friend_id),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    FOREIGN KEY (friend_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    date TEXT NOT NULL,
    amount TEXT NOT NULL,
    category TEXT NOT NULL,
    type TEXT NOT NULL,
    transfer_direction TEXT,
    description TEXT,
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transaction_friends (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL UNIQUE,
    friend_id TEXT NOT NULL,
    confidence REAL NOT NULL,
    FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE,
    FOREIGN KEY (friend_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    created_by TEXT NOT NULL,
    description TEXT,
    date TEXT NOT NULL,
    total TEXT NOT NULL,
    FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_members (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    share TEXT NOT NULL,
    paid TEXT NOT NULL,
    UNIQUE (bill_id, user_id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_transactions (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    transaction_id TEXT NOT NULL,
    amount_applied TEXT NOT NULL,
    UNIQUE (bill_id, transaction_id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE,
    FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_friends_friend_id ON friends(friend_id);
CREATE INDEX IF NOT EXISTS idx_transactions_owner_id ON transactions(owner_id);
CREATE INDEX IF NOT EXISTS idx_bill_members_bill_id ON bill_members(bill_id);
CREATE INDEX IF NOT EXISTS idx_bill_members_user_id ON bill_members(user_id);
CREATE INDEX IF NOT EXISTS idx_bill_transactions_bill_id ON bill_transactions(bill_id);
CREATE INDEX IF NOT EXISTS idx_bill_transactions_transaction_id ON bill_transactions(transaction_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
