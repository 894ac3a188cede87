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

// CreateUser persists a new user to the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, created_at FROM users WHERE id = ?",
		userID,
	).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// AddFriend records the directed edge userID → friendID. Adding an existing
// edge is a no-op.
func (s *SQLiteStore) AddFriend(ctx context.Context, userID, friendID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO friends (user_id, friend_id) VALUES (?, ?)",
		userID, friendID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friend edge: %w", err)
	}
	return nil
}

// IsFriend reports whether friendID is in userID's friend set.
func (s *SQLiteStore) IsFriend(ctx context.Context, userID, friendID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM friends WHERE user_id = ? AND friend_id = ?",
		userID, friendID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query friend edge: %w", err)
	}
	return n > 0, nil
}

// ListFriends returns the IDs userID has friended.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID string) ([]string, error) {
	return s.listEdges(ctx,
		"SELECT friend_id FROM friends WHERE user_id = ? ORDER BY friend_id", userID)
}

// ListFriendedBy returns the IDs that friended userID.
func (s *SQLiteStore) ListFriendedBy(ctx context.Context, userID string) ([]string, error) {
	return s.listEdges(ctx,
		"SELECT user_id FROM friends WHERE friend_id = ? ORDER BY user_id", userID)
}

func (s *SQLiteStore) listEdges(ctx context.Context, query, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend edges: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var other string
		if err := rows.Scan(&other); err != nil {
			return nil, fmt.Errorf("failed to scan friend edge: %w", err)
		}
		ids = append(ids, other)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend edges: %w", err)
	}
	return ids, nil
}
