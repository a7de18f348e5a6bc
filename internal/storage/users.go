package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// BotUser is someone who has interacted with the bot in private or inline
// mode. Group members who only write messages are never recorded here.
type BotUser struct {
	UserID        int64
	Username      string
	FirstName     string
	LastName      string
	RequestCount  int64
	Blocked       bool
	LastRequestAt time.Time
}

// EnsureUser upserts the user profile, refreshing name fields on every call.
func (db *DB) EnsureUser(ctx context.Context, userID int64, username, firstName, lastName string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO users (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name
	`, userID, toText(username), toText(firstName), toText(lastName))
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	return nil
}

// SetUserBlocked toggles the block flag for a user.
func (db *DB) SetUserBlocked(ctx context.Context, userID int64, blocked bool) error {
	if _, err := db.Pool.Exec(ctx, "UPDATE users SET blocked = $1 WHERE user_id = $2", blocked, userID); err != nil {
		return fmt.Errorf("set user blocked: %w", err)
	}

	return nil
}

// IsUserBlocked reports whether the user is blocked. Unknown users are not
// blocked.
func (db *DB) IsUserBlocked(ctx context.Context, userID int64) (bool, error) {
	var blocked bool

	err := db.Pool.QueryRow(ctx, "SELECT blocked FROM users WHERE user_id = $1", userID).Scan(&blocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("is user blocked: %w", err)
	}

	return blocked, nil
}

// IncrementUserRequests bumps the per-user request counter and stamps the
// time of the last request.
func (db *DB) IncrementUserRequests(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE users SET request_count = request_count + 1, last_request_at = now()
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("increment user requests: %w", err)
	}

	return nil
}

// TopUsers returns the heaviest users of the bot ordered by request count.
func (db *DB) TopUsers(ctx context.Context, limit int) ([]BotUser, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT user_id, username, first_name, last_name, request_count, blocked, last_request_at
		FROM users
		ORDER BY request_count DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top users: %w", err)
	}
	defer rows.Close()

	var users []BotUser

	for rows.Next() {
		var (
			user          BotUser
			username      pgtype.Text
			firstName     pgtype.Text
			lastName      pgtype.Text
			lastRequestAt pgtype.Timestamptz
		)

		if err := rows.Scan(&user.UserID, &username, &firstName, &lastName, &user.RequestCount, &user.Blocked, &lastRequestAt); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}

		user.Username = fromText(username)
		user.FirstName = fromText(firstName)
		user.LastName = fromText(lastName)
		user.LastRequestAt = fromTimestamptz(lastRequestAt)

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// ActiveUserIDs returns ids of all non-blocked users, used as the broadcast
// audience.
func (db *DB) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.Pool.Query(ctx, "SELECT user_id FROM users WHERE NOT blocked")
	if err != nil {
		return nil, fmt.Errorf("query active user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}

	return ids, nil
}
