package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Group describes a tracked chat.
type Group struct {
	ChatID   int64
	Title    string
	Username string
	Type     string
	IsActive bool
	AddedAt  time.Time
}

// RegisterGroup upserts a group record, refreshing title/username/type on
// every call so renames are picked up.
func (db *DB) RegisterGroup(ctx context.Context, chatID int64, title, username, chatType string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO groups (chat_id, title, username, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id) DO UPDATE SET
			title = excluded.title,
			username = excluded.username,
			type = excluded.type
	`, chatID, toText(title), toText(username), toText(chatType))
	if err != nil {
		return fmt.Errorf("register group: %w", err)
	}

	return nil
}

// ActivateGroup marks a group as tracked again.
func (db *DB) ActivateGroup(ctx context.Context, chatID int64) error {
	if _, err := db.Pool.Exec(ctx, "UPDATE groups SET is_active = TRUE WHERE chat_id = $1", chatID); err != nil {
		return fmt.Errorf("activate group: %w", err)
	}

	return nil
}

// DeactivateGroup marks a group as no longer tracked (bot removed or kicked).
func (db *DB) DeactivateGroup(ctx context.Context, chatID int64) error {
	if _, err := db.Pool.Exec(ctx, "UPDATE groups SET is_active = FALSE WHERE chat_id = $1", chatID); err != nil {
		return fmt.Errorf("deactivate group: %w", err)
	}

	return nil
}

// FindGroupByTitle resolves a group by its title or username,
// case-insensitively. Returns nil when no group matches.
func (db *DB) FindGroupByTitle(ctx context.Context, query string) (*Group, error) {
	lowered := strings.ToLower(strings.TrimSpace(query))
	username := strings.TrimPrefix(lowered, "@")

	row := db.Pool.QueryRow(ctx, `
		SELECT chat_id, title, username, type, is_active, added_at
		FROM groups
		WHERE lower(title) = $1 OR lower(username) = $2
	`, lowered, username)

	group, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("find group by title: %w", err)
	}

	return group, nil
}

// GetGroupTitle returns the stored title for a chat, or "" when unknown.
func (db *DB) GetGroupTitle(ctx context.Context, chatID int64) (string, error) {
	var title pgtype.Text

	err := db.Pool.QueryRow(ctx, "SELECT title FROM groups WHERE chat_id = $1", chatID).Scan(&title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("get group title: %w", err)
	}

	return fromText(title), nil
}

// ListGroups returns all known groups, newest first.
func (db *DB) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT chat_id, title, username, type, is_active, added_at
		FROM groups
		ORDER BY added_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []Group

	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}

		groups = append(groups, *group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}

// ActiveGroupIDs returns the chat ids of all actively tracked groups.
func (db *DB) ActiveGroupIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.Pool.Query(ctx, "SELECT chat_id FROM groups WHERE is_active")
	if err != nil {
		return nil, fmt.Errorf("query active group ids: %w", err)
	}
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group ids: %w", err)
	}

	return ids, nil
}

// SetLastProcessedMessage records the newest message id that produced stored
// entries for a chat; backfill jobs use it as a resume point.
func (db *DB) SetLastProcessedMessage(ctx context.Context, chatID, messageID int64) error {
	if _, err := db.Pool.Exec(ctx, "UPDATE groups SET last_processed_message_id = $1 WHERE chat_id = $2", messageID, chatID); err != nil {
		return fmt.Errorf("set last processed message: %w", err)
	}

	return nil
}

func scanGroup(row pgx.Row) (*Group, error) {
	var (
		group    Group
		title    pgtype.Text
		username pgtype.Text
		chatType pgtype.Text
		addedAt  pgtype.Timestamptz
	)

	if err := row.Scan(&group.ChatID, &title, &username, &chatType, &group.IsActive, &addedAt); err != nil {
		return nil, err
	}

	group.Title = fromText(title)
	group.Username = fromText(username)
	group.Type = fromText(chatType)
	group.AddedAt = fromTimestamptz(addedAt)

	return &group, nil
}
