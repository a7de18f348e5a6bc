package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// RequestRecord is a single logged lookup. ChatID is the group the lookup
// was scoped to, nil for global lookups.
type RequestRecord struct {
	ID        int64
	UserID    int64
	Username  string
	Target    string
	ChatID    *int64
	Source    string
	CreatedAt time.Time
}

// Request sources.
const (
	RequestSourceCommand = "command"
	RequestSourceInline  = "inline"
	RequestSourceMenu    = "menu"
)

// LogRequest appends a lookup to the audit log.
func (db *DB) LogRequest(ctx context.Context, userID int64, username, target string, chatID *int64, source string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO requests_log (user_id, username, target, chat_id, source)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, toText(username), target, chatID, source)
	if err != nil {
		return fmt.Errorf("log request: %w", err)
	}

	return nil
}

// CountRequestsSince counts lookups made at or after the given time.
func (db *DB) CountRequestsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64

	err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM requests_log WHERE created_at >= $1", toTimestamptz(since)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count requests since: %w", err)
	}

	return count, nil
}

// RecentRequests returns the newest lookups, most recent first.
func (db *DB) RecentRequests(ctx context.Context, since time.Time, limit int) ([]RequestRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, username, target, chat_id, source, created_at
		FROM requests_log
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, toTimestamptz(since), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent requests: %w", err)
	}
	defer rows.Close()

	var records []RequestRecord

	for rows.Next() {
		var (
			record    RequestRecord
			username  pgtype.Text
			chatID    pgtype.Int8
			createdAt pgtype.Timestamptz
		)

		if err := rows.Scan(&record.ID, &record.UserID, &username, &record.Target, &chatID, &record.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan request row: %w", err)
		}

		record.Username = fromText(username)
		record.CreatedAt = fromTimestamptz(createdAt)

		if chatID.Valid {
			id := chatID.Int64
			record.ChatID = &id
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return records, nil
}
