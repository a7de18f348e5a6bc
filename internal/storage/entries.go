package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/chatrep/telegram-reputation-bot/internal/rep"
)

// DetailedMessage is a single stored entry prepared for display.
type DetailedMessage struct {
	ID             string
	ChatID         int64
	MessageID      int64
	Sentiment      rep.Sentiment
	HasPhoto       bool
	HasMedia       bool
	Content        string
	AuthorUsername string
	Link           string
	CreatedAt      time.Time
}

// ReputationSummary aggregates stored entries and manual adjustments for one
// target, optionally scoped to a single chat.
type ReputationSummary struct {
	Target            string
	ChatID            *int64
	ChatTitle         string
	Positive          int
	Negative          int
	PositiveWithMedia int
	NegativeWithMedia int
	Details           []DetailedMessage
}

// Total returns the combined number of positive and negative signals.
func (s *ReputationSummary) Total() int {
	return s.Positive + s.Negative
}

const insertEntrySQL = `
	INSERT INTO reputation_entries
		(target, chat_id, message_id, sentiment, has_photo, has_media, content, author_id, author_username, message_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (target, chat_id, message_id) DO NOTHING`

// StoreEntries inserts entries with insert-or-ignore semantics keyed on
// (target, chat_id, message_id) and returns the number of rows actually
// inserted. Safe to call repeatedly with overlapping data.
func (db *DB) StoreEntries(ctx context.Context, entries []rep.ReputationEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin store entries: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	inserted := 0

	for _, entry := range entries {
		tag, err := tx.Exec(ctx, insertEntrySQL,
			strings.ToLower(entry.Target),
			entry.ChatID,
			entry.MessageID,
			string(entry.Sentiment),
			entry.HasPhoto,
			entry.HasMedia,
			toText(entry.Content),
			toInt8(entry.AuthorID),
			toText(entry.AuthorUsername),
			toTimestamptz(entry.MessageDate),
		)
		if err != nil {
			return 0, fmt.Errorf("insert reputation entry: %w", err)
		}

		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit store entries: %w", err)
	}

	return inserted, nil
}

// FetchSummary computes the reputation summary for a target. Manual
// adjustment deltas are summed into the raw counts and the result is clamped
// at zero. The target lookup is case-insensitive via normalization.
func (db *DB) FetchSummary(ctx context.Context, target string, chatID *int64, limit int) (*ReputationSummary, error) {
	targetKey := rep.NormalizeTarget(target)

	summary := &ReputationSummary{Target: target, ChatID: chatID}

	row := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE sentiment = 'positive'),
			COUNT(*) FILTER (WHERE sentiment = 'negative'),
			COUNT(*) FILTER (WHERE sentiment = 'positive' AND (has_photo OR has_media)),
			COUNT(*) FILTER (WHERE sentiment = 'negative' AND (has_photo OR has_media))
		FROM reputation_entries
		WHERE target = $1 AND ($2::bigint IS NULL OR chat_id = $2)
	`, targetKey, chatID)

	var positive, negative, positiveWithMedia, negativeWithMedia int64
	if err := row.Scan(&positive, &negative, &positiveWithMedia, &negativeWithMedia); err != nil {
		return nil, fmt.Errorf("scan sentiment counts: %w", err)
	}

	var posAdj, negAdj int64

	row = db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(positive_delta), 0), COALESCE(SUM(negative_delta), 0)
		FROM manual_adjustments
		WHERE target = $1 AND ($2::bigint IS NULL OR chat_id = $2)
	`, targetKey, chatID)
	if err := row.Scan(&posAdj, &negAdj); err != nil {
		return nil, fmt.Errorf("scan manual adjustments: %w", err)
	}

	summary.Positive = clampNonNegative(positive + posAdj)
	summary.Negative = clampNonNegative(negative + negAdj)
	summary.PositiveWithMedia = int(positiveWithMedia)
	summary.NegativeWithMedia = int(negativeWithMedia)

	details, err := db.fetchDetails(ctx, targetKey, chatID, limit)
	if err != nil {
		return nil, err
	}

	summary.Details = details

	if chatID != nil {
		title, err := db.GetGroupTitle(ctx, *chatID)
		if err != nil {
			return nil, err
		}

		summary.ChatTitle = title
	}

	return summary, nil
}

func (db *DB) fetchDetails(ctx context.Context, targetKey string, chatID *int64, limit int) ([]DetailedMessage, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, chat_id, message_id, sentiment, has_photo, has_media, content, author_username, created_at
		FROM reputation_entries
		WHERE target = $1 AND ($2::bigint IS NULL OR chat_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, targetKey, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("query entry details: %w", err)
	}
	defer rows.Close()

	var details []DetailedMessage

	for rows.Next() {
		var (
			id             pgtype.UUID
			detailChatID   int64
			messageID      int64
			sentiment      string
			hasPhoto       bool
			hasMedia       bool
			content        pgtype.Text
			authorUsername pgtype.Text
			createdAt      pgtype.Timestamptz
		)

		if err := rows.Scan(&id, &detailChatID, &messageID, &sentiment, &hasPhoto, &hasMedia, &content, &authorUsername, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry detail row: %w", err)
		}

		details = append(details, DetailedMessage{
			ID:             fromUUID(id),
			ChatID:         detailChatID,
			MessageID:      messageID,
			Sentiment:      rep.Sentiment(sentiment),
			HasPhoto:       hasPhoto,
			HasMedia:       hasMedia,
			Content:        fromText(content),
			AuthorUsername: fromText(authorUsername),
			Link:           BuildMessageLink(detailChatID, messageID),
			CreatedAt:      fromTimestamptz(createdAt),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry details: %w", err)
	}

	return details, nil
}

func clampNonNegative(v int64) int {
	if v < 0 {
		return 0
	}

	return int(v)
}

// BuildMessageLink generates a t.me link for a message. Supergroup chat ids
// carry a -100 prefix that the web link format omits.
func BuildMessageLink(chatID, messageID int64) string {
	id := fmt.Sprintf("%d", chatID)
	if strings.HasPrefix(id, "-100") {
		return fmt.Sprintf("https://t.me/c/%s/%d", id[4:], messageID)
	}

	return fmt.Sprintf("https://t.me/%s/%d", id, messageID)
}
