package rep

import (
	"strconv"
	"time"
)

// User identifies a message author.
type User struct {
	ID       int64
	Username string
	IsBot    bool
}

// Reply carries the part of a replied-to message the engine cares about.
type Reply struct {
	From *User
}

// Message is the transport-agnostic view of an incoming chat message. The
// Telegram layer (or a historical backfill job) converts its own message
// type into this value before invoking the engine.
type Message struct {
	ChatID    int64
	MessageID int64
	Text      string // text or caption, whichever is present
	From      *User
	ReplyTo   *Reply
	Date      time.Time

	HasPhoto     bool
	HasVideo     bool
	HasDocument  bool
	HasAnimation bool
	HasAudio     bool
	HasVoice     bool
	HasVideoNote bool
}

// ReputationEntry is the durable unit handed to storage. Uniqueness of
// (target, chat_id, message_id) is enforced on insert.
type ReputationEntry struct {
	Target         string
	ChatID         int64
	MessageID      int64
	Sentiment      Sentiment
	HasPhoto       bool
	HasMedia       bool
	Content        string
	AuthorID       int64 // 0 when the author is unknown
	AuthorUsername string
	MessageDate    time.Time
}

// BuildEntries runs extraction on the message text and combines the result
// with message metadata into storable entries. When extraction finds nothing
// and the message is a sign-only reply to a non-bot user, the sentiment is
// attributed to the replied-to user instead.
func BuildEntries(msg Message) []ReputationEntry {
	parsed := Extract(msg.Text)
	if len(parsed) == 0 {
		parsed = replyFallback(msg)
	}

	if len(parsed) == 0 {
		return nil
	}

	hasMedia := msg.HasVideo || msg.HasDocument || msg.HasAnimation || msg.HasAudio || msg.HasVoice || msg.HasVideoNote

	var (
		authorID       int64
		authorUsername string
	)

	if msg.From != nil {
		authorID = msg.From.ID
		authorUsername = msg.From.Username
	}

	entries := make([]ReputationEntry, 0, len(parsed))

	for _, item := range parsed {
		entries = append(entries, ReputationEntry{
			Target:         NormalizeTarget(item.Target),
			ChatID:         msg.ChatID,
			MessageID:      msg.MessageID,
			Sentiment:      item.Sentiment,
			HasPhoto:       msg.HasPhoto,
			HasMedia:       hasMedia,
			Content:        msg.Text,
			AuthorID:       authorID,
			AuthorUsername: authorUsername,
			MessageDate:    msg.Date,
		})
	}

	return entries
}

// replyFallback attributes a sign-only message ("+реп" with no mention) to
// the author of the message being replied to. Bots never accumulate
// reputation this way.
func replyFallback(msg Message) []ParsedMention {
	if msg.ReplyTo == nil || msg.ReplyTo.From == nil || msg.ReplyTo.From.IsBot {
		return nil
	}

	m := signOnlyPattern.FindStringSubmatch(msg.Text)
	if m == nil {
		return nil
	}

	target := msg.ReplyTo.From.Username
	if target == "" {
		target = strconv.FormatInt(msg.ReplyTo.From.ID, 10)
	}

	return []ParsedMention{{
		Target:    NormalizeTarget(target),
		Sentiment: resolveSentiment(m[signOnlyPattern.SubexpIndex("sign")]),
	}}
}
