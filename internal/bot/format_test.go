package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrep/telegram-reputation-bot/internal/rep"
	db "github.com/chatrep/telegram-reputation-bot/internal/storage"
)

func TestFormatSummaryEmpty(t *testing.T) {
	summary := &db.ReputationSummary{Target: "userone"}

	text := formatSummary(summary)
	assert.Contains(t, text, "@userone")
	assert.Contains(t, text, "Записей не найдено")
}

func TestFormatSummaryCounts(t *testing.T) {
	summary := &db.ReputationSummary{
		Target:            "userone",
		Positive:          5,
		Negative:          2,
		PositiveWithMedia: 1,
	}

	text := formatSummary(summary)
	assert.Contains(t, text, "<b>5</b>")
	assert.Contains(t, text, "<b>2</b>")
	assert.Contains(t, text, "<b>7</b>")
	assert.Contains(t, text, "📎 1")
}

func TestFormatSummaryEscapesChatTitle(t *testing.T) {
	summary := &db.ReputationSummary{
		Target:    "userone",
		ChatTitle: "Trade <b> & Co",
		Positive:  1,
	}

	text := formatSummary(summary)
	assert.Contains(t, text, "Trade &lt;b&gt; &amp; Co")
	assert.NotContains(t, text, "Trade <b>")
}

func TestFormatDetailMessages(t *testing.T) {
	summary := &db.ReputationSummary{
		Target: "userone",
		Details: []db.DetailedMessage{
			{
				Sentiment: rep.SentimentPositive,
				HasPhoto:  true,
				Content:   "+rep <script>",
				Link:      "https://t.me/c/123/42",
			},
			{
				Sentiment:      rep.SentimentNegative,
				Content:        "",
				Link:           "https://t.me/c/123/43",
				AuthorUsername: "voter",
			},
		},
	}

	text := formatDetailMessages(summary)
	assert.Contains(t, text, "👍 📷")
	assert.Contains(t, text, "👎")
	assert.Contains(t, text, "&lt;script&gt;")
	assert.Contains(t, text, `href="https://t.me/c/123/42"`)
	assert.Contains(t, text, "(без текста)")
	assert.Contains(t, text, "@voter")
}

func TestDetailKeyboard(t *testing.T) {
	empty := &db.ReputationSummary{Target: "userone"}
	assert.Nil(t, detailKeyboard(empty))

	chatID := int64(-1001234)
	scoped := &db.ReputationSummary{Target: "@UserOne", ChatID: &chatID, Positive: 3}

	kb := detailKeyboard(scoped)
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 1)

	data := *kb.InlineKeyboard[0][0].CallbackData
	assert.Equal(t, "detail:userone:-1001234", data)

	target, parsedChatID, ok := parseDetailCallback(data)
	require.True(t, ok)
	assert.Equal(t, "userone", target)
	require.NotNil(t, parsedChatID)
	assert.Equal(t, chatID, *parsedChatID)
}

func TestFormatStatistics(t *testing.T) {
	stats := &db.Statistics{
		ActiveGroups:    3,
		TotalGroups:     5,
		TotalEntries:    120,
		PositiveEntries: 100,
		NegativeEntries: 20,
		DistinctTargets: 40,
		TotalUsers:      15,
		RequestsToday:   7,
	}

	text := formatStatistics(stats)
	assert.Contains(t, text, "3 активных из 5")
	assert.Contains(t, text, "120")
	assert.Contains(t, text, "👍 100 / 👎 20")
}

func TestFormatRequests(t *testing.T) {
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Запросов не найдено.", formatRequests(nil, 0, since))

	chatID := int64(-1001234)
	records := []db.RequestRecord{
		{UserID: 5, Username: "asker", Target: "userone", ChatID: &chatID, Source: "command", CreatedAt: since},
		{UserID: 6, Target: "usertwo", Source: "inline", CreatedAt: since},
	}

	text := formatRequests(records, 12, since)
	assert.Contains(t, text, "всего 12")
	assert.Contains(t, text, "2024-06-01")
	assert.Contains(t, text, "asker")
	assert.Contains(t, text, "userone")
	assert.Contains(t, text, "в <code>-1001234</code>")
	assert.Contains(t, text, "(inline)")
}

func TestFormatGroupsEscapesTitles(t *testing.T) {
	groups := []db.Group{
		{ChatID: -100, Title: "A <x> B", IsActive: true},
		{ChatID: -200, Title: "Old", IsActive: false},
	}

	text := formatGroups(groups)
	assert.Contains(t, text, "A &lt;x&gt; B")
	assert.True(t, strings.Contains(text, "✅") && strings.Contains(text, "⛔️"))
}
