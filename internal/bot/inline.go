package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/chatrep/telegram-reputation-bot/internal/rep"
	db "github.com/chatrep/telegram-reputation-bot/internal/storage"
)

const inlineCacheTimeSeconds = 30

// handleInline answers inline queries of the form "@bot rep username [группа]".
// Blocked users and the paused state get an empty answer so the bot stays
// silent in other chats.
func (b *Bot) handleInline(ctx context.Context, query *tgbotapi.InlineQuery) {
	if query.From == nil {
		return
	}

	if err := b.database.EnsureUser(ctx, query.From.ID, query.From.UserName, query.From.FirstName, query.From.LastName); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldUserID, query.From.ID).Msg("failed to upsert user")
	}

	blocked, err := b.database.IsUserBlocked(ctx, query.From.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64(LogFieldUserID, query.From.ID).Msg("failed to check block status")
	}

	paused := false
	if !b.isAdmin(query.From.ID) {
		if paused, err = b.database.IsPaused(ctx); err != nil {
			b.logger.Error().Err(err).Msg("failed to check pause flag")
		}
	}

	if blocked || paused {
		b.answerInline(query.ID, nil)
		return
	}

	target, chatQuery := parseInlineQuery(query.Query)
	if target == "" {
		b.answerInline(query.ID, []any{inlineHintArticle()})
		return
	}

	chatID, ok := b.resolveChatFilter(ctx, chatQuery)
	if !ok {
		b.answerInline(query.ID, nil)
		return
	}

	summary, err := b.database.FetchSummary(ctx, target, chatID, b.cfg.DetailLimit)
	if err != nil {
		b.logger.Error().Err(err).Str(LogFieldTarget, target).Msg("failed to fetch summary for inline query")
		b.answerInline(query.ID, nil)

		return
	}

	b.recordLookup(ctx, query.From, target, chatID, db.RequestSourceInline)

	b.answerInline(query.ID, []any{inlineSummaryArticle(summary)})
}

func (b *Bot) answerInline(queryID string, results []any) {
	answer := tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     inlineCacheTimeSeconds,
		IsPersonal:    true,
	}

	if _, err := b.api.Request(answer); err != nil {
		b.logger.Error().Err(err).Msg("failed to answer inline query")
	}
}

func inlineHintArticle() tgbotapi.InlineQueryResultArticle {
	article := tgbotapi.NewInlineQueryResultArticleHTML(
		"hint",
		"Проверка репутации",
		"Наберите <code>rep username</code> для проверки репутации.",
	)
	article.Description = "Наберите rep username"

	return article
}

func inlineSummaryArticle(summary *db.ReputationSummary) tgbotapi.InlineQueryResultArticle {
	article := tgbotapi.NewInlineQueryResultArticleHTML(
		"rep:"+rep.NormalizeTarget(summary.Target),
		"Репутация @"+rep.NormalizeTarget(summary.Target),
		formatSummary(summary),
	)
	article.Description = formatSummaryShort(summary)

	return article
}
