package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/chatrep/telegram-reputation-bot/internal/platform/observability"
	"github.com/chatrep/telegram-reputation-bot/internal/rep"
	db "github.com/chatrep/telegram-reputation-bot/internal/storage"
)

// captureGroupMessage scans a group message for reputation signals and
// persists extracted entries. The group record is refreshed on every message
// so renamed chats stay current. While the bot is paused, capture is skipped
// entirely and nothing is registered or stored.
func (b *Bot) captureGroupMessage(ctx context.Context, msg *tgbotapi.Message) {
	paused, err := b.database.IsPaused(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to check pause flag")
	}

	if paused {
		return
	}

	observability.MessagesScanned.Inc()

	if err := b.database.RegisterGroup(ctx, msg.Chat.ID, msg.Chat.Title, msg.Chat.UserName, msg.Chat.Type); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to refresh group")
	}

	entries := rep.BuildEntries(toRepMessage(msg))
	if len(entries) == 0 {
		return
	}

	for _, entry := range entries {
		observability.MentionsExtracted.WithLabelValues(string(entry.Sentiment)).Inc()
	}

	inserted, err := b.database.StoreEntries(ctx, entries)
	if err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to store entries")
		return
	}

	observability.EntriesStored.Add(float64(inserted))

	if err := b.database.SetLastProcessedMessage(ctx, msg.Chat.ID, int64(msg.MessageID)); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to record last processed message")
	}

	b.logger.Debug().
		Int64(LogFieldChatID, msg.Chat.ID).
		Int("mentions", len(entries)).
		Int("inserted", inserted).
		Msg("captured reputation signals")
}

// toRepMessage converts an incoming Telegram message into the extraction
// engine's representation. Captions count as text so photo posts with
// "+rep @user" captions are scanned too.
func toRepMessage(msg *tgbotapi.Message) rep.Message {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	out := rep.Message{
		ChatID:       msg.Chat.ID,
		MessageID:    int64(msg.MessageID),
		Text:         text,
		Date:         msg.Time(),
		HasPhoto:     len(msg.Photo) > 0,
		HasVideo:     msg.Video != nil,
		HasDocument:  msg.Document != nil,
		HasAnimation: msg.Animation != nil,
		HasAudio:     msg.Audio != nil,
		HasVoice:     msg.Voice != nil,
		HasVideoNote: msg.VideoNote != nil,
	}

	if msg.From != nil {
		out.From = &rep.User{ID: msg.From.ID, Username: msg.From.UserName, IsBot: msg.From.IsBot}
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		from := msg.ReplyToMessage.From
		out.ReplyTo = &rep.Reply{From: &rep.User{ID: from.ID, Username: from.UserName, IsBot: from.IsBot}}
	}

	return out
}

func (b *Bot) handleGroupCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case CmdRep, CmdRepShort:
		b.handleRepCommand(ctx, msg)
	case CmdID:
		b.handleIDCommand(msg)
	}
}

func (b *Bot) handlePrivateMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if err := b.database.EnsureUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName, msg.From.LastName); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldUserID, msg.From.ID).Msg("failed to upsert user")
	}

	if msg.IsCommand() {
		b.handlePrivateCommand(ctx, msg)
		return
	}

	b.handleMenuInput(ctx, msg)
}

func (b *Bot) handlePrivateCommand(ctx context.Context, msg *tgbotapi.Message) {
	b.logger.Info().Str(LogFieldCommand, msg.Command()).Int64(LogFieldUserID, msg.From.ID).Msg("handling command")

	switch msg.Command() {
	case CmdStart, CmdHelp:
		b.sendMessageWithMarkup(msg.Chat.ID, helpText(), mainMenuKeyboard())
	case CmdRep, CmdRepShort:
		b.handleRepCommand(ctx, msg)
	case CmdID:
		b.handleIDCommand(msg)
	default:
		if b.isAdmin(msg.From.ID) && b.handleAdminCommand(ctx, msg) {
			return
		}

		b.reply(msg, "Неизвестная команда. Наберите /help для списка команд.")
	}
}

// handleMenuInput treats plain private text as a lookup target, which is how
// the reply keyboard buttons and bare usernames are handled.
func (b *Bot) handleMenuInput(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch text {
	case ButtonCheck:
		b.reply(msg, "Отправьте имя пользователя, например <code>@username</code>.")
		return
	case ButtonHelp:
		b.sendMessageWithMarkup(msg.Chat.ID, helpText(), mainMenuKeyboard())
		return
	case "":
		return
	}

	target, chatQuery := parseRepArguments(text)
	if target == "" {
		return
	}

	b.runLookup(ctx, msg, target, chatQuery, db.RequestSourceMenu)
}

func (b *Bot) handleRepCommand(ctx context.Context, msg *tgbotapi.Message) {
	target, chatQuery := parseRepArguments(msg.CommandArguments())
	if target == "" {
		b.reply(msg, "Использование: <code>/rep @username [группа]</code>")
		return
	}

	b.runLookup(ctx, msg, target, chatQuery, db.RequestSourceCommand)
}

// runLookup is the shared lookup path behind /rep, the menu, and bare text.
func (b *Bot) runLookup(ctx context.Context, msg *tgbotapi.Message, target, chatQuery, source string) {
	if msg.From == nil {
		return
	}

	if !b.lookupAllowed(msg.Chat, msg.From.ID) {
		b.reply(msg, "В личных сообщениях проверка доступна только администраторам. Используйте команду в группе.")
		return
	}

	if b.rejectBlockedOrPaused(ctx, msg) {
		return
	}

	chatID, ok := b.resolveChatFilter(ctx, chatQuery)
	if !ok {
		b.reply(msg, "Группа не найдена: "+escapeHTML(chatQuery))
		return
	}

	summary, err := b.database.FetchSummary(ctx, target, chatID, b.cfg.DetailLimit)
	if err != nil {
		b.logger.Error().Err(err).Str(LogFieldTarget, target).Msg("failed to fetch summary")
		b.reply(msg, "Ошибка при получении репутации.")

		return
	}

	b.recordLookup(ctx, msg.From, target, chatID, source)

	var markup any
	if kb := detailKeyboard(summary); kb != nil {
		markup = kb
	}

	b.sendMessageWithMarkup(msg.Chat.ID, formatSummary(summary), markup)
}

// lookupAllowed enforces the lookup permission model: group lookups are open
// to everyone, private-chat lookups only to admins.
func (b *Bot) lookupAllowed(chat *tgbotapi.Chat, userID int64) bool {
	if chat.IsPrivate() && !b.isAdmin(userID) {
		return false
	}

	return true
}

// resolveChatFilter turns a group query into a chat id filter. A numeric
// query is taken as a chat id directly; anything else is matched against
// stored group titles and usernames. The second return reports whether the
// query resolved (an empty query resolves to the global scope).
func (b *Bot) resolveChatFilter(ctx context.Context, query string) (*int64, bool) {
	if query == "" {
		return nil, true
	}

	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		return &id, true
	}

	group, err := b.database.FindGroupByTitle(ctx, query)
	if err != nil {
		b.logger.Error().Err(err).Str("query", query).Msg("failed to resolve group")
		return nil, false
	}

	if group == nil {
		return nil, false
	}

	return &group.ChatID, true
}

func (b *Bot) recordLookup(ctx context.Context, from *tgbotapi.User, target string, chatID *int64, source string) {
	observability.Queries.WithLabelValues(source).Inc()

	if err := b.database.IncrementUserRequests(ctx, from.ID); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldUserID, from.ID).Msg("failed to increment request counter")
	}

	if err := b.database.LogRequest(ctx, from.ID, from.UserName, rep.NormalizeTarget(target), chatID, source); err != nil {
		b.logger.Error().Err(err).Msg("failed to log request")
	}
}

// rejectBlockedOrPaused enforces the block list and the global pause flag.
// Admins bypass the pause.
func (b *Bot) rejectBlockedOrPaused(ctx context.Context, msg *tgbotapi.Message) bool {
	blocked, err := b.database.IsUserBlocked(ctx, msg.From.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64(LogFieldUserID, msg.From.ID).Msg("failed to check block status")
	}

	if blocked {
		return true
	}

	if b.isAdmin(msg.From.ID) {
		return false
	}

	paused, err := b.database.IsPaused(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to check pause flag")
	}

	if paused {
		b.reply(msg, "Бот временно на паузе.")
		return true
	}

	return false
}

func (b *Bot) handleIDCommand(msg *tgbotapi.Message) {
	b.reply(msg, formatIDs(msg))
}

// handleCallback serves the detail keyboard: callback data is
// "detail:<target>:<chat id or all>".
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := query.Data
	if !strings.HasPrefix(data, CallbackPrefixDetail) || query.Message == nil {
		return
	}

	target, chatID, ok := parseDetailCallback(data)
	if !ok {
		return
	}

	summary, err := b.database.FetchSummary(ctx, target, chatID, b.cfg.DetailLimit)
	if err != nil {
		b.logger.Error().Err(err).Str(LogFieldTarget, target).Msg("failed to fetch details")
		return
	}

	ack := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.api.Request(ack); err != nil {
		b.logger.Error().Err(err).Msg("failed to answer callback")
	}

	if len(summary.Details) == 0 {
		b.sendMessage(query.Message.Chat.ID, "Подтверждающих сообщений не найдено.")
		return
	}

	b.sendMessage(query.Message.Chat.ID, formatDetailMessages(summary))
}
