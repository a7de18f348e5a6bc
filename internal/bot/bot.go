// Package bot implements the Telegram transport: group message capture,
// reputation lookups, inline mode, and the admin surface.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/chatrep/telegram-reputation-bot/internal/platform/config"
	"github.com/chatrep/telegram-reputation-bot/internal/platform/worker"
)

// MaxMessageSize is the maximum length for a single Telegram message.
const MaxMessageSize = 4000

// Command names.
const (
	CmdStart     = "start"
	CmdHelp      = "help"
	CmdRep       = "rep"
	CmdRepShort  = "r"
	CmdID        = "id"
	CmdAdmin     = "admin"
	CmdStats     = "stats"
	CmdGroups    = "groups"
	CmdTop       = "top"
	CmdRequests  = "requests"
	CmdBlock     = "block"
	CmdUnblock   = "unblock"
	CmdPause     = "pause"
	CmdResume    = "resume"
	CmdAdjust    = "adjust"
	CmdBroadcast = "broadcast"
)

// Callback data prefixes.
const (
	CallbackPrefixDetail = "detail:"
	CallbackScopeAll     = "all"
)

// Log field names.
const (
	LogFieldUserID   = "user_id"
	LogFieldUsername = "username"
	LogFieldChatID   = "chat_id"
	LogFieldTarget   = "target"
	LogFieldCommand  = "command"
)

// Button labels.
const (
	ButtonCheck = "🔍 Проверить репутацию"
	ButtonHelp  = "ℹ️ Помощь"
)

type Bot struct {
	cfg      *config.Config
	database Repository
	api      *tgbotapi.BotAPI
	logger   *zerolog.Logger
}

func New(cfg *config.Config, database Repository, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}

	return &Bot{
		cfg:      cfg,
		database: database,
		api:      api,
		logger:   logger,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str(LogFieldUsername, b.api.Self.UserName).Msg("bot update loop starting")

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update := <-updates:
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	defer worker.RecoverPanic(b.logger, "update dispatch")

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.InlineQuery != nil:
		b.handleInline(ctx, update.InlineQuery)
	case update.MyChatMember != nil:
		b.handleChatMemberUpdate(ctx, update.MyChatMember)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}

	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		if msg.IsCommand() {
			b.handleGroupCommand(ctx, msg)
			return
		}

		b.captureGroupMessage(ctx, msg)

		return
	}

	b.handlePrivateMessage(ctx, msg)
}

// handleChatMemberUpdate tracks the bot being added to or removed from groups.
func (b *Bot) handleChatMemberUpdate(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) {
	if upd.NewChatMember.User == nil || upd.NewChatMember.User.ID != b.api.Self.ID {
		return
	}

	chat := upd.Chat
	if !chat.IsGroup() && !chat.IsSuperGroup() {
		return
	}

	switch upd.NewChatMember.Status {
	case "member", "administrator":
		if err := b.database.RegisterGroup(ctx, chat.ID, chat.Title, chat.UserName, chat.Type); err != nil {
			b.logger.Error().Err(err).Int64(LogFieldChatID, chat.ID).Msg("failed to register group")
			return
		}

		if err := b.database.ActivateGroup(ctx, chat.ID); err != nil {
			b.logger.Error().Err(err).Int64(LogFieldChatID, chat.ID).Msg("failed to activate group")
			return
		}

		b.logger.Info().Int64(LogFieldChatID, chat.ID).Str("title", chat.Title).Msg("added to group")
	case "left", "kicked":
		if err := b.database.DeactivateGroup(ctx, chat.ID); err != nil {
			b.logger.Error().Err(err).Int64(LogFieldChatID, chat.ID).Msg("failed to deactivate group")
			return
		}

		b.logger.Info().Int64(LogFieldChatID, chat.ID).Msg("removed from group")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.IsAdmin(userID)
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.sendMessageWithMarkup(chatID, text, nil)
}

func (b *Bot) sendMessageWithMarkup(chatID int64, text string, markup any) {
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.DisableWebPagePreview = true

	if markup != nil {
		reply.ReplyMarkup = markup
	}

	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, chatID).Msg("failed to send reply")
	}
}
