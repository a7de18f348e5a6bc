package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/chatrep/telegram-reputation-bot/internal/platform/observability"
	"github.com/chatrep/telegram-reputation-bot/internal/rep"
)

const (
	defaultRequestsWindow = 24 * time.Hour
	requestsListLimit     = 50
	topUsersLimit         = 20

	broadcastStatusSent   = "sent"
	broadcastStatusFailed = "failed"
)

// handleAdminCommand routes admin-only commands. Returns false when the
// command is not an admin command so the caller can fall through.
func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) bool {
	switch msg.Command() {
	case CmdAdmin:
		b.reply(msg, adminHelpText())
	case CmdStats:
		b.handleStats(ctx, msg)
	case CmdGroups:
		b.handleGroups(ctx, msg)
	case CmdTop:
		b.handleTop(ctx, msg)
	case CmdRequests:
		b.handleRequests(ctx, msg)
	case CmdBlock:
		b.handleSetBlocked(ctx, msg, true)
	case CmdUnblock:
		b.handleSetBlocked(ctx, msg, false)
	case CmdPause:
		b.handleSetPaused(ctx, msg, true)
	case CmdResume:
		b.handleSetPaused(ctx, msg, false)
	case CmdAdjust:
		b.handleAdjust(ctx, msg)
	case CmdBroadcast:
		b.handleBroadcast(ctx, msg)
	default:
		return false
	}

	return true
}

func adminHelpText() string {
	return strings.Join([]string{
		"<b>Админ-команды</b>",
		"",
		"<code>/stats</code> — сводная статистика",
		"<code>/groups</code> — список групп",
		"<code>/top</code> — топ пользователей",
		"<code>/requests [с какого момента]</code> — журнал запросов",
		"<code>/block id</code> / <code>/unblock id</code>",
		"<code>/pause</code> / <code>/resume</code>",
		"<code>/adjust @target ±N [chat_id] [заметка]</code>",
		"<code>/broadcast текст</code>",
	}, "\n")
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	stats, err := b.database.FetchStatistics(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to fetch statistics")
		b.reply(msg, "Ошибка при получении статистики.")

		return
	}

	b.reply(msg, formatStatistics(stats))
}

func (b *Bot) handleGroups(ctx context.Context, msg *tgbotapi.Message) {
	groups, err := b.database.ListGroups(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to list groups")
		b.reply(msg, "Ошибка при получении списка групп.")

		return
	}

	b.reply(msg, formatGroups(groups))
}

func (b *Bot) handleTop(ctx context.Context, msg *tgbotapi.Message) {
	users, err := b.database.TopUsers(ctx, topUsersLimit)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to fetch top users")
		b.reply(msg, "Ошибка при получении топа пользователей.")

		return
	}

	b.reply(msg, formatTopUsers(users))
}

// handleRequests shows the recent lookup log. The optional argument is parsed
// leniently, so "/requests 2024-05-01" and "/requests May 1" both work.
func (b *Bot) handleRequests(ctx context.Context, msg *tgbotapi.Message) {
	since := time.Now().Add(-defaultRequestsWindow)

	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		parsed, err := dateparse.ParseAny(args)
		if err != nil {
			b.reply(msg, "Не удалось разобрать дату: "+escapeHTML(args))
			return
		}

		since = parsed
	}

	total, err := b.database.CountRequestsSince(ctx, since)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to count requests")
		b.reply(msg, "Ошибка при получении журнала запросов.")

		return
	}

	records, err := b.database.RecentRequests(ctx, since, requestsListLimit)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to fetch recent requests")
		b.reply(msg, "Ошибка при получении журнала запросов.")

		return
	}

	b.reply(msg, formatRequests(records, total, since))
}

func (b *Bot) handleSetBlocked(ctx context.Context, msg *tgbotapi.Message, blocked bool) {
	args := splitArgs(msg.CommandArguments())
	if len(args) == 0 {
		b.reply(msg, "Использование: <code>/block id</code>")
		return
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg, "Некорректный ID пользователя.")
		return
	}

	if err := b.database.SetUserBlocked(ctx, userID, blocked); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldUserID, userID).Msg("failed to update block flag")
		b.reply(msg, "Ошибка при обновлении.")

		return
	}

	if blocked {
		b.reply(msg, "Пользователь заблокирован.")
	} else {
		b.reply(msg, "Пользователь разблокирован.")
	}
}

func (b *Bot) handleSetPaused(ctx context.Context, msg *tgbotapi.Message, paused bool) {
	if err := b.database.SetPaused(ctx, paused); err != nil {
		b.logger.Error().Err(err).Msg("failed to update pause flag")
		b.reply(msg, "Ошибка при обновлении.")

		return
	}

	if paused {
		b.reply(msg, "Бот поставлен на паузу. Сбор сообщений и запросы приостановлены.")
	} else {
		b.reply(msg, "Бот снова собирает сообщения и отвечает на запросы.")
	}
}

// handleAdjust applies a manual reputation delta:
// /adjust @target +3 [chat_id] [note...]
func (b *Bot) handleAdjust(ctx context.Context, msg *tgbotapi.Message) {
	args := splitArgs(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(msg, "Использование: <code>/adjust @target ±N [chat_id] [заметка]</code>")
		return
	}

	target := rep.NormalizeTarget(args[0])
	if target == "" {
		b.reply(msg, "Некорректная цель.")
		return
	}

	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(msg, "Некорректная дельта, ожидается число вида +3 или -2.")
		return
	}

	var (
		chatID    *int64
		noteStart = 2
	)

	if len(args) > 2 {
		if id, parseErr := strconv.ParseInt(args[2], 10, 64); parseErr == nil {
			chatID = &id
			noteStart = 3
		}
	}

	note := ""
	if len(args) > noteStart {
		note = strings.Join(args[noteStart:], " ")
	}

	var positiveDelta, negativeDelta int64
	if delta >= 0 {
		positiveDelta = delta
	} else {
		negativeDelta = -delta
	}

	if err := b.database.AddManualAdjustment(ctx, target, chatID, positiveDelta, negativeDelta, note, msg.From.ID); err != nil {
		b.logger.Error().Err(err).Str(LogFieldTarget, target).Msg("failed to add manual adjustment")
		b.reply(msg, "Ошибка при сохранении корректировки.")

		return
	}

	b.reply(msg, "Корректировка сохранена.")
}

// handleBroadcast sends a message to every non-blocked user and every active
// group, paced by a rate limiter to stay under Telegram's flood limits.
func (b *Bot) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		b.reply(msg, "Использование: <code>/broadcast текст</code>")
		return
	}

	recipients, err := b.collectBroadcastRecipients(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to fetch broadcast audience")
		b.reply(msg, "Ошибка при получении списка получателей.")

		return
	}

	limiter := rate.NewLimiter(rate.Limit(b.cfg.BroadcastRatePerSec), 1)

	var sent, failed int

	for _, chatID := range recipients {
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		out := tgbotapi.NewMessage(chatID, text)
		out.ParseMode = tgbotapi.ModeHTML

		if _, err := b.api.Send(out); err != nil {
			failed++

			observability.BroadcastMessages.WithLabelValues(broadcastStatusFailed).Inc()
			b.logger.Warn().Err(err).Int64(LogFieldChatID, chatID).Msg("broadcast delivery failed")

			continue
		}

		sent++

		observability.BroadcastMessages.WithLabelValues(broadcastStatusSent).Inc()
	}

	b.reply(msg, "Рассылка завершена: доставлено "+strconv.Itoa(sent)+", ошибок "+strconv.Itoa(failed)+".")
}

// collectBroadcastRecipients gathers the broadcast audience: non-blocked
// users first, then active group chats.
func (b *Bot) collectBroadcastRecipients(ctx context.Context) ([]int64, error) {
	userIDs, err := b.database.ActiveUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("broadcast users: %w", err)
	}

	groupIDs, err := b.database.ActiveGroupIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("broadcast groups: %w", err)
	}

	return append(userIDs, groupIDs...), nil
}
