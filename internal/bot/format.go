package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/chatrep/telegram-reputation-bot/internal/rep"
	db "github.com/chatrep/telegram-reputation-bot/internal/storage"
)

const (
	detailContentPreviewLen = 80
	timeLayout              = "2006-01-02 15:04"
)

func helpText() string {
	return strings.Join([]string{
		"<b>Бот репутации</b>",
		"",
		"Я считаю <code>+rep</code> и <code>-rep</code> в отслеживаемых группах.",
		"",
		"<code>/rep @username</code> — репутация по всем группам",
		"<code>/rep @username \"Название группы\"</code> — по одной группе",
		"<code>/id</code> — ваш ID и ID чата",
		"",
		"Inline: наберите <code>@bot rep username</code> в любом чате.",
	}, "\n")
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCheck),
			tgbotapi.NewKeyboardButton(ButtonHelp),
		),
	)
	keyboard.ResizeKeyboard = true

	return keyboard
}

// detailKeyboard builds the "show proof messages" button. The chat scope is
// encoded into the callback data so the detail fetch repeats the same filter.
func detailKeyboard(summary *db.ReputationSummary) *tgbotapi.InlineKeyboardMarkup {
	if summary.Total() == 0 {
		return nil
	}

	scope := CallbackScopeAll
	if summary.ChatID != nil {
		scope = strconv.FormatInt(*summary.ChatID, 10)
	}

	data := CallbackPrefixDetail + rep.NormalizeTarget(summary.Target) + ":" + scope

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Показать сообщения", data),
		),
	)

	return &keyboard
}

func formatSummary(summary *db.ReputationSummary) string {
	var sb strings.Builder

	sb.WriteString("<b>Репутация @")
	sb.WriteString(escapeHTML(rep.NormalizeTarget(summary.Target)))
	sb.WriteString("</b>\n")

	if summary.ChatTitle != "" {
		sb.WriteString("Группа: ")
		sb.WriteString(escapeHTML(summary.ChatTitle))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	if summary.Total() == 0 {
		sb.WriteString("Записей не найдено.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "👍 Положительных: <b>%d</b>", summary.Positive)

	if summary.PositiveWithMedia > 0 {
		fmt.Fprintf(&sb, " (📎 %d с медиа)", summary.PositiveWithMedia)
	}

	sb.WriteString("\n")

	fmt.Fprintf(&sb, "👎 Отрицательных: <b>%d</b>", summary.Negative)

	if summary.NegativeWithMedia > 0 {
		fmt.Fprintf(&sb, " (📎 %d с медиа)", summary.NegativeWithMedia)
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Всего: <b>%d</b>", summary.Total())

	return sb.String()
}

func formatSummaryShort(summary *db.ReputationSummary) string {
	return fmt.Sprintf("👍 %d / 👎 %d", summary.Positive, summary.Negative)
}

func formatDetailMessages(summary *db.ReputationSummary) string {
	var sb strings.Builder

	sb.WriteString("<b>Сообщения по @")
	sb.WriteString(escapeHTML(rep.NormalizeTarget(summary.Target)))
	sb.WriteString("</b>\n\n")

	for _, detail := range summary.Details {
		sb.WriteString(sentimentEmoji(detail.Sentiment))
		sb.WriteString(" ")

		if detail.HasPhoto {
			sb.WriteString("📷 ")
		} else if detail.HasMedia {
			sb.WriteString("📎 ")
		}

		preview := truncate(detail.Content, detailContentPreviewLen)
		if preview == "" {
			preview = "(без текста)"
		}

		fmt.Fprintf(&sb, "<a href=%q>%s</a>", detail.Link, escapeHTML(preview))

		if detail.AuthorUsername != "" {
			sb.WriteString(" — @")
			sb.WriteString(escapeHTML(detail.AuthorUsername))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func sentimentEmoji(s rep.Sentiment) string {
	if s == rep.SentimentNegative {
		return "👎"
	}

	return "👍"
}

func formatIDs(msg *tgbotapi.Message) string {
	var sb strings.Builder

	if msg.From != nil {
		fmt.Fprintf(&sb, "Ваш ID: <code>%d</code>\n", msg.From.ID)
	}

	fmt.Fprintf(&sb, "ID чата: <code>%d</code>", msg.Chat.ID)

	return sb.String()
}

func formatStatistics(stats *db.Statistics) string {
	var sb strings.Builder

	sb.WriteString("<b>Статистика</b>\n\n")
	fmt.Fprintf(&sb, "Группы: %d активных из %d\n", stats.ActiveGroups, stats.TotalGroups)
	fmt.Fprintf(&sb, "Записей: %d (👍 %d / 👎 %d)\n", stats.TotalEntries, stats.PositiveEntries, stats.NegativeEntries)
	fmt.Fprintf(&sb, "Уникальных целей: %d\n", stats.DistinctTargets)
	fmt.Fprintf(&sb, "Пользователей: %d\n", stats.TotalUsers)
	fmt.Fprintf(&sb, "Запросов сегодня: %d", stats.RequestsToday)

	return sb.String()
}

func formatGroups(groups []db.Group) string {
	if len(groups) == 0 {
		return "Групп пока нет."
	}

	var sb strings.Builder

	sb.WriteString("<b>Группы</b>\n\n")

	for _, group := range groups {
		status := "✅"
		if !group.IsActive {
			status = "⛔️"
		}

		fmt.Fprintf(&sb, "%s %s <code>%d</code>\n", status, escapeHTML(group.Title), group.ChatID)
	}

	return sb.String()
}

func formatTopUsers(users []db.BotUser) string {
	if len(users) == 0 {
		return "Пользователей пока нет."
	}

	var sb strings.Builder

	sb.WriteString("<b>Топ пользователей</b>\n\n")

	for i, user := range users {
		name := user.Username
		if name == "" {
			name = strings.TrimSpace(user.FirstName + " " + user.LastName)
		}

		if name == "" {
			name = strconv.FormatInt(user.UserID, 10)
		}

		blocked := ""
		if user.Blocked {
			blocked = " ⛔️"
		}

		fmt.Fprintf(&sb, "%d. %s — %d запросов%s\n", i+1, escapeHTML(name), user.RequestCount, blocked)
	}

	return sb.String()
}

func formatRequests(records []db.RequestRecord, total int64, since time.Time) string {
	if len(records) == 0 {
		return "Запросов не найдено."
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>Запросы с %s</b> — всего %d\n\n", since.Format(timeLayout), total)

	for _, record := range records {
		who := record.Username
		if who == "" {
			who = strconv.FormatInt(record.UserID, 10)
		}

		fmt.Fprintf(&sb, "%s — %s → <code>%s</code>",
			record.CreatedAt.Format(timeLayout), escapeHTML(who), escapeHTML(record.Target))

		if record.ChatID != nil {
			fmt.Fprintf(&sb, " в <code>%d</code>", *record.ChatID)
		}

		fmt.Fprintf(&sb, " (%s)\n", record.Source)
	}

	return sb.String()
}
