package notifier

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel sends the reminder as a chat message.
type TelegramChannel struct {
	sender telegramSender
	chatID int64
}

func NewTelegramChannel(token string, chatID int64) (*TelegramChannel, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return NewTelegramChannelWithSender(api, chatID), nil
}

func NewTelegramChannelWithSender(sender telegramSender, chatID int64) *TelegramChannel {
	return &TelegramChannel{
		sender: sender,
		chatID: chatID,
	}
}

func (c *TelegramChannel) Name() string {
	return "telegram"
}

// Notify does not observe ctx; the dispatcher bounds it instead.
func (c *TelegramChannel) Notify(_ context.Context, n domain.Notification) error {
	msg := tgbotapi.NewMessage(c.chatID, FormatTelegramText(n))

	if _, err := c.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

func FormatTelegramText(n domain.Notification) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⏰ %s\n", n.Title)
	fmt.Fprintf(&b, "%s at %s", n.Category, n.OccursAt.Format("2006-01-02 15:04"))

	if n.Notes != "" {
		fmt.Fprintf(&b, "\n\n%s", n.Notes)
	}

	switch n.Recurrence {
	case domain.RecurrenceDaily:
		b.WriteString("\n\n🔄 every day")
	case domain.RecurrenceWeekly:
		fmt.Fprintf(&b, "\n\n🔄 every %s", n.OccursAt.Weekday())
	}

	return b.String()
}
