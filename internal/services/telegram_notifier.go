package services

import (
	"context"
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ticketera/internal/models"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts every new pending order to the staff chat.
type TelegramNotifier struct {
	bot    telegramSender
	chatID int64
}

// NewTelegramNotifier returns nil when token or chat are not configured,
// the composer then skips notifications.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		log.Printf("[tg][skip] token or chatID empty (token? %v chatID=%d)", token != "", chatID)
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Printf("[tg] authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func orderMessage(o *models.Order) string {
	return fmt.Sprintf(
		"<b>New purchase pending review</b>\nOrder: <code>%s</code>\nBuyer: %s (DNI %s)\nEmail: %s\nTickets: %d\nTotal: %s\nVoucher: %s",
		o.ID,
		html.EscapeString(o.FullName),
		o.DNI,
		html.EscapeString(o.Email),
		o.TotalTickets,
		o.TotalAmount.StringFixed(2),
		html.EscapeString(o.VoucherURL),
	)
}

func (t *TelegramNotifier) NotifyNewOrder(_ context.Context, o *models.Order) error {
	if t == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, orderMessage(o))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	log.Printf("[tg][send] chatID=%d order=%s", t.chatID, o.ID)
	return nil
}
