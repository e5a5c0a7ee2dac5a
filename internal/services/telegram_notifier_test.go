package services

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"ticketera/internal/models"
)

type fakeBot struct{ sent []tgbotapi.Chattable }

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifierSkipsWithoutConfig(t *testing.T) {
	n, err := NewTelegramNotifier("", 0)
	if err != nil || n != nil {
		t.Fatalf("got %v %v", n, err)
	}
	if err := n.NotifyNewOrder(context.Background(), &models.Order{}); err != nil {
		t.Fatal("nil notifier must be a no-op")
	}
}

func TestTelegramNotifierMessage(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, chatID: 42}
	o := &models.Order{ID: "ord-1", FullName: "Juan <Pérez>", Email: "juan@example.com", TotalTickets: 2, TotalAmount: decimal.RequireFromString("240")}

	if err := n.NotifyNewOrder(context.Background(), o); err != nil {
		t.Fatal(err)
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T", bot.sent[0])
	}
	if msg.ChatID != 42 || msg.ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("msg = %+v", msg)
	}
	if !strings.Contains(msg.Text, "240.00") || !strings.Contains(msg.Text, "Juan &lt;Pérez&gt;") {
		t.Fatalf("text = %q", msg.Text)
	}
}
