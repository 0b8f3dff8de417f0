package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram delivers notifications as HTML messages to a single chat.
type Telegram struct {
	bot    messageSender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	client := &http.Client{Timeout: DefaultShowTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("notify: create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Permission() Permission {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return PermissionDenied
	}
	return PermissionGranted
}

func (t *Telegram) RequestPermission(context.Context) Permission { return t.Permission() }

func (t *Telegram) Show(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := fmt.Sprintf("🔔 <b>%s</b>", html.EscapeString(title))
	if body != "" {
		text += "\n\n" + html.EscapeString(body)
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: telegram send: %w", err)
	}
	return nil
}
