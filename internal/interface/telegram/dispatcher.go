package telegram

import (
	"context"
	"log/slog"

	"github.com/yanqian/iknowall-bot/internal/domain/bot"
	tg "github.com/yanqian/iknowall-bot/internal/infra/telegram"
	apperrors "github.com/yanqian/iknowall-bot/pkg/errors"
)

// Sender delivers replies to Telegram.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Dispatcher routes a Telegram update through the bot and sends the reply.
// Both the webhook handler and the poller use it.
type Dispatcher struct {
	bot    bot.Service
	sender Sender
	logger *slog.Logger
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(botSvc bot.Service, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{bot: botSvc, sender: sender, logger: logger.With("component", "telegram.dispatcher")}
}

// Dispatch handles one update. Updates without a text message are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, update tg.Update) error {
	if update.Message == nil || update.Message.Text == "" {
		return nil
	}
	msg := bot.Message{ChatID: update.Message.Chat.ID, Text: update.Message.Text}
	if update.Message.From != nil {
		if update.Message.From.IsBot {
			return nil
		}
		msg.UserID = update.Message.From.ID
	}
	reply, ok := d.bot.Handle(ctx, msg)
	if !ok {
		return nil
	}
	if err := d.sender.SendMessage(ctx, reply.ChatID, reply.Text); err != nil {
		return apperrors.Wrap(apperrors.CodeTelegram, "send reply failed", err)
	}
	return nil
}
