package notifier

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// TelegramRelay pushes notification copies to Telegram chats. Used for
// staff who linked a chat; the engine never waits on it.
type TelegramRelay struct {
	bot    *bot.Bot
	logger *zap.Logger
}

func NewTelegramRelay(token string, logger *zap.Logger) (*TelegramRelay, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramRelay{
		bot:    b,
		logger: logger,
	}, nil
}

// Notify sends the text to the chat
func (r *TelegramRelay) Notify(ctx context.Context, chatID int64, text string) error {
	_, err := r.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
