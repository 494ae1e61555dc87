package notifier

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/pkg/logger"
)

// TelegramDispatcher delivers notifications through a Telegram bot.
// Recipients are chat IDs stored on the investor profile.
type TelegramDispatcher struct {
	bot *telebot.Bot
}

func NewTelegramDispatcher(botToken string) (*TelegramDispatcher, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  botToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	return &TelegramDispatcher{bot: bot}, nil
}

// NewTelegramDispatcherWithBot injects a bot. Intended for unit tests.
func NewTelegramDispatcherWithBot(bot *telebot.Bot) *TelegramDispatcher {
	return &TelegramDispatcher{bot: bot}
}

func (d *TelegramDispatcher) Notify(ctx context.Context, recipient, message string) error {
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return domainerrors.BadRequest("invalid telegram chat id")
	}

	if _, err := d.bot.Send(&telebot.User{ID: chatID}, message); err != nil {
		logger.Warn(ctx, "telegram send failed",
			zap.String("chat_id", recipient),
			zap.Error(err),
		)
		return err
	}
	return nil
}
