package notifier

import (
	"context"

	"go.uber.org/zap"
	"poolfund.backend/pkg/logger"
)

// LogDispatcher writes notifications to the application log. Used when
// no Telegram bot is configured.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) Notify(ctx context.Context, recipient, message string) error {
	logger.Info(ctx, "notification",
		zap.String("recipient", recipient),
		zap.String("message", message),
	)
	return nil
}
