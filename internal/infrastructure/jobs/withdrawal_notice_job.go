package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/pkg/logger"
)

// WithdrawalNoticeJob scans for pending withdrawals whose notice period
// has elapsed and alerts the admin that a decision is overdue. Each
// request is alerted once.
type WithdrawalNoticeJob struct {
	repo           repositories.WithdrawalRepository
	dispatcher     services.NotificationDispatcher
	adminRecipient string
	interval       time.Duration
	stop           chan struct{}
}

func NewWithdrawalNoticeJob(
	repo repositories.WithdrawalRepository,
	dispatcher services.NotificationDispatcher,
	adminRecipient string,
	interval time.Duration,
) *WithdrawalNoticeJob {
	return &WithdrawalNoticeJob{
		repo:           repo,
		dispatcher:     dispatcher,
		adminRecipient: adminRecipient,
		interval:       interval,
		stop:           make(chan struct{}),
	}
}

func (j *WithdrawalNoticeJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting withdrawal notice job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "withdrawal notice job stopped")
			return
		case <-j.stop:
			logger.Info(ctx, "withdrawal notice job stopped")
			return
		case <-ticker.C:
			j.processElapsedNotices(ctx)
		}
	}
}

func (j *WithdrawalNoticeJob) Stop() {
	close(j.stop)
}

func (j *WithdrawalNoticeJob) processElapsedNotices(ctx context.Context) {
	elapsed, err := j.repo.GetNoticeElapsedPending(ctx, time.Now(), 100)
	if err != nil {
		logger.Error(ctx, "failed to fetch notice-elapsed withdrawals", zap.Error(err))
		return
	}
	if len(elapsed) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(elapsed))
	for _, w := range elapsed {
		ids = append(ids, w.ID)
		msg := fmt.Sprintf(
			"Withdrawal %s for %s USDT passed its notice period on %s and still awaits a decision.",
			w.ID, w.AmountRequested.StringFixed(2), w.NoticeExpiresAt.Format("2006-01-02"),
		)
		if err := j.dispatcher.Notify(ctx, j.adminRecipient, msg); err != nil {
			logger.Warn(ctx, "notice alert delivery failed",
				zap.String("withdrawal_id", w.ID.String()),
				zap.Error(err),
			)
		}
	}

	if err := j.repo.MarkNoticeAlerted(ctx, ids, time.Now()); err != nil {
		logger.Error(ctx, "failed to mark withdrawals alerted", zap.Error(err))
		return
	}
	logger.Info(ctx, "alerted notice-elapsed withdrawals", zap.Int("count", len(ids)))
}
