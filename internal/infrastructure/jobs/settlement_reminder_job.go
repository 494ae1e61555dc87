package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/pkg/logger"
)

// SettlementReminderJob reminds the admin to run monthly settlement
// when the calendar has moved past the active cycle's month. Settlement
// itself stays a manual admin action.
type SettlementReminderJob struct {
	cycleRepo      repositories.FundCycleRepository
	dispatcher     services.NotificationDispatcher
	adminRecipient string
	spec           string
	cron           *cron.Cron
	now            func() time.Time
}

func NewSettlementReminderJob(
	cycleRepo repositories.FundCycleRepository,
	dispatcher services.NotificationDispatcher,
	adminRecipient string,
	spec string,
) *SettlementReminderJob {
	return &SettlementReminderJob{
		cycleRepo:      cycleRepo,
		dispatcher:     dispatcher,
		adminRecipient: adminRecipient,
		spec:           spec,
		now:            time.Now,
	}
}

func (j *SettlementReminderJob) Start(ctx context.Context) error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(j.spec, func() { j.checkSettlementDue(ctx) }); err != nil {
		return fmt.Errorf("invalid settlement reminder schedule %q: %w", j.spec, err)
	}
	j.cron.Start()
	logger.Info(ctx, "settlement reminder scheduled", zap.String("spec", j.spec))
	return nil
}

func (j *SettlementReminderJob) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

func (j *SettlementReminderJob) checkSettlementDue(ctx context.Context) {
	cycle, err := j.cycleRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNoActiveCycle) {
			logger.Warn(ctx, "no active cycle while checking settlement due")
			return
		}
		logger.Error(ctx, "settlement due check failed", zap.Error(err))
		return
	}

	now := j.now()
	if !cycleMonthPassed(cycle.CycleYear, cycle.CycleMonth, now) {
		return
	}

	msg := fmt.Sprintf(
		"Cycle %d-%02d is past its month end. Run settlement to close it and open the next cycle.",
		cycle.CycleYear, cycle.CycleMonth,
	)
	if err := j.dispatcher.Notify(ctx, j.adminRecipient, msg); err != nil {
		logger.Warn(ctx, "settlement reminder delivery failed", zap.Error(err))
	}
}

func cycleMonthPassed(year, month int, now time.Time) bool {
	if now.Year() != year {
		return now.Year() > year
	}
	return int(now.Month()) > month
}
