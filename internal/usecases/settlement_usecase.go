package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"poolfund.backend/internal/config"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/pkg/logger"
	"poolfund.backend/pkg/utils"
)

// SettlementResult is the full outcome of a monthly settlement.
type SettlementResult struct {
	SettledCycle *entities.FundCycle   `json:"settledCycle"`
	PayoutLines  []entities.PayoutLine `json:"payoutSummary"`
	NextCycle    *entities.FundCycle   `json:"nextCycle"`
	NextShares   *entities.ShareReport `json:"nextShares"`
}

// SettlementUsecase runs the monthly settlement protocol: close the
// active cycle with the profit split applied, open the next cycle and
// seed it with carryover and reinvestment deposits. The whole protocol
// runs in one transaction keyed by the closing cycle's id, so a re-run
// against an already-settled cycle reports ErrAlreadySettled instead of
// double-crediting anyone.
type SettlementUsecase struct {
	uow          repositories.UnitOfWork
	cycleRepo    repositories.FundCycleRepository
	depositRepo  repositories.DepositRepository
	investorRepo repositories.InvestorRepository
	shareEngine  *ShareEngine
	dispatcher   services.NotificationDispatcher
	policy       config.PolicyConfig
}

func NewSettlementUsecase(
	uow repositories.UnitOfWork,
	cycleRepo repositories.FundCycleRepository,
	depositRepo repositories.DepositRepository,
	investorRepo repositories.InvestorRepository,
	shareEngine *ShareEngine,
	dispatcher services.NotificationDispatcher,
	policy config.PolicyConfig,
) *SettlementUsecase {
	return &SettlementUsecase{
		uow:          uow,
		cycleRepo:    cycleRepo,
		depositRepo:  depositRepo,
		investorRepo: investorRepo,
		shareEngine:  shareEngine,
		dispatcher:   dispatcher,
		policy:       policy,
	}
}

// SettleCycle closes the active cycle against the given profit figure.
// A negative profit (a loss) is accepted and split with the same rates.
func (u *SettlementUsecase) SettleCycle(ctx context.Context, profit decimal.Decimal, notes string) (*SettlementResult, error) {
	return u.settle(ctx, nil, profit, notes)
}

// SettleCycleByID settles the cycle with the given id. Retrying with
// the id of an already-settled cycle reports ErrAlreadySettled, which
// lets callers resubmit a settlement safely.
func (u *SettlementUsecase) SettleCycleByID(ctx context.Context, cycleID uuid.UUID, profit decimal.Decimal, notes string) (*SettlementResult, error) {
	return u.settle(ctx, &cycleID, profit, notes)
}

func (u *SettlementUsecase) settle(ctx context.Context, expectID *uuid.UUID, profit decimal.Decimal, notes string) (*SettlementResult, error) {
	if profit.IsNegative() {
		logger.Warn(ctx, "settling cycle with negative profit",
			zap.String("profit", profit.StringFixed(2)),
		)
	}

	result := &SettlementResult{}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		cycle, err := u.cycleRepo.GetActiveForUpdate(txCtx)
		if expectID != nil {
			if err != nil || cycle.ID != *expectID {
				return u.classifyStaleTarget(txCtx, *expectID, err)
			}
		}
		if err != nil {
			return err
		}

		report, err := u.shareEngine.RecomputeShares(txCtx, cycle.ID)
		if err != nil {
			return err
		}

		lines, totals := u.splitProfit(profit, report)
		summaryJSON, err := json.Marshal(lines)
		if err != nil {
			return err
		}
		totals.PayoutSummary = string(summaryJSON)

		if err := u.cycleRepo.CloseSettled(txCtx, cycle.ID, totals); err != nil {
			return err
		}

		nextMonth, nextYear := cycle.NextCalendarMonth()
		now := time.Now()
		nextCycle := &entities.FundCycle{
			ID:         utils.GenerateUUIDv7(),
			CycleMonth: nextMonth,
			CycleYear:  nextYear,
			Status:     entities.CycleStatusActive,
			OpenedAt:   now,
		}
		if err := u.cycleRepo.Create(txCtx, nextCycle); err != nil {
			return err
		}

		if err := u.seedNextCycle(txCtx, nextCycle, report, lines); err != nil {
			return err
		}

		nextShares, err := u.shareEngine.RecomputeShares(txCtx, nextCycle.ID)
		if err != nil {
			return err
		}

		settled, err := u.cycleRepo.GetByID(txCtx, cycle.ID)
		if err != nil {
			return err
		}

		result.SettledCycle = settled
		result.PayoutLines = lines
		result.NextCycle = nextCycle
		result.NextShares = nextShares
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifyInvestors(ctx, result)
	return result, nil
}

// classifyStaleTarget explains why a requested cycle id cannot be
// settled: it was settled already, it does not exist, or another cycle
// is active in its place.
func (u *SettlementUsecase) classifyStaleTarget(ctx context.Context, cycleID uuid.UUID, activeErr error) error {
	target, err := u.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return err
	}
	if target.Status == entities.CycleStatusSettled {
		return domainerrors.ErrAlreadySettled
	}
	if activeErr != nil {
		return activeErr
	}
	return domainerrors.BadRequest("cycle is not the active cycle")
}

// splitProfit apportions the profit across investors by share, then
// splits each gross amount into payout, reinvestment and performance
// fee at the policy rates.
func (u *SettlementUsecase) splitProfit(profit decimal.Decimal, report *entities.ShareReport) ([]entities.PayoutLine, repositories.CycleTotals) {
	lines := make([]entities.PayoutLine, 0, len(report.Records))
	totals := repositories.CycleTotals{ProfitTotal: profit}

	for _, investorID := range sortedInvestorIDs(report.Records) {
		rec := report.Records[investorID]
		if !rec.SharePercentage.IsPositive() {
			continue
		}

		gross := round2(profit.Mul(rec.SharePercentage).Div(oneHundred))
		payout := round2(gross.Mul(u.policy.ProfitInvestorRate))
		reinvest := round2(gross.Mul(u.policy.ProfitReinvestRate))
		fee := round2(gross.Mul(u.policy.ProfitFeeRate))

		lines = append(lines, entities.PayoutLine{
			InvestorID:      investorID,
			SharePercentage: rec.SharePercentage,
			Gross:           gross,
			Payout:          payout,
			Reinvested:      reinvest,
			PerformanceFee:  fee,
		})
		totals.InvestorPayoutTotal = totals.InvestorPayoutTotal.Add(payout)
		totals.ReinvestedTotal = totals.ReinvestedTotal.Add(reinvest)
		totals.PerformanceFeeTotal = totals.PerformanceFeeTotal.Add(fee)
	}
	return lines, totals
}

// seedNextCycle rolls every positive contribution forward as a
// carryover deposit and credits each investor's reinvestment slice.
func (u *SettlementUsecase) seedNextCycle(ctx context.Context, nextCycle *entities.FundCycle, report *entities.ShareReport, lines []entities.PayoutLine) error {
	reinvestByInvestor := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, line := range lines {
		reinvestByInvestor[line.InvestorID] = line.Reinvested
	}

	var deposits []*entities.Deposit
	for _, investorID := range sortedInvestorIDs(report.Records) {
		rec := report.Records[investorID]
		if rec.Contribution.IsPositive() {
			deposits = append(deposits, &entities.Deposit{
				ID:         utils.GenerateUUIDv7(),
				InvestorID: investorID,
				CycleID:    nextCycle.ID,
				Amount:     rec.Contribution,
				Type:       entities.DepositTypeCarryover,
			})
		}
		// A loss produces a negative reinvestment, shrinking the
		// investor's stake in the next cycle.
		if reinvest, ok := reinvestByInvestor[investorID]; ok && !reinvest.IsZero() {
			deposits = append(deposits, &entities.Deposit{
				ID:         utils.GenerateUUIDv7(),
				InvestorID: investorID,
				CycleID:    nextCycle.ID,
				Amount:     reinvest,
				Type:       entities.DepositTypeReinvestment,
			})
		}
	}
	return u.depositRepo.CreateBatch(ctx, deposits)
}

func (u *SettlementUsecase) notifyInvestors(ctx context.Context, result *SettlementResult) {
	if u.dispatcher == nil || len(result.PayoutLines) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(result.PayoutLines))
	for _, line := range result.PayoutLines {
		ids = append(ids, line.InvestorID)
	}
	investors, err := u.investorRepo.GetByIDs(ctx, ids)
	if err != nil {
		logger.Warn(ctx, "investor lookup for settlement notifications failed", zap.Error(err))
		return
	}
	chats := make(map[uuid.UUID]string, len(investors))
	for _, inv := range investors {
		chats[inv.ID] = inv.TelegramChatID
	}

	cycle := result.SettledCycle
	for _, line := range result.PayoutLines {
		chatID := chats[line.InvestorID]
		if chatID == "" {
			continue
		}
		msg := fmt.Sprintf(
			"Cycle %d-%02d settled. Your share %s%%: payout %s USDT, reinvested %s USDT.",
			cycle.CycleYear, cycle.CycleMonth,
			line.SharePercentage.StringFixed(2),
			line.Payout.StringFixed(2),
			line.Reinvested.StringFixed(2),
		)
		if err := u.dispatcher.Notify(ctx, chatID, msg); err != nil {
			logger.Warn(ctx, "settlement notification failed",
				zap.String("investor_id", line.InvestorID.String()),
				zap.Error(err),
			)
		}
	}
}
