package usecases

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"poolfund.backend/internal/domain/entities"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/pkg/logger"
)

// ShareEngine derives each investor's position in a cycle from the
// ledger. It is a pure read: repeated calls against unchanged ledger
// state return identical output.
type ShareEngine struct {
	depositRepo    repositories.DepositRepository
	withdrawalRepo repositories.WithdrawalRepository
	investorRepo   repositories.InvestorRepository
	priceFeed      services.PriceFeed    // optional
	balanceSource  services.BalanceSource // optional
}

func NewShareEngine(
	depositRepo repositories.DepositRepository,
	withdrawalRepo repositories.WithdrawalRepository,
	investorRepo repositories.InvestorRepository,
	priceFeed services.PriceFeed,
	balanceSource services.BalanceSource,
) *ShareEngine {
	return &ShareEngine{
		depositRepo:    depositRepo,
		withdrawalRepo: withdrawalRepo,
		investorRepo:   investorRepo,
		priceFeed:      priceFeed,
		balanceSource:  balanceSource,
	}
}

// RecomputeShares builds the full share distribution of a cycle.
// contribution_i = deposits_i minus approved withdrawal outflows_i,
// floored at zero. Percentages are rounded to two decimals with a
// largest-remainder correction on the top share so they sum to exactly
// 100.00 whenever total contribution is positive.
func (e *ShareEngine) RecomputeShares(ctx context.Context, cycleID uuid.UUID) (*entities.ShareReport, error) {
	deposits, err := e.depositRepo.GetByCycleID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	approved, err := e.withdrawalRepo.GetApprovedByCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	contributions := make(map[uuid.UUID]decimal.Decimal)
	for _, d := range deposits {
		contributions[d.InvestorID] = contributions[d.InvestorID].Add(d.Amount)
	}
	for _, w := range approved {
		contributions[w.InvestorID] = contributions[w.InvestorID].Sub(w.Outflow())
	}

	report := &entities.ShareReport{
		CycleID: cycleID,
		Records: make(map[uuid.UUID]*entities.ShareRecord, len(contributions)),
	}

	total := decimal.Zero
	for investorID, contribution := range contributions {
		if contribution.IsNegative() {
			contribution = decimal.Zero
		}
		report.Records[investorID] = &entities.ShareRecord{
			InvestorID:   investorID,
			CycleID:      cycleID,
			Contribution: contribution,
		}
		total = total.Add(contribution)
	}
	report.TotalContribution = total

	if total.IsPositive() {
		e.assignPercentages(report, total)
	}

	e.applyMarkedValuation(ctx, report)
	return report, nil
}

// assignPercentages rounds each share to two decimals, then pushes the
// rounding drift onto the single largest share so the sum is exactly
// 100.00. Ties break on investor id for determinism.
func (e *ShareEngine) assignPercentages(report *entities.ShareReport, total decimal.Decimal) {
	sum := decimal.Zero
	var largest *entities.ShareRecord
	for _, id := range sortedInvestorIDs(report.Records) {
		rec := report.Records[id]
		rec.SharePercentage = round2(rec.Contribution.Div(total).Mul(oneHundred))
		sum = sum.Add(rec.SharePercentage)
		if largest == nil || rec.Contribution.GreaterThan(largest.Contribution) {
			largest = rec
		}
	}

	if drift := oneHundred.Sub(sum); !drift.IsZero() && largest != nil {
		largest.SharePercentage = largest.SharePercentage.Add(drift)
	}
}

// applyMarkedValuation values each position at dctBalance x markPrice
// when both a price feed and a balance source are wired. Any failure
// degrades that record (or the whole report) to contribution-only.
func (e *ShareEngine) applyMarkedValuation(ctx context.Context, report *entities.ShareReport) {
	for _, rec := range report.Records {
		rec.MarkedValuation = rec.Contribution
	}
	if e.priceFeed == nil || e.balanceSource == nil || len(report.Records) == 0 {
		return
	}

	price, err := e.priceFeed.MarkPrice(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrPriceUnavailable) {
			logger.Warn(ctx, "mark price lookup failed", zap.Error(err))
		}
		return
	}
	report.MarkPrice = decimal.NewNullDecimal(price)

	investors, err := e.investorRepo.GetByIDs(ctx, sortedInvestorIDs(report.Records))
	if err != nil {
		logger.Warn(ctx, "investor lookup for valuation failed", zap.Error(err))
		return
	}

	for _, investor := range investors {
		rec, ok := report.Records[investor.ID]
		if !ok || investor.DCTWallet == "" {
			continue
		}
		balance, err := e.balanceSource.DCTBalance(ctx, investor.DCTWallet)
		if err != nil {
			logger.Warn(ctx, "dct balance read failed",
				zap.String("investor_id", investor.ID.String()),
				zap.Error(err),
			)
			continue
		}
		rec.DCTBalance = balance
		if balance.IsPositive() {
			rec.MarkedValuation = round2(balance.Mul(price))
		}
	}
}

func sortedInvestorIDs(records map[uuid.UUID]*entities.ShareRecord) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
