package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/internal/usecases"
	"poolfund.backend/pkg/utils"
)

type settlementFixture struct {
	l          *ledger
	usecase    *usecases.SettlementUsecase
	dispatcher *stubDispatcher
	investorA  *entities.Investor
	investorB  *entities.Investor
	cycle      *entities.FundCycle
}

// newSettlementFixture seeds the canonical two-investor pool: A holds
// 6000, B holds 4000 in the active cycle.
func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	l := newLedger(t)
	ctx := context.Background()

	investorA := &entities.Investor{ID: utils.GenerateUUIDv7(), ExternalProfileID: "profile-a", TelegramChatID: "111"}
	investorB := &entities.Investor{ID: utils.GenerateUUIDv7(), ExternalProfileID: "profile-b", TelegramChatID: "222"}
	require.NoError(t, l.investorRepo.Create(ctx, investorA))
	require.NoError(t, l.investorRepo.Create(ctx, investorB))

	cycle := seedActiveCycle(t, l)
	seedDeposit(t, l, investorA.ID, cycle.ID, "6000")
	seedDeposit(t, l, investorB.ID, cycle.ID, "4000")

	dispatcher := &stubDispatcher{}
	usecase := usecases.NewSettlementUsecase(
		l.uow,
		l.cycleRepo,
		l.depositRepo,
		l.investorRepo,
		l.shareEngine(nil, nil),
		dispatcher,
		testPolicy(),
	)
	return &settlementFixture{
		l:          l,
		usecase:    usecase,
		dispatcher: dispatcher,
		investorA:  investorA,
		investorB:  investorB,
		cycle:      cycle,
	}
}

func (f *settlementFixture) line(t *testing.T, result *usecases.SettlementResult, investorID uuid.UUID) entities.PayoutLine {
	t.Helper()
	for _, l := range result.PayoutLines {
		if l.InvestorID == investorID {
			return l
		}
	}
	t.Fatalf("no payout line for investor %s", investorID)
	return entities.PayoutLine{}
}

func TestSettleCycle_SplitsProfit(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	result, err := f.usecase.SettleCycle(ctx, decimal.NewFromInt(1000), "june close")
	require.NoError(t, err)

	lineA := f.line(t, result, f.investorA.ID)
	assert.True(t, lineA.Gross.Equal(decimal.NewFromInt(600)))
	assert.True(t, lineA.Payout.Equal(decimal.NewFromInt(384)))
	assert.True(t, lineA.Reinvested.Equal(decimal.NewFromInt(96)))
	assert.True(t, lineA.PerformanceFee.Equal(decimal.NewFromInt(120)))

	lineB := f.line(t, result, f.investorB.ID)
	assert.True(t, lineB.Gross.Equal(decimal.NewFromInt(400)))
	assert.True(t, lineB.Payout.Equal(decimal.NewFromInt(256)))
	assert.True(t, lineB.Reinvested.Equal(decimal.NewFromInt(64)))
	assert.True(t, lineB.PerformanceFee.Equal(decimal.NewFromInt(80)))

	settled := result.SettledCycle
	assert.Equal(t, entities.CycleStatusSettled, settled.Status)
	assert.True(t, settled.ProfitTotal.Decimal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, settled.InvestorPayoutTotal.Decimal.Equal(decimal.NewFromInt(640)))
	assert.True(t, settled.ReinvestedTotal.Decimal.Equal(decimal.NewFromInt(160)))
	assert.True(t, settled.PerformanceFeeTotal.Decimal.Equal(decimal.NewFromInt(200)))
	assert.NotEmpty(t, settled.PayoutSummary)

	// Payout + reinvested + fee together account for the whole profit.
	accounted := settled.InvestorPayoutTotal.Decimal.
		Add(settled.ReinvestedTotal.Decimal).
		Add(settled.PerformanceFeeTotal.Decimal)
	assert.True(t, accounted.Equal(decimal.NewFromInt(1000)))
}

func TestSettleCycle_SeedsNextCycle(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	result, err := f.usecase.SettleCycle(ctx, decimal.NewFromInt(1000), "")
	require.NoError(t, err)

	next := result.NextCycle
	require.NotNil(t, next)
	assert.Equal(t, entities.CycleStatusActive, next.Status)
	wantMonth, wantYear := f.cycle.NextCalendarMonth()
	assert.Equal(t, wantMonth, next.CycleMonth)
	assert.Equal(t, wantYear, next.CycleYear)

	// A: 6000 carryover + 96 reinvested; B: 4000 + 64.
	depositsA, err := f.l.depositRepo.GetByInvestorAndCycle(ctx, f.investorA.ID, next.ID)
	require.NoError(t, err)
	require.Len(t, depositsA, 2)

	shares := result.NextShares
	recA := shares.Record(f.investorA.ID)
	recB := shares.Record(f.investorB.ID)
	assert.True(t, recA.Contribution.Equal(decimal.NewFromInt(6096)))
	assert.True(t, recB.Contribution.Equal(decimal.NewFromInt(4064)))
	// 6096/10160 happens to land on 60% exactly.
	assert.True(t, recA.SharePercentage.Equal(decimal.NewFromInt(60)), "got %s", recA.SharePercentage)
	assert.True(t, recB.SharePercentage.Equal(decimal.NewFromInt(40)), "got %s", recB.SharePercentage)
	assert.True(t, recA.SharePercentage.Add(recB.SharePercentage).Equal(decimal.NewFromInt(100)))
}

func TestSettleCycle_SecondRunFails(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	_, err := f.usecase.SettleCycle(ctx, decimal.NewFromInt(1000), "")
	require.NoError(t, err)

	// The second run settles the freshly opened cycle, not the old one,
	// so settle that and then re-check the old row stays untouched.
	settledOnce, err := f.l.cycleRepo.GetByID(ctx, f.cycle.ID)
	require.NoError(t, err)
	err = f.l.cycleRepo.CloseSettled(ctx, f.cycle.ID, repositories.CycleTotals{})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadySettled)
	assert.True(t, settledOnce.ProfitTotal.Decimal.Equal(decimal.NewFromInt(1000)))
}

func TestSettleCycle_NoActiveCycle(t *testing.T) {
	l := newLedger(t)
	usecase := usecases.NewSettlementUsecase(
		l.uow, l.cycleRepo, l.depositRepo, l.investorRepo,
		l.shareEngine(nil, nil), &stubDispatcher{}, testPolicy(),
	)

	_, err := usecase.SettleCycle(context.Background(), decimal.NewFromInt(1000), "")
	assert.ErrorIs(t, err, domainerrors.ErrNoActiveCycle)
}

func TestSettleCycle_NegativeProfitAccepted(t *testing.T) {
	f := newSettlementFixture(t)

	result, err := f.usecase.SettleCycle(context.Background(), decimal.NewFromInt(-500), "drawdown")
	require.NoError(t, err)

	lineA := f.line(t, result, f.investorA.ID)
	assert.True(t, lineA.Gross.Equal(decimal.NewFromInt(-300)))
	assert.True(t, lineA.Payout.Equal(decimal.NewFromInt(-192)))
	assert.True(t, result.SettledCycle.ProfitTotal.Decimal.Equal(decimal.NewFromInt(-500)))
}

func TestSettleCycle_EmptyPoolStillRolls(t *testing.T) {
	l := newLedger(t)
	seedActiveCycle(t, l)
	usecase := usecases.NewSettlementUsecase(
		l.uow, l.cycleRepo, l.depositRepo, l.investorRepo,
		l.shareEngine(nil, nil), &stubDispatcher{}, testPolicy(),
	)

	result, err := usecase.SettleCycle(context.Background(), decimal.Zero, "")
	require.NoError(t, err)
	assert.Empty(t, result.PayoutLines)
	assert.Equal(t, entities.CycleStatusSettled, result.SettledCycle.Status)
	assert.Equal(t, entities.CycleStatusActive, result.NextCycle.Status)
}

func TestSettleCycleByID_RetryOnSettledCycle(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	_, err := f.usecase.SettleCycleByID(ctx, f.cycle.ID, decimal.NewFromInt(1000), "")
	require.NoError(t, err)

	// Resubmitting the same settlement hits the settled row, not the
	// freshly opened cycle.
	_, err = f.usecase.SettleCycleByID(ctx, f.cycle.ID, decimal.NewFromInt(1000), "")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadySettled)
}

func TestSettleCycleByID_UnknownCycle(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.usecase.SettleCycleByID(context.Background(), utils.GenerateUUIDv7(), decimal.NewFromInt(1000), "")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSettleCycle_NegativeProfitShrinksNextStake(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	result, err := f.usecase.SettleCycle(ctx, decimal.NewFromInt(-500), "")
	require.NoError(t, err)

	// A: 6000 carryover - 48 reinvestment (16% of -300).
	recA := result.NextShares.Record(f.investorA.ID)
	assert.True(t, recA.Contribution.Equal(decimal.NewFromInt(5952)), "got %s", recA.Contribution)
}

func TestSettleCycle_NotifiesInvestorsWithChatIDs(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.usecase.SettleCycle(context.Background(), decimal.NewFromInt(1000), "")
	require.NoError(t, err)

	require.Len(t, f.dispatcher.sent, 2)
	assert.Contains(t, f.dispatcher.sent[0], "111")
	assert.Contains(t, f.dispatcher.sent[0], "384.00")
	assert.Contains(t, f.dispatcher.sent[1], "222")
	assert.Contains(t, f.dispatcher.sent[1], "256.00")
}

func TestSettleCycle_NotificationFailureDoesNotFailSettlement(t *testing.T) {
	f := newSettlementFixture(t)
	f.dispatcher.err = assert.AnError

	result, err := f.usecase.SettleCycle(context.Background(), decimal.NewFromInt(1000), "")
	require.NoError(t, err)
	assert.Equal(t, entities.CycleStatusSettled, result.SettledCycle.Status)
}
