package usecases_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"poolfund.backend/internal/config"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/internal/infrastructure/repositories"
	"poolfund.backend/internal/usecases"
)

// ledger bundles the sqlite-backed stack the usecases run against.
type ledger struct {
	db             *gorm.DB
	uow            domainUoW
	userRepo       *repositories.UserRepositoryImpl
	investorRepo   *repositories.InvestorRepositoryImpl
	cycleRepo      *repositories.FundCycleRepositoryImpl
	depositRepo    *repositories.DepositRepositoryImpl
	withdrawalRepo *repositories.WithdrawalRepositoryImpl
}

type domainUoW interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")

	stmts := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE investors (
			id TEXT PRIMARY KEY,
			external_profile_id TEXT NOT NULL UNIQUE,
			dct_wallet TEXT,
			telegram_chat_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE fund_cycles (
			id TEXT PRIMARY KEY,
			cycle_month INTEGER NOT NULL,
			cycle_year INTEGER NOT NULL,
			status TEXT NOT NULL,
			opened_at DATETIME NOT NULL,
			closed_at DATETIME,
			profit_total TEXT,
			investor_payout_total TEXT,
			reinvested_total TEXT,
			performance_fee_total TEXT,
			payout_summary TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE UNIQUE INDEX idx_fund_cycles_single_active
			ON fund_cycles (status) WHERE status = 'active';`,
		`CREATE TABLE deposits (
			id TEXT PRIMARY KEY,
			investor_id TEXT NOT NULL,
			cycle_id TEXT NOT NULL,
			amount TEXT NOT NULL,
			deposit_type TEXT NOT NULL,
			notes TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE withdrawals (
			id TEXT PRIMARY KEY,
			investor_id TEXT NOT NULL,
			cycle_id TEXT NOT NULL,
			amount_requested TEXT NOT NULL,
			status TEXT NOT NULL,
			notice_expires_at DATETIME NOT NULL,
			requested_at DATETIME NOT NULL,
			fulfilled_at DATETIME,
			net_amount TEXT,
			reinvested_amount TEXT,
			admin_notes TEXT,
			onchain_tx_hash TEXT,
			notice_alerted_at DATETIME,
			updated_at DATETIME
		);`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return &ledger{
		db:             db,
		uow:            repositories.NewUnitOfWork(db),
		userRepo:       repositories.NewUserRepository(db),
		investorRepo:   repositories.NewInvestorRepository(db),
		cycleRepo:      repositories.NewFundCycleRepository(db),
		depositRepo:    repositories.NewDepositRepository(db),
		withdrawalRepo: repositories.NewWithdrawalRepository(db),
	}
}

func testPolicy() config.PolicyConfig {
	return config.PolicyConfig{
		WithdrawalPayoutRate:   decimal.NewFromFloat(0.84),
		WithdrawalReinvestRate: decimal.NewFromFloat(0.16),
		ProfitInvestorRate:     decimal.NewFromFloat(0.64),
		ProfitReinvestRate:     decimal.NewFromFloat(0.16),
		ProfitFeeRate:          decimal.NewFromFloat(0.20),
		WithdrawalNoticePeriod: 7 * 24 * time.Hour,
	}
}

func (l *ledger) shareEngine(priceFeed services.PriceFeed, balanceSource services.BalanceSource) *usecases.ShareEngine {
	return usecases.NewShareEngine(l.depositRepo, l.withdrawalRepo, l.investorRepo, priceFeed, balanceSource)
}

func (l *ledger) directory() *usecases.InvestorDirectory {
	return usecases.NewInvestorDirectory(l.investorRepo)
}

func (l *ledger) cycleManager() *usecases.CycleManager {
	return usecases.NewCycleManager(l.cycleRepo)
}

func timeNow() time.Time { return time.Now() }

var errPriceDown = services.ErrPriceUnavailable

// stubPriceFeed returns a fixed mark price.
type stubPriceFeed struct {
	price decimal.Decimal
	err   error
}

func (s *stubPriceFeed) MarkPrice(_ context.Context) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

// stubBalanceSource returns fixed DCT balances keyed by wallet.
type stubBalanceSource struct {
	balances map[string]decimal.Decimal
}

func (s *stubBalanceSource) DCTBalance(_ context.Context, wallet string) (decimal.Decimal, error) {
	return s.balances[wallet], nil
}

// stubBridge records release calls.
type stubBridge struct {
	calls  []services.ReleaseInput
	txHash string
	err    error
}

func (s *stubBridge) Release(_ context.Context, input services.ReleaseInput) (*services.ReleaseResult, error) {
	s.calls = append(s.calls, input)
	if s.err != nil {
		return nil, s.err
	}
	return &services.ReleaseResult{TxHash: s.txHash}, nil
}

// stubDispatcher records notifications.
type stubDispatcher struct {
	sent []string
	err  error
}

func (s *stubDispatcher) Notify(_ context.Context, recipient, message string) error {
	s.sent = append(s.sent, recipient+": "+message)
	return s.err
}
