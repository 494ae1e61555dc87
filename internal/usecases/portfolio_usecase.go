package usecases

import (
	"context"

	"poolfund.backend/internal/domain/entities"
	"poolfund.backend/internal/domain/repositories"
)

// Portfolio is an investor's view of their current position.
type Portfolio struct {
	Investor    *entities.Investor    `json:"investor"`
	ActiveCycle *entities.FundCycle   `json:"activeCycle"`
	Share       *entities.ShareRecord `json:"share"`
	Available   string                `json:"availableUsdt"`
	Deposits    []*entities.Deposit   `json:"deposits"`
}

// PortfolioUsecase assembles the investor dashboard read model.
type PortfolioUsecase struct {
	directory    *InvestorDirectory
	cycleManager *CycleManager
	shareEngine  *ShareEngine
	depositRepo  repositories.DepositRepository
}

func NewPortfolioUsecase(
	directory *InvestorDirectory,
	cycleManager *CycleManager,
	shareEngine *ShareEngine,
	depositRepo repositories.DepositRepository,
) *PortfolioUsecase {
	return &PortfolioUsecase{
		directory:    directory,
		cycleManager: cycleManager,
		shareEngine:  shareEngine,
		depositRepo:  depositRepo,
	}
}

// GetPortfolio resolves the caller's investor record and derives their
// position in the active cycle.
func (u *PortfolioUsecase) GetPortfolio(ctx context.Context, externalProfileID string) (*Portfolio, error) {
	investor, err := u.directory.ResolveOrCreate(ctx, externalProfileID)
	if err != nil {
		return nil, err
	}
	cycle, err := u.cycleManager.GetOrCreateActive(ctx)
	if err != nil {
		return nil, err
	}
	report, err := u.shareEngine.RecomputeShares(ctx, cycle.ID)
	if err != nil {
		return nil, err
	}
	deposits, err := u.depositRepo.GetByInvestorAndCycle(ctx, investor.ID, cycle.ID)
	if err != nil {
		return nil, err
	}

	return &Portfolio{
		Investor:    investor,
		ActiveCycle: cycle,
		Share:       report.Record(investor.ID),
		Available:   report.Available(investor.ID).StringFixed(2),
		Deposits:    deposits,
	}, nil
}

// GetCycleShares returns the full share distribution of a cycle.
func (u *PortfolioUsecase) GetCycleShares(ctx context.Context, cycleID string) (*entities.ShareReport, error) {
	cycle, err := resolveCycle(ctx, u.cycleManager, cycleID)
	if err != nil {
		return nil, err
	}
	return u.shareEngine.RecomputeShares(ctx, cycle.ID)
}
