package usecases

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/pkg/utils"
)

// DepositUsecase records admin-entered capital inflows. Deposits are
// append-only; a correction is a new compensating entry, never an edit.
type DepositUsecase struct {
	depositRepo  repositories.DepositRepository
	directory    *InvestorDirectory
	cycleManager *CycleManager
}

func NewDepositUsecase(
	depositRepo repositories.DepositRepository,
	directory *InvestorDirectory,
	cycleManager *CycleManager,
) *DepositUsecase {
	return &DepositUsecase{
		depositRepo:  depositRepo,
		directory:    directory,
		cycleManager: cycleManager,
	}
}

// RecordDeposit credits an initial deposit to the investor in the
// active cycle, bootstrapping both investor and cycle when needed.
func (u *DepositUsecase) RecordDeposit(ctx context.Context, externalProfileID string, amount decimal.Decimal, notes string) (*entities.Deposit, error) {
	if !amount.IsPositive() {
		return nil, domainerrors.NewError("deposit amount must be positive", domainerrors.ErrInvalidAmount)
	}

	investor, err := u.directory.ResolveOrCreate(ctx, externalProfileID)
	if err != nil {
		return nil, err
	}
	cycle, err := u.cycleManager.GetOrCreateActive(ctx)
	if err != nil {
		return nil, err
	}

	deposit := &entities.Deposit{
		ID:         utils.GenerateUUIDv7(),
		InvestorID: investor.ID,
		CycleID:    cycle.ID,
		Amount:     amount,
		Type:       entities.DepositTypeInitial,
		Notes:      notes,
	}
	if err := u.depositRepo.Create(ctx, deposit); err != nil {
		return nil, err
	}
	return deposit, nil
}

// ListByInvestorAndCycle returns an investor's deposits within a cycle.
func (u *DepositUsecase) ListByInvestorAndCycle(ctx context.Context, investorID, cycleID uuid.UUID) ([]*entities.Deposit, error) {
	return u.depositRepo.GetByInvestorAndCycle(ctx, investorID, cycleID)
}

// ListByCycle returns all deposits within a cycle. The cycle reference
// may be "active" or a cycle id.
func (u *DepositUsecase) ListByCycle(ctx context.Context, cycleRef string) ([]*entities.Deposit, error) {
	cycle, err := resolveCycle(ctx, u.cycleManager, cycleRef)
	if err != nil {
		return nil, err
	}
	return u.depositRepo.GetByCycleID(ctx, cycle.ID)
}
