package repositories

import (
	"context"

	"github.com/google/uuid"
	"poolfund.backend/internal/domain/entities"
)

// DepositRepository interface. Deposits are append-only.
type DepositRepository interface {
	Create(ctx context.Context, deposit *entities.Deposit) error
	CreateBatch(ctx context.Context, deposits []*entities.Deposit) error
	GetByCycleID(ctx context.Context, cycleID uuid.UUID) ([]*entities.Deposit, error)
	GetByInvestorAndCycle(ctx context.Context, investorID, cycleID uuid.UUID) ([]*entities.Deposit, error)
}
