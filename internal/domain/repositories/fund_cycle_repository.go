package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"poolfund.backend/internal/domain/entities"
)

// CycleTotals carries the aggregate figures persisted at settlement.
type CycleTotals struct {
	ProfitTotal         decimal.Decimal
	InvestorPayoutTotal decimal.Decimal
	ReinvestedTotal     decimal.Decimal
	PerformanceFeeTotal decimal.Decimal
	PayoutSummary       string // JSON array of payout lines
}

// FundCycleRepository interface. The store enforces that at most one
// cycle has status=active (partial unique index).
type FundCycleRepository interface {
	Create(ctx context.Context, cycle *entities.FundCycle) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.FundCycle, error)
	GetActive(ctx context.Context) (*entities.FundCycle, error)
	// GetActiveForUpdate locks the active cycle row inside the current
	// transaction (FOR UPDATE).
	GetActiveForUpdate(ctx context.Context) (*entities.FundCycle, error)
	// CloseSettled transitions the cycle from active to settled with a
	// compare-and-set on status. Returns ErrAlreadySettled when the row
	// was not active anymore.
	CloseSettled(ctx context.Context, id uuid.UUID, totals CycleTotals) error
	List(ctx context.Context, limit, offset int) ([]*entities.FundCycle, int64, error)
}
