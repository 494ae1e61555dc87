package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/pkg/utils"
)

// CycleManager owns the fund cycle lifecycle. The store's partial
// unique index keeps at most one cycle active; this type never caches
// the active cycle in memory.
type CycleManager struct {
	cycleRepo repositories.FundCycleRepository
}

func NewCycleManager(cycleRepo repositories.FundCycleRepository) *CycleManager {
	return &CycleManager{cycleRepo: cycleRepo}
}

// GetOrCreateActive returns the active cycle, bootstrapping one for the
// current calendar month when none exists. A create lost to a
// concurrent bootstrap falls back to re-reading the winner's row.
func (m *CycleManager) GetOrCreateActive(ctx context.Context) (*entities.FundCycle, error) {
	cycle, err := m.cycleRepo.GetActive(ctx)
	if err == nil {
		return cycle, nil
	}
	if !errors.Is(err, domainerrors.ErrNoActiveCycle) {
		return nil, err
	}

	now := time.Now()
	cycle = &entities.FundCycle{
		ID:         utils.GenerateUUIDv7(),
		CycleMonth: int(now.Month()),
		CycleYear:  now.Year(),
		Status:     entities.CycleStatusActive,
		OpenedAt:   now,
	}
	if createErr := m.cycleRepo.Create(ctx, cycle); createErr != nil {
		return m.cycleRepo.GetActive(ctx)
	}
	return cycle, nil
}

func (m *CycleManager) GetActive(ctx context.Context) (*entities.FundCycle, error) {
	return m.cycleRepo.GetActive(ctx)
}

func (m *CycleManager) GetByID(ctx context.Context, id uuid.UUID) (*entities.FundCycle, error) {
	return m.cycleRepo.GetByID(ctx, id)
}

func (m *CycleManager) List(ctx context.Context, limit, offset int) ([]*entities.FundCycle, int64, error) {
	return m.cycleRepo.List(ctx, limit, offset)
}

// resolveCycle maps a path reference to a cycle: "active" or a cycle id.
func resolveCycle(ctx context.Context, m *CycleManager, ref string) (*entities.FundCycle, error) {
	if ref == "" || ref == "active" {
		return m.GetActive(ctx)
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid cycle id")
	}
	return m.GetByID(ctx, id)
}
