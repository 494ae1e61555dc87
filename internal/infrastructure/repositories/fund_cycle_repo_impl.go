package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	domainRepos "poolfund.backend/internal/domain/repositories"
	"poolfund.backend/internal/infrastructure/models"
)

// FundCycleRepositoryImpl implements FundCycleRepository
type FundCycleRepositoryImpl struct {
	db *gorm.DB
}

func NewFundCycleRepository(db *gorm.DB) *FundCycleRepositoryImpl {
	return &FundCycleRepositoryImpl{db: db}
}

func (r *FundCycleRepositoryImpl) Create(ctx context.Context, cycle *entities.FundCycle) error {
	m := &models.FundCycle{
		ID:         cycle.ID,
		CycleMonth: cycle.CycleMonth,
		CycleYear:  cycle.CycleYear,
		Status:     string(cycle.Status),
		OpenedAt:   cycle.OpenedAt,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *FundCycleRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.FundCycle, error) {
	var m models.FundCycle
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return cycleToEntity(&m), nil
}

func (r *FundCycleRepositoryImpl) GetActive(ctx context.Context) (*entities.FundCycle, error) {
	return r.getActive(ctx, false)
}

// GetActiveForUpdate locks the active cycle row for the duration of the
// surrounding transaction. Guards double-settlement.
func (r *FundCycleRepositoryImpl) GetActiveForUpdate(ctx context.Context) (*entities.FundCycle, error) {
	return r.getActive(ctx, true)
}

func (r *FundCycleRepositoryImpl) getActive(ctx context.Context, forUpdate bool) (*entities.FundCycle, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)
	if forUpdate && db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var m models.FundCycle
	if err := db.Where("status = ?", entities.CycleStatusActive).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNoActiveCycle
		}
		return nil, err
	}
	return cycleToEntity(&m), nil
}

// CloseSettled transitions active->settled with a compare-and-set on
// status so a concurrent or repeated settlement cannot close the same
// cycle twice.
func (r *FundCycleRepositoryImpl) CloseSettled(ctx context.Context, id uuid.UUID, totals domainRepos.CycleTotals) error {
	now := time.Now()
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.FundCycle{}).
		Where("id = ? AND status = ?", id, entities.CycleStatusActive).
		Updates(map[string]interface{}{
			"status":                entities.CycleStatusSettled,
			"closed_at":             now,
			"profit_total":          totals.ProfitTotal,
			"investor_payout_total": totals.InvestorPayoutTotal,
			"reinvested_total":      totals.ReinvestedTotal,
			"performance_fee_total": totals.PerformanceFeeTotal,
			"payout_summary":        totals.PayoutSummary,
			"updated_at":            now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAlreadySettled
	}
	return nil
}

func (r *FundCycleRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*entities.FundCycle, int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.FundCycle{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.FundCycle
	if err := db.Order("cycle_year DESC, cycle_month DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var cycles []*entities.FundCycle
	for _, m := range ms {
		model := m
		cycles = append(cycles, cycleToEntity(&model))
	}
	return cycles, total, nil
}

func cycleToEntity(m *models.FundCycle) *entities.FundCycle {
	return &entities.FundCycle{
		ID:                  m.ID,
		CycleMonth:          m.CycleMonth,
		CycleYear:           m.CycleYear,
		Status:              entities.CycleStatus(m.Status),
		OpenedAt:            m.OpenedAt,
		ClosedAt:            null.TimeFromPtr(m.ClosedAt),
		ProfitTotal:         m.ProfitTotal,
		InvestorPayoutTotal: m.InvestorPayoutTotal,
		ReinvestedTotal:     m.ReinvestedTotal,
		PerformanceFeeTotal: m.PerformanceFeeTotal,
		PayoutSummary:       m.PayoutSummary,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
