package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"poolfund.backend/internal/domain/entities"
	"poolfund.backend/internal/infrastructure/models"
)

// DepositRepositoryImpl implements DepositRepository
type DepositRepositoryImpl struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepositoryImpl {
	return &DepositRepositoryImpl{db: db}
}

func (r *DepositRepositoryImpl) Create(ctx context.Context, deposit *entities.Deposit) error {
	return GetDB(ctx, r.db).WithContext(ctx).Create(depositToModel(deposit)).Error
}

func (r *DepositRepositoryImpl) CreateBatch(ctx context.Context, deposits []*entities.Deposit) error {
	if len(deposits) == 0 {
		return nil
	}
	ms := make([]*models.Deposit, 0, len(deposits))
	for _, d := range deposits {
		ms = append(ms, depositToModel(d))
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(ms).Error
}

func (r *DepositRepositoryImpl) GetByCycleID(ctx context.Context, cycleID uuid.UUID) ([]*entities.Deposit, error) {
	var ms []models.Deposit
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return depositsToEntities(ms), nil
}

func (r *DepositRepositoryImpl) GetByInvestorAndCycle(ctx context.Context, investorID, cycleID uuid.UUID) ([]*entities.Deposit, error) {
	var ms []models.Deposit
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("investor_id = ? AND cycle_id = ?", investorID, cycleID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return depositsToEntities(ms), nil
}

func depositToModel(d *entities.Deposit) *models.Deposit {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &models.Deposit{
		ID:          d.ID,
		InvestorID:  d.InvestorID,
		CycleID:     d.CycleID,
		Amount:      d.Amount,
		DepositType: string(d.Type),
		Notes:       d.Notes,
		CreatedAt:   createdAt,
	}
}

func depositsToEntities(ms []models.Deposit) []*entities.Deposit {
	var deposits []*entities.Deposit
	for _, m := range ms {
		deposits = append(deposits, &entities.Deposit{
			ID:         m.ID,
			InvestorID: m.InvestorID,
			CycleID:    m.CycleID,
			Amount:     m.Amount,
			Type:       entities.DepositType(m.DepositType),
			Notes:      m.Notes,
			CreatedAt:  m.CreatedAt,
		})
	}
	return deposits
}
