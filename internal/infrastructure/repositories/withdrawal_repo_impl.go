package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/infrastructure/models"
)

// WithdrawalRepositoryImpl implements WithdrawalRepository
type WithdrawalRepositoryImpl struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepositoryImpl {
	return &WithdrawalRepositoryImpl{db: db}
}

func (r *WithdrawalRepositoryImpl) Create(ctx context.Context, withdrawal *entities.Withdrawal) error {
	m := &models.Withdrawal{
		ID:              withdrawal.ID,
		InvestorID:      withdrawal.InvestorID,
		CycleID:         withdrawal.CycleID,
		AmountRequested: withdrawal.AmountRequested,
		Status:          string(withdrawal.Status),
		NoticeExpiresAt: withdrawal.NoticeExpiresAt,
		RequestedAt:     withdrawal.RequestedAt,
		UpdatedAt:       time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *WithdrawalRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error) {
	var m models.Withdrawal
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return withdrawalToEntity(&m), nil
}

func (r *WithdrawalRepositoryImpl) GetApprovedByCycle(ctx context.Context, cycleID uuid.UUID) ([]*entities.Withdrawal, error) {
	var ms []models.Withdrawal
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("cycle_id = ? AND status = ?", cycleID, entities.WithdrawalStatusApproved).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return withdrawalsToEntities(ms), nil
}

func (r *WithdrawalRepositoryImpl) GetByInvestorID(ctx context.Context, investorID uuid.UUID, limit, offset int) ([]*entities.Withdrawal, int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Withdrawal{}).
		Where("investor_id = ?", investorID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Withdrawal
	if err := db.Where("investor_id = ?", investorID).
		Order("requested_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return withdrawalsToEntities(ms), total, nil
}

func (r *WithdrawalRepositoryImpl) List(ctx context.Context, status entities.WithdrawalStatus, limit, offset int) ([]*entities.Withdrawal, int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)
	query := db.Model(&models.Withdrawal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := db.Order("requested_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		listQuery = listQuery.Where("status = ?", status)
	}

	var ms []models.Withdrawal
	if err := listQuery.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return withdrawalsToEntities(ms), total, nil
}

// Approve transitions pending->approved. The status guard in the WHERE
// clause makes a second approval (or a race) report ErrAlreadyProcessed
// instead of double-crediting.
func (r *WithdrawalRepositoryImpl) Approve(ctx context.Context, id uuid.UUID, netAmount, reinvestedAmount decimal.Decimal, adminNotes string, fulfilledAt time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, entities.WithdrawalStatusPending).
		Updates(map[string]interface{}{
			"status":            entities.WithdrawalStatusApproved,
			"net_amount":        netAmount,
			"reinvested_amount": reinvestedAmount,
			"admin_notes":       adminNotes,
			"fulfilled_at":      fulfilledAt,
			"updated_at":        time.Now(),
		})
	return r.transitionResult(ctx, result, id)
}

// Deny transitions pending->denied. No money movement.
func (r *WithdrawalRepositoryImpl) Deny(ctx context.Context, id uuid.UUID, adminNotes string, fulfilledAt time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, entities.WithdrawalStatusPending).
		Updates(map[string]interface{}{
			"status":       entities.WithdrawalStatusDenied,
			"admin_notes":  adminNotes,
			"fulfilled_at": fulfilledAt,
			"updated_at":   time.Now(),
		})
	return r.transitionResult(ctx, result, id)
}

func (r *WithdrawalRepositoryImpl) transitionResult(ctx context.Context, result *gorm.DB, id uuid.UUID) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing row from a finished one.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domainerrors.ErrAlreadyProcessed
	}
	return nil
}

func (r *WithdrawalRepositoryImpl) SetOnchainTxHash(ctx context.Context, id uuid.UUID, txHash string) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"onchain_tx_hash": txHash,
			"updated_at":      time.Now(),
		}).Error
}

func (r *WithdrawalRepositoryImpl) GetNoticeElapsedPending(ctx context.Context, asOf time.Time, limit int) ([]*entities.Withdrawal, error) {
	var ms []models.Withdrawal
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ? AND notice_expires_at < ? AND notice_alerted_at IS NULL", entities.WithdrawalStatusPending, asOf).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return withdrawalsToEntities(ms), nil
}

func (r *WithdrawalRepositoryImpl) MarkNoticeAlerted(ctx context.Context, ids []uuid.UUID, alertedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"notice_alerted_at": alertedAt,
			"updated_at":        time.Now(),
		}).Error
}

func withdrawalToEntity(m *models.Withdrawal) *entities.Withdrawal {
	return &entities.Withdrawal{
		ID:               m.ID,
		InvestorID:       m.InvestorID,
		CycleID:          m.CycleID,
		AmountRequested:  m.AmountRequested,
		Status:           entities.WithdrawalStatus(m.Status),
		NoticeExpiresAt:  m.NoticeExpiresAt,
		RequestedAt:      m.RequestedAt,
		FulfilledAt:      null.TimeFromPtr(m.FulfilledAt),
		NetAmount:        m.NetAmount,
		ReinvestedAmount: m.ReinvestedAmount,
		AdminNotes:       m.AdminNotes,
		OnchainTxHash:    null.NewString(m.OnchainTxHash, m.OnchainTxHash != ""),
		NoticeAlertedAt:  null.TimeFromPtr(m.NoticeAlertedAt),
		UpdatedAt:        m.UpdatedAt,
	}
}

func withdrawalsToEntities(ms []models.Withdrawal) []*entities.Withdrawal {
	var withdrawals []*entities.Withdrawal
	for _, m := range ms {
		model := m
		withdrawals = append(withdrawals, withdrawalToEntity(&model))
	}
	return withdrawals
}
