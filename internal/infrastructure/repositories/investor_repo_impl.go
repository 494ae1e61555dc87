package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/infrastructure/models"
)

// InvestorRepositoryImpl implements InvestorRepository
type InvestorRepositoryImpl struct {
	db *gorm.DB
}

func NewInvestorRepository(db *gorm.DB) *InvestorRepositoryImpl {
	return &InvestorRepositoryImpl{db: db}
}

func (r *InvestorRepositoryImpl) Create(ctx context.Context, investor *entities.Investor) error {
	m := &models.Investor{
		ID:                investor.ID,
		ExternalProfileID: investor.ExternalProfileID,
		DCTWallet:         investor.DCTWallet,
		TelegramChatID:    investor.TelegramChatID,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *InvestorRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Investor, error) {
	var m models.Investor
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return investorToEntity(&m), nil
}

func (r *InvestorRepositoryImpl) GetByExternalProfileID(ctx context.Context, externalProfileID string) (*entities.Investor, error) {
	var m models.Investor
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("external_profile_id = ?", externalProfileID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return investorToEntity(&m), nil
}

// LockByID takes a FOR UPDATE lock on the investor row. Must run inside
// a UnitOfWork transaction; on sqlite (tests) the clause is skipped
// because the single writer connection already serializes.
func (r *InvestorRepositoryImpl) LockByID(ctx context.Context, id uuid.UUID) (*entities.Investor, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var m models.Investor
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return investorToEntity(&m), nil
}

func (r *InvestorRepositoryImpl) UpdateProfile(ctx context.Context, id uuid.UUID, dctWallet, telegramChatID string) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Investor{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"dct_wallet":       dctWallet,
			"telegram_chat_id": telegramChatID,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *InvestorRepositoryImpl) List(ctx context.Context) ([]*entities.Investor, error) {
	var ms []models.Investor
	if err := GetDB(ctx, r.db).WithContext(ctx).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	var investors []*entities.Investor
	for _, m := range ms {
		model := m
		investors = append(investors, investorToEntity(&model))
	}
	return investors, nil
}

func (r *InvestorRepositoryImpl) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Investor, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var ms []models.Investor
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}

	var investors []*entities.Investor
	for _, m := range ms {
		model := m
		investors = append(investors, investorToEntity(&model))
	}
	return investors, nil
}

func investorToEntity(m *models.Investor) *entities.Investor {
	return &entities.Investor{
		ID:                m.ID,
		ExternalProfileID: m.ExternalProfileID,
		DCTWallet:         m.DCTWallet,
		TelegramChatID:    m.TelegramChatID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
