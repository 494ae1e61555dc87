package repositories

import (
	"context"

	"github.com/google/uuid"
	"poolfund.backend/internal/domain/entities"
)

// InvestorRepository interface
type InvestorRepository interface {
	Create(ctx context.Context, investor *entities.Investor) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Investor, error)
	GetByExternalProfileID(ctx context.Context, externalProfileID string) (*entities.Investor, error)
	// LockByID takes a row-level lock on the investor inside the current
	// transaction. Serializes recompute-then-check withdrawal requests.
	LockByID(ctx context.Context, id uuid.UUID) (*entities.Investor, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, dctWallet, telegramChatID string) error
	List(ctx context.Context) ([]*entities.Investor, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Investor, error)
}
