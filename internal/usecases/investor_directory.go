package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/pkg/utils"
)

// InvestorDirectory resolves ledger-side investor records from external
// account identities, creating them lazily on first interaction.
type InvestorDirectory struct {
	investorRepo repositories.InvestorRepository
}

func NewInvestorDirectory(investorRepo repositories.InvestorRepository) *InvestorDirectory {
	return &InvestorDirectory{investorRepo: investorRepo}
}

// ResolveOrCreate returns the investor for an external profile id,
// creating one when absent. A create lost to a concurrent resolve falls
// back to re-reading the winner's row.
func (d *InvestorDirectory) ResolveOrCreate(ctx context.Context, externalProfileID string) (*entities.Investor, error) {
	if externalProfileID == "" {
		return nil, domainerrors.BadRequest("external profile id is required")
	}

	investor, err := d.investorRepo.GetByExternalProfileID(ctx, externalProfileID)
	if err == nil {
		return investor, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	investor = &entities.Investor{
		ID:                utils.GenerateUUIDv7(),
		ExternalProfileID: externalProfileID,
	}
	if createErr := d.investorRepo.Create(ctx, investor); createErr != nil {
		return d.investorRepo.GetByExternalProfileID(ctx, externalProfileID)
	}
	return investor, nil
}

func (d *InvestorDirectory) GetByID(ctx context.Context, id uuid.UUID) (*entities.Investor, error) {
	return d.investorRepo.GetByID(ctx, id)
}

func (d *InvestorDirectory) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.InvestorProfileInput) (*entities.Investor, error) {
	if err := d.investorRepo.UpdateProfile(ctx, id, input.DCTWallet, input.TelegramChatID); err != nil {
		return nil, err
	}
	return d.investorRepo.GetByID(ctx, id)
}

func (d *InvestorDirectory) List(ctx context.Context) ([]*entities.Investor, error) {
	return d.investorRepo.List(ctx)
}
