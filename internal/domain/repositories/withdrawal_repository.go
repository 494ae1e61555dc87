package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"poolfund.backend/internal/domain/entities"
)

// WithdrawalRepository interface. Status transitions are compare-and-set:
// Approve/Deny succeed only while the row is still pending.
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *entities.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error)
	GetApprovedByCycle(ctx context.Context, cycleID uuid.UUID) ([]*entities.Withdrawal, error)
	GetByInvestorID(ctx context.Context, investorID uuid.UUID, limit, offset int) ([]*entities.Withdrawal, int64, error)
	List(ctx context.Context, status entities.WithdrawalStatus, limit, offset int) ([]*entities.Withdrawal, int64, error)
	// Approve transitions pending->approved atomically, persisting the
	// split amounts. Returns ErrAlreadyProcessed when the row is no
	// longer pending.
	Approve(ctx context.Context, id uuid.UUID, netAmount, reinvestedAmount decimal.Decimal, adminNotes string, fulfilledAt time.Time) error
	// Deny transitions pending->denied atomically.
	Deny(ctx context.Context, id uuid.UUID, adminNotes string, fulfilledAt time.Time) error
	// SetOnchainTxHash records the bridge tx hash after the approval has
	// committed. Best-effort bookkeeping, not part of the transition.
	SetOnchainTxHash(ctx context.Context, id uuid.UUID, txHash string) error
	GetNoticeElapsedPending(ctx context.Context, asOf time.Time, limit int) ([]*entities.Withdrawal, error)
	MarkNoticeAlerted(ctx context.Context, ids []uuid.UUID, alertedAt time.Time) error
}
