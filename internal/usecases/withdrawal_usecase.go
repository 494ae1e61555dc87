package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"poolfund.backend/internal/config"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/domain/repositories"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/pkg/logger"
	"poolfund.backend/pkg/utils"
)

// WithdrawalDecision is the result of an admin decision, including the
// investor's refreshed position after an approval.
type WithdrawalDecision struct {
	Withdrawal   *entities.Withdrawal  `json:"withdrawal"`
	UpdatedShare *entities.ShareRecord `json:"updatedShare,omitempty"`
}

// WithdrawalUsecase implements the request/approve/deny workflow. The
// recompute-then-check path of a request runs inside one transaction
// under a row lock on the investor, so two racing requests cannot
// jointly overcommit one balance.
type WithdrawalUsecase struct {
	uow            repositories.UnitOfWork
	withdrawalRepo repositories.WithdrawalRepository
	investorRepo   repositories.InvestorRepository
	directory      *InvestorDirectory
	cycleManager   *CycleManager
	shareEngine    *ShareEngine
	bridge         services.AllocatorBridge
	priceFeed      services.PriceFeed
	dispatcher     services.NotificationDispatcher
	policy         config.PolicyConfig
}

func NewWithdrawalUsecase(
	uow repositories.UnitOfWork,
	withdrawalRepo repositories.WithdrawalRepository,
	investorRepo repositories.InvestorRepository,
	directory *InvestorDirectory,
	cycleManager *CycleManager,
	shareEngine *ShareEngine,
	bridge services.AllocatorBridge,
	priceFeed services.PriceFeed,
	dispatcher services.NotificationDispatcher,
	policy config.PolicyConfig,
) *WithdrawalUsecase {
	if policy.WithdrawalNoticePeriod == 0 {
		policy.WithdrawalNoticePeriod = defaultNoticePeriod
	}
	return &WithdrawalUsecase{
		uow:            uow,
		withdrawalRepo: withdrawalRepo,
		investorRepo:   investorRepo,
		directory:      directory,
		cycleManager:   cycleManager,
		shareEngine:    shareEngine,
		bridge:         bridge,
		priceFeed:      priceFeed,
		dispatcher:     dispatcher,
		policy:         policy,
	}
}

// RequestWithdrawal validates the amount against the investor's
// available balance and creates a pending request with a notice period.
func (u *WithdrawalUsecase) RequestWithdrawal(ctx context.Context, externalProfileID string, amount decimal.Decimal, notes string) (*entities.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, domainerrors.NewError("withdrawal amount must be positive", domainerrors.ErrInvalidAmount)
	}

	investor, err := u.directory.ResolveOrCreate(ctx, externalProfileID)
	if err != nil {
		return nil, err
	}

	var withdrawal *entities.Withdrawal
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		// Serializes concurrent requests from the same investor.
		if _, err := u.investorRepo.LockByID(txCtx, investor.ID); err != nil {
			return err
		}

		cycle, err := u.cycleManager.GetOrCreateActive(txCtx)
		if err != nil {
			return err
		}

		report, err := u.shareEngine.RecomputeShares(txCtx, cycle.ID)
		if err != nil {
			return err
		}

		available := report.Available(investor.ID)
		if !available.IsPositive() {
			return domainerrors.NewError("no active balance in the current cycle", domainerrors.ErrNoActiveBalance)
		}
		if amount.GreaterThan(available) {
			return domainerrors.NewError(
				fmt.Sprintf("requested %s exceeds available balance %s", amount.StringFixed(2), available.StringFixed(2)),
				domainerrors.ErrInsufficientBalance,
			)
		}

		now := time.Now()
		withdrawal = &entities.Withdrawal{
			ID:              utils.GenerateUUIDv7(),
			InvestorID:      investor.ID,
			CycleID:         cycle.ID,
			AmountRequested: amount,
			Status:          entities.WithdrawalStatusPending,
			NoticeExpiresAt: now.Add(u.policy.WithdrawalNoticePeriod),
			RequestedAt:     now,
			AdminNotes:      notes,
		}
		return u.withdrawalRepo.Create(txCtx, withdrawal)
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

// Decide applies an admin decision to a pending withdrawal. The status
// transition is a compare-and-set, so a second decision of either kind
// reports ErrAlreadyProcessed.
func (u *WithdrawalUsecase) Decide(ctx context.Context, requestID uuid.UUID, action entities.WithdrawalAction, adminNotes string) (*WithdrawalDecision, error) {
	switch action {
	case entities.WithdrawalActionApprove:
		return u.approve(ctx, requestID, adminNotes)
	case entities.WithdrawalActionDeny:
		return u.deny(ctx, requestID, adminNotes)
	default:
		return nil, domainerrors.BadRequest("action must be approve or deny")
	}
}

func (u *WithdrawalUsecase) deny(ctx context.Context, requestID uuid.UUID, adminNotes string) (*WithdrawalDecision, error) {
	if err := u.withdrawalRepo.Deny(ctx, requestID, adminNotes, time.Now()); err != nil {
		return nil, err
	}
	withdrawal, err := u.withdrawalRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	u.notifyInvestor(ctx, withdrawal.InvestorID, fmt.Sprintf(
		"Your withdrawal request for %s USDT was denied.", withdrawal.AmountRequested.StringFixed(2),
	))
	return &WithdrawalDecision{Withdrawal: withdrawal}, nil
}

func (u *WithdrawalUsecase) approve(ctx context.Context, requestID uuid.UUID, adminNotes string) (*WithdrawalDecision, error) {
	pending, err := u.withdrawalRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	netAmount := round2(pending.AmountRequested.Mul(u.policy.WithdrawalPayoutRate))
	reinvested := round2(pending.AmountRequested.Mul(u.policy.WithdrawalReinvestRate))

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.withdrawalRepo.Approve(txCtx, requestID, netAmount, reinvested, adminNotes, time.Now())
	})
	if err != nil {
		return nil, err
	}

	// On-chain release happens after the ledger transition committed. A
	// bridge failure is logged for reconciliation, never rolled back.
	u.releaseOnchain(ctx, pending, netAmount)

	withdrawal, err := u.withdrawalRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	report, err := u.shareEngine.RecomputeShares(ctx, pending.CycleID)
	if err != nil {
		return nil, err
	}

	u.notifyInvestor(ctx, withdrawal.InvestorID, fmt.Sprintf(
		"Your withdrawal was approved: %s USDT paid out, %s USDT reinvested.",
		netAmount.StringFixed(2), reinvested.StringFixed(2),
	))

	return &WithdrawalDecision{
		Withdrawal:   withdrawal,
		UpdatedShare: report.Record(withdrawal.InvestorID),
	}, nil
}

func (u *WithdrawalUsecase) releaseOnchain(ctx context.Context, withdrawal *entities.Withdrawal, netAmount decimal.Decimal) {
	if u.bridge == nil {
		return
	}
	investor, err := u.investorRepo.GetByID(ctx, withdrawal.InvestorID)
	if err != nil || investor.DCTWallet == "" {
		return
	}

	dctToSwap := decimal.Zero
	if u.priceFeed != nil {
		if price, perr := u.priceFeed.MarkPrice(ctx); perr == nil && price.IsPositive() {
			dctToSwap = netAmount.DivRound(price, 9)
		}
	}

	result, err := u.bridge.Release(ctx, services.ReleaseInput{
		InvestorID: withdrawal.InvestorID,
		CycleID:    withdrawal.CycleID,
		Wallet:     investor.DCTWallet,
		AmountUsdt: netAmount,
		DCTToSwap:  dctToSwap,
	})
	if err != nil {
		logger.Error(ctx, "allocator release failed, needs reconciliation",
			zap.String("withdrawal_id", withdrawal.ID.String()),
			zap.Error(err),
		)
		return
	}
	if result.TxHash == "" {
		return
	}
	if err := u.withdrawalRepo.SetOnchainTxHash(ctx, withdrawal.ID, result.TxHash); err != nil {
		logger.Warn(ctx, "failed to record onchain tx hash",
			zap.String("withdrawal_id", withdrawal.ID.String()),
			zap.Error(err),
		)
	}
}

func (u *WithdrawalUsecase) notifyInvestor(ctx context.Context, investorID uuid.UUID, message string) {
	if u.dispatcher == nil {
		return
	}
	investor, err := u.investorRepo.GetByID(ctx, investorID)
	if err != nil || investor.TelegramChatID == "" {
		return
	}
	if err := u.dispatcher.Notify(ctx, investor.TelegramChatID, message); err != nil {
		logger.Warn(ctx, "withdrawal notification failed",
			zap.String("investor_id", investorID.String()),
			zap.Error(err),
		)
	}
}

// GetByID returns one withdrawal.
func (u *WithdrawalUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error) {
	return u.withdrawalRepo.GetByID(ctx, id)
}

// ListByInvestor returns an investor's withdrawal history.
func (u *WithdrawalUsecase) ListByInvestor(ctx context.Context, externalProfileID string, limit, offset int) ([]*entities.Withdrawal, int64, error) {
	investor, err := u.directory.ResolveOrCreate(ctx, externalProfileID)
	if err != nil {
		return nil, 0, err
	}
	return u.withdrawalRepo.GetByInvestorID(ctx, investor.ID, limit, offset)
}

// List returns withdrawals filtered by status. Admin view.
func (u *WithdrawalUsecase) List(ctx context.Context, status entities.WithdrawalStatus, limit, offset int) ([]*entities.Withdrawal, int64, error) {
	return u.withdrawalRepo.List(ctx, status, limit, offset)
}
