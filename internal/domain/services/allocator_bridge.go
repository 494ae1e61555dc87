package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReleaseInput describes an on-chain payout for an approved withdrawal.
type ReleaseInput struct {
	InvestorID uuid.UUID
	CycleID    uuid.UUID
	Wallet     string
	AmountUsdt decimal.Decimal
	DCTToSwap  decimal.Decimal
}

// ReleaseResult carries the submitted transaction hash, if any.
type ReleaseResult struct {
	TxHash string
}

// AllocatorBridge triggers on-chain settlement of an approved
// withdrawal. Implementations must be safe to call after the ledger
// transition has committed; a failure is logged for reconciliation and
// never rolls the approval back. A no-op implementation satisfies the
// contract for environments without on-chain settlement.
type AllocatorBridge interface {
	Release(ctx context.Context, input ReleaseInput) (*ReleaseResult, error)
}

// BalanceSource reads an investor's on-chain DCT balance for marked
// valuation. Usually the same component as the AllocatorBridge.
type BalanceSource interface {
	DCTBalance(ctx context.Context, wallet string) (decimal.Decimal, error)
}
