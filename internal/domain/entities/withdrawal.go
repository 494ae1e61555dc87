package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// WithdrawalStatus represents the status of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusDenied   WithdrawalStatus = "denied"
)

// WithdrawalAction is an admin decision on a pending withdrawal
type WithdrawalAction string

const (
	WithdrawalActionApprove WithdrawalAction = "approve"
	WithdrawalActionDeny    WithdrawalAction = "deny"
)

// Withdrawal represents an investor's request to pull capital out of the
// active cycle. A row is mutated exactly once after creation: the
// pending -> approved/denied transition.
type Withdrawal struct {
	ID               uuid.UUID           `json:"id"`
	InvestorID       uuid.UUID           `json:"investorId"`
	CycleID          uuid.UUID           `json:"cycleId"`
	AmountRequested  decimal.Decimal     `json:"amountRequested"`
	Status           WithdrawalStatus    `json:"status"`
	NoticeExpiresAt  time.Time           `json:"noticeExpiresAt"`
	RequestedAt      time.Time           `json:"requestedAt"`
	FulfilledAt      null.Time           `json:"fulfilledAt,omitempty"`
	NetAmount        decimal.NullDecimal `json:"netAmount,omitempty"`
	ReinvestedAmount decimal.NullDecimal `json:"reinvestedAmount,omitempty"`
	AdminNotes       string              `json:"adminNotes,omitempty"`
	OnchainTxHash    null.String         `json:"onchainTxHash,omitempty"`
	NoticeAlertedAt  null.Time           `json:"-"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// Outflow is the total pool reduction caused by an approved withdrawal.
func (w *Withdrawal) Outflow() decimal.Decimal {
	var out decimal.Decimal
	if w.NetAmount.Valid {
		out = out.Add(w.NetAmount.Decimal)
	}
	if w.ReinvestedAmount.Valid {
		out = out.Add(w.ReinvestedAmount.Decimal)
	}
	return out
}
