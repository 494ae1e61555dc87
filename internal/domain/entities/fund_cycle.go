package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// CycleStatus represents the status of a fund cycle
type CycleStatus string

const (
	CycleStatusActive  CycleStatus = "active"
	CycleStatusSettled CycleStatus = "settled"
)

// FundCycle represents one monthly accounting period of the pool.
// Exactly one cycle is active at any time; the store enforces this.
type FundCycle struct {
	ID                  uuid.UUID           `json:"id"`
	CycleMonth          int                 `json:"cycleMonth"`
	CycleYear           int                 `json:"cycleYear"`
	Status              CycleStatus         `json:"status"`
	OpenedAt            time.Time           `json:"openedAt"`
	ClosedAt            null.Time           `json:"closedAt,omitempty"`
	ProfitTotal         decimal.NullDecimal `json:"profitTotal,omitempty"`
	InvestorPayoutTotal decimal.NullDecimal `json:"investorPayoutTotal,omitempty"`
	ReinvestedTotal     decimal.NullDecimal `json:"reinvestedTotal,omitempty"`
	PerformanceFeeTotal decimal.NullDecimal `json:"performanceFeeTotal,omitempty"`
	PayoutSummary       string              `json:"payoutSummary,omitempty"` // JSON array, set at settlement
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// NextCalendarMonth returns the month/year following this cycle.
func (c *FundCycle) NextCalendarMonth() (month, year int) {
	if c.CycleMonth == 12 {
		return 1, c.CycleYear + 1
	}
	return c.CycleMonth + 1, c.CycleYear
}

// PayoutLine is one investor's row in a settlement summary.
type PayoutLine struct {
	InvestorID      uuid.UUID       `json:"investorId"`
	SharePercentage decimal.Decimal `json:"sharePercentage"`
	Gross           decimal.Decimal `json:"gross"`
	Payout          decimal.Decimal `json:"payout"`
	Reinvested      decimal.Decimal `json:"reinvested"`
	PerformanceFee  decimal.Decimal `json:"performanceFee"`
}
