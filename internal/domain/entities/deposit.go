package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositType represents the origin of a deposit
type DepositType string

const (
	DepositTypeInitial      DepositType = "initial"
	DepositTypeCarryover    DepositType = "carryover"
	DepositTypeReinvestment DepositType = "reinvestment"
)

// Deposit represents capital credited to an investor within a cycle.
// Deposits are append-only; corrections are new compensating rows.
type Deposit struct {
	ID         uuid.UUID       `json:"id"`
	InvestorID uuid.UUID       `json:"investorId"`
	CycleID    uuid.UUID       `json:"cycleId"`
	Amount     decimal.Decimal `json:"amount"`
	Type       DepositType     `json:"depositType"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
