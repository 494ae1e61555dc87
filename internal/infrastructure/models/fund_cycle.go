package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundCycle rows carry a store-enforced single-active-cycle constraint:
// a partial unique index on status WHERE status = 'active', created in
// the schema setup next to AutoMigrate.
type FundCycle struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CycleMonth          int       `gorm:"not null"`
	CycleYear           int       `gorm:"not null"`
	Status              string    `gorm:"type:varchar(50);not null;index"`
	OpenedAt            time.Time `gorm:"not null"`
	ClosedAt            *time.Time
	ProfitTotal         decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	InvestorPayoutTotal decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	ReinvestedTotal     decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	PerformanceFeeTotal decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	PayoutSummary       string              `gorm:"type:text"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (FundCycle) TableName() string { return "fund_cycles" }
