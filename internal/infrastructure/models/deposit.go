package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Deposit struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	InvestorID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	CycleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DepositType string          `gorm:"type:varchar(50);not null"`
	Notes       string          `gorm:"type:text"`
	CreatedAt   time.Time
}

func (Deposit) TableName() string { return "deposits" }
