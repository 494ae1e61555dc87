package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Withdrawal struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	InvestorID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CycleID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountRequested  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status           string          `gorm:"type:varchar(50);not null;index"`
	NoticeExpiresAt  time.Time       `gorm:"not null"`
	RequestedAt      time.Time       `gorm:"not null"`
	FulfilledAt      *time.Time
	NetAmount        decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	ReinvestedAmount decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	AdminNotes       string              `gorm:"type:text"`
	OnchainTxHash    string              `gorm:"type:varchar(255)"`
	NoticeAlertedAt  *time.Time
	UpdatedAt        time.Time
}

func (Withdrawal) TableName() string { return "withdrawals" }
