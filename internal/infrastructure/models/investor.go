package models

import (
	"time"

	"github.com/google/uuid"
)

type Investor struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ExternalProfileID string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	DCTWallet         string    `gorm:"column:dct_wallet;type:varchar(255)"`
	TelegramChatID    string    `gorm:"type:varchar(64)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Investor) TableName() string { return "investors" }
