package entities

import (
	"time"

	"github.com/google/uuid"
)

// Investor represents a pool participant. Created lazily on first
// interaction with the ledger and never deleted.
type Investor struct {
	ID                uuid.UUID `json:"id"`
	ExternalProfileID string    `json:"externalProfileId"`
	DCTWallet         string    `json:"dctWallet,omitempty"`
	TelegramChatID    string    `json:"telegramChatId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// InvestorProfileInput updates the optional on-chain / notification fields.
type InvestorProfileInput struct {
	DCTWallet      string `json:"dctWallet"`
	TelegramChatID string `json:"telegramChatId"`
}
