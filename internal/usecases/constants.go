package usecases

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fallback notice period when policy config carries a zero value.
const defaultNoticePeriod = 7 * 24 * time.Hour

var oneHundred = decimal.NewFromInt(100)

// round2 rounds a money amount to cents, half away from zero.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
