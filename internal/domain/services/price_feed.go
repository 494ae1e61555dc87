package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable signals that no mark price could be produced.
// Callers degrade to contribution-only valuation.
var ErrPriceUnavailable = errors.New("mark price unavailable")

// PriceFeed supplies the current DCT mark price in USDT.
type PriceFeed interface {
	MarkPrice(ctx context.Context) (decimal.Decimal, error)
}
