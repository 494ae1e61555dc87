package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/pkg/logger"
	"poolfund.backend/pkg/redis"
)

const markPriceCacheKey = "poolfund:dct_mark_price"

// HTTPFeed fetches the DCT mark price from an external endpoint and
// caches it in Redis so settlement and share reads do not hammer the
// upstream.
type HTTPFeed struct {
	url        string
	cacheTTL   time.Duration
	httpClient *http.Client
}

func NewHTTPFeed(url string, cacheTTL time.Duration) *HTTPFeed {
	return &HTTPFeed{
		url:      url,
		cacheTTL: cacheTTL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type priceResponse struct {
	Price string `json:"price"`
}

// MarkPrice returns the cached price when fresh, otherwise fetches from
// the upstream endpoint. Any failure maps to ErrPriceUnavailable so
// callers degrade to contribution-only valuation.
func (f *HTTPFeed) MarkPrice(ctx context.Context) (decimal.Decimal, error) {
	if f.url == "" {
		return decimal.Zero, services.ErrPriceUnavailable
	}

	cacheReady := redis.GetClient() != nil
	if cacheReady {
		if cached, err := redis.Get(ctx, markPriceCacheKey); err == nil {
			if price, perr := decimal.NewFromString(cached); perr == nil {
				return price, nil
			}
		}
	}

	price, err := f.fetch(ctx)
	if err != nil {
		logger.Warn(ctx, "mark price fetch failed", zap.Error(err))
		return decimal.Zero, services.ErrPriceUnavailable
	}

	if cacheReady {
		if err := redis.Set(ctx, markPriceCacheKey, price.String(), f.cacheTTL); err != nil {
			logger.Warn(ctx, "mark price cache write failed", zap.Error(err))
		}
	}
	return price, nil
}

func (f *HTTPFeed) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price endpoint returned status %d", resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(body.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", body.Price, err)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("non-positive price %s", price)
	}
	return price, nil
}
