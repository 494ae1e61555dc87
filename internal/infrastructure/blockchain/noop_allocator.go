package blockchain

import (
	"context"

	"go.uber.org/zap"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/pkg/logger"
)

// NoopAllocator satisfies AllocatorBridge for environments without
// on-chain settlement. It logs the would-be release and returns an
// empty transaction hash.
type NoopAllocator struct{}

func NewNoopAllocator() *NoopAllocator {
	return &NoopAllocator{}
}

func (a *NoopAllocator) Release(ctx context.Context, input services.ReleaseInput) (*services.ReleaseResult, error) {
	logger.Info(ctx, "allocator disabled, skipping on-chain release",
		zap.String("investor_id", input.InvestorID.String()),
		zap.String("amount_usdt", input.AmountUsdt.String()),
	)
	return &services.ReleaseResult{}, nil
}
