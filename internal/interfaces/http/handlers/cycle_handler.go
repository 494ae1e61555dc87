package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/interfaces/http/response"
	"poolfund.backend/internal/usecases"
	"poolfund.backend/pkg/utils"
)

// CycleHandler exposes fund cycle reads and the settlement trigger.
type CycleHandler struct {
	cycleManager      *usecases.CycleManager
	portfolioUsecase  *usecases.PortfolioUsecase
	settlementUsecase *usecases.SettlementUsecase
}

func NewCycleHandler(
	cycleManager *usecases.CycleManager,
	portfolioUsecase *usecases.PortfolioUsecase,
	settlementUsecase *usecases.SettlementUsecase,
) *CycleHandler {
	return &CycleHandler{
		cycleManager:      cycleManager,
		portfolioUsecase:  portfolioUsecase,
		settlementUsecase: settlementUsecase,
	}
}

// List returns cycles, newest first.
// GET /api/v1/cycles?page=1&limit=20
func (h *CycleHandler) List(c *gin.Context) {
	params := pagination(c)

	cycles, total, err := h.cycleManager.List(c.Request.Context(), params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"cycles":     cycles,
		"pagination": utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// GetActive returns the currently active cycle.
// GET /api/v1/cycles/active
func (h *CycleHandler) GetActive(c *gin.Context) {
	cycle, err := h.cycleManager.GetActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cycle": cycle})
}

// GetShares returns a cycle's share distribution. The path parameter
// accepts "active" or a cycle id.
// GET /api/v1/cycles/:id/shares
func (h *CycleHandler) GetShares(c *gin.Context) {
	report, err := h.portfolioUsecase.GetCycleShares(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"shares": report})
}

// Settle runs the monthly settlement against the active cycle.
// POST /api/v1/cycles/settle
func (h *CycleHandler) Settle(c *gin.Context) {
	var input struct {
		Profit  *decimal.Decimal `json:"profit" binding:"required"`
		Notes   string           `json:"notes"`
		CycleID string           `json:"cycleId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	var result *usecases.SettlementResult
	var err error
	if input.CycleID != "" {
		cycleID, parseErr := uuid.Parse(input.CycleID)
		if parseErr != nil {
			response.Error(c, domainerrors.BadRequest("invalid cycle id"))
			return
		}
		result, err = h.settlementUsecase.SettleCycleByID(c.Request.Context(), cycleID, *input.Profit, input.Notes)
	} else {
		result, err = h.settlementUsecase.SettleCycle(c.Request.Context(), *input.Profit, input.Notes)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"cycleId":       result.SettledCycle.ID,
		"totals":        settlementTotals(result),
		"payoutSummary": result.PayoutLines,
		"nextCycle":     result.NextCycle,
		"nextShares":    result.NextShares,
	})
}

func settlementTotals(result *usecases.SettlementResult) gin.H {
	cycle := result.SettledCycle
	return gin.H{
		"profitTotal":         cycle.ProfitTotal.Decimal,
		"investorPayoutTotal": cycle.InvestorPayoutTotal.Decimal,
		"reinvestedTotal":     cycle.ReinvestedTotal.Decimal,
		"performanceFeeTotal": cycle.PerformanceFeeTotal.Decimal,
	}
}
