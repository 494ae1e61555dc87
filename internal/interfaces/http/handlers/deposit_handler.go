package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/interfaces/http/response"
	"poolfund.backend/internal/usecases"
)

// DepositHandler exposes admin deposit entry and listing.
type DepositHandler struct {
	depositUsecase *usecases.DepositUsecase
}

func NewDepositHandler(depositUsecase *usecases.DepositUsecase) *DepositHandler {
	return &DepositHandler{depositUsecase: depositUsecase}
}

// Create records an initial deposit for an investor in the active cycle.
// POST /api/v1/deposits
func (h *DepositHandler) Create(c *gin.Context) {
	var input struct {
		ExternalProfileID string          `json:"externalProfileId" binding:"required"`
		Amount            decimal.Decimal `json:"amount" binding:"required"`
		Notes             string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	deposit, err := h.depositUsecase.RecordDeposit(c.Request.Context(), input.ExternalProfileID, input.Amount, input.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"deposit": deposit})
}

// List returns deposits within a cycle ("active" by default).
// GET /api/v1/deposits?cycle=active
func (h *DepositHandler) List(c *gin.Context) {
	deposits, err := h.depositUsecase.ListByCycle(c.Request.Context(), c.DefaultQuery("cycle", "active"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deposits": deposits})
}
