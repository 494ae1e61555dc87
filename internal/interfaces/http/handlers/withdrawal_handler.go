package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/interfaces/http/middleware"
	"poolfund.backend/internal/interfaces/http/response"
	"poolfund.backend/internal/usecases"
	"poolfund.backend/pkg/utils"
)

// WithdrawalHandler exposes the withdrawal request/decision workflow.
type WithdrawalHandler struct {
	withdrawalUsecase *usecases.WithdrawalUsecase
}

func NewWithdrawalHandler(withdrawalUsecase *usecases.WithdrawalUsecase) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalUsecase: withdrawalUsecase}
}

// Request creates a pending withdrawal for the caller.
// POST /api/v1/withdrawals
func (h *WithdrawalHandler) Request(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var input struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
		Notes  string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	withdrawal, err := h.withdrawalUsecase.RequestWithdrawal(c.Request.Context(), userID.String(), input.Amount, input.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"withdrawalId":    withdrawal.ID,
		"cycleId":         withdrawal.CycleID,
		"status":          withdrawal.Status,
		"amountRequested": withdrawal.AmountRequested,
		"noticeExpiresAt": withdrawal.NoticeExpiresAt,
	})
}

// Decide applies an admin decision to a pending withdrawal.
// POST /api/v1/withdrawals/:id/decision
func (h *WithdrawalHandler) Decide(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid withdrawal id"))
		return
	}

	var input struct {
		Action     string `json:"action" binding:"required"`
		AdminNotes string `json:"adminNotes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	decision, err := h.withdrawalUsecase.Decide(c.Request.Context(), requestID, entities.WithdrawalAction(input.Action), input.AdminNotes)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"withdrawal": decision.Withdrawal}
	if decision.UpdatedShare != nil {
		payload["updatedShare"] = decision.UpdatedShare
	}
	response.Success(c, http.StatusOK, payload)
}

// List returns withdrawal history: the caller's own requests, or the
// full (optionally status-filtered) list for admins.
// GET /api/v1/withdrawals?status=pending&page=1&limit=20
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}
	params := pagination(c)
	limit, offset := params.Limit, params.CalculateOffset()

	var (
		withdrawals []*entities.Withdrawal
		total       int64
		err         error
	)
	if middleware.IsAdmin(c) {
		status := entities.WithdrawalStatus(c.Query("status"))
		withdrawals, total, err = h.withdrawalUsecase.List(c.Request.Context(), status, limit, offset)
	} else {
		withdrawals, total, err = h.withdrawalUsecase.ListByInvestor(c.Request.Context(), userID.String(), limit, offset)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"withdrawals": withdrawals,
		"pagination":  utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// GetByID returns one withdrawal. Non-admin callers only see their own.
// GET /api/v1/withdrawals/:id
func (h *WithdrawalHandler) GetByID(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid withdrawal id"))
		return
	}

	withdrawal, err := h.withdrawalUsecase.GetByID(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"withdrawal": withdrawal})
}

func pagination(c *gin.Context) utils.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return utils.GetPaginationParams(page, limit)
}
