package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"poolfund.backend/internal/domain/entities"
	domainerrors "poolfund.backend/internal/domain/errors"
	"poolfund.backend/internal/interfaces/http/middleware"
	"poolfund.backend/internal/interfaces/http/response"
	"poolfund.backend/internal/usecases"
)

// PortfolioHandler exposes the investor dashboard and profile updates.
type PortfolioHandler struct {
	portfolioUsecase *usecases.PortfolioUsecase
	directory        *usecases.InvestorDirectory
}

func NewPortfolioHandler(portfolioUsecase *usecases.PortfolioUsecase, directory *usecases.InvestorDirectory) *PortfolioHandler {
	return &PortfolioHandler{portfolioUsecase: portfolioUsecase, directory: directory}
}

// Get returns the caller's position in the active cycle.
// GET /api/v1/portfolio
func (h *PortfolioHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	portfolio, err := h.portfolioUsecase.GetPortfolio(c.Request.Context(), userID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"portfolio": portfolio})
}

// UpdateProfile sets the caller's wallet and notification chat id.
// PUT /api/v1/portfolio/profile
func (h *PortfolioHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var input entities.InvestorProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	investor, err := h.directory.ResolveOrCreate(c.Request.Context(), userID.String())
	if err != nil {
		response.Error(c, err)
		return
	}
	updated, err := h.directory.UpdateProfile(c.Request.Context(), investor.ID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"investor": updated})
}

// ListInvestors returns every investor record. Admin view.
// GET /api/v1/investors
func (h *PortfolioHandler) ListInvestors(c *gin.Context) {
	investors, err := h.directory.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"investors": investors})
}
