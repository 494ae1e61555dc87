package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"poolfund.backend/internal/interfaces/http/handlers"
	"poolfund.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	depositHandler    *handlers.DepositHandler
	cycleHandler      *handlers.CycleHandler
	withdrawalHandler *handlers.WithdrawalHandler
	portfolioHandler  *handlers.PortfolioHandler
	authMiddleware    gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Portfolio routes (protected)
		portfolio := v1.Group("/portfolio")
		portfolio.Use(d.authMiddleware)
		{
			portfolio.GET("", d.portfolioHandler.Get)
			portfolio.PUT("/profile", d.portfolioHandler.UpdateProfile)
		}

		// Withdrawal routes (protected; decision is admin-only)
		withdrawals := v1.Group("/withdrawals")
		withdrawals.Use(d.authMiddleware)
		{
			withdrawals.POST("", d.withdrawalHandler.Request)
			withdrawals.GET("", d.withdrawalHandler.List)
			withdrawals.GET("/:id", d.withdrawalHandler.GetByID)
			withdrawals.POST("/:id/decision", middleware.RequireAdmin(), d.withdrawalHandler.Decide)
		}

		// Cycle routes (protected; settlement is admin-only)
		cycles := v1.Group("/cycles")
		cycles.Use(d.authMiddleware)
		{
			cycles.GET("", d.cycleHandler.List)
			cycles.GET("/active", d.cycleHandler.GetActive)
			cycles.GET("/:id/shares", d.cycleHandler.GetShares)
			cycles.POST("/settle", middleware.RequireAdmin(), d.cycleHandler.Settle)
		}

		// Admin ledger entry routes
		deposits := v1.Group("/deposits")
		deposits.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			deposits.POST("", d.depositHandler.Create)
			deposits.GET("", d.depositHandler.List)
		}

		investors := v1.Group("/investors")
		investors.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			investors.GET("", d.portfolioHandler.ListInvestors)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "poolfund-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
