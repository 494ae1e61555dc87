package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"poolfund.backend/internal/config"
	"poolfund.backend/internal/domain/entities"
	"poolfund.backend/internal/infrastructure/blockchain"
	"poolfund.backend/internal/infrastructure/notifier"
	"poolfund.backend/internal/infrastructure/repositories"
	"poolfund.backend/internal/interfaces/http/handlers"
	"poolfund.backend/internal/interfaces/http/middleware"
	"poolfund.backend/internal/usecases"
	"poolfund.backend/pkg/jwt"
)

var schemaStmts = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE investors (
		id TEXT PRIMARY KEY,
		external_profile_id TEXT NOT NULL UNIQUE,
		dct_wallet TEXT,
		telegram_chat_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE fund_cycles (
		id TEXT PRIMARY KEY,
		cycle_month INTEGER NOT NULL,
		cycle_year INTEGER NOT NULL,
		status TEXT NOT NULL,
		opened_at DATETIME NOT NULL,
		closed_at DATETIME,
		profit_total TEXT,
		investor_payout_total TEXT,
		reinvested_total TEXT,
		performance_fee_total TEXT,
		payout_summary TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE UNIQUE INDEX idx_fund_cycles_single_active
		ON fund_cycles (status) WHERE status = 'active';`,
	`CREATE TABLE deposits (
		id TEXT PRIMARY KEY,
		investor_id TEXT NOT NULL,
		cycle_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		deposit_type TEXT NOT NULL,
		notes TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE withdrawals (
		id TEXT PRIMARY KEY,
		investor_id TEXT NOT NULL,
		cycle_id TEXT NOT NULL,
		amount_requested TEXT NOT NULL,
		status TEXT NOT NULL,
		notice_expires_at DATETIME NOT NULL,
		requested_at DATETIME NOT NULL,
		fulfilled_at DATETIME,
		net_amount TEXT,
		reinvested_amount TEXT,
		admin_notes TEXT,
		onchain_tx_hash TEXT,
		notice_alerted_at DATETIME,
		updated_at DATETIME
	);`,
}

// testServer wires the full HTTP stack against an in-memory database.
type testServer struct {
	router     *gin.Engine
	jwtService *jwt.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	for _, stmt := range schemaStmts {
		require.NoError(t, db.Exec(stmt).Error)
	}

	jwtService := jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)

	userRepo := repositories.NewUserRepository(db)
	investorRepo := repositories.NewInvestorRepository(db)
	cycleRepo := repositories.NewFundCycleRepository(db)
	depositRepo := repositories.NewDepositRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	uow := repositories.NewUnitOfWork(db)

	policy := config.PolicyConfig{
		WithdrawalPayoutRate:   decimal.NewFromFloat(0.84),
		WithdrawalReinvestRate: decimal.NewFromFloat(0.16),
		ProfitInvestorRate:     decimal.NewFromFloat(0.64),
		ProfitReinvestRate:     decimal.NewFromFloat(0.16),
		ProfitFeeRate:          decimal.NewFromFloat(0.20),
		WithdrawalNoticePeriod: 7 * 24 * time.Hour,
	}

	bridge := blockchain.NewNoopAllocator()
	dispatcher := notifier.NewLogDispatcher()

	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	directory := usecases.NewInvestorDirectory(investorRepo)
	cycleManager := usecases.NewCycleManager(cycleRepo)
	shareEngine := usecases.NewShareEngine(depositRepo, withdrawalRepo, investorRepo, nil, nil)
	depositUsecase := usecases.NewDepositUsecase(depositRepo, directory, cycleManager)
	withdrawalUsecase := usecases.NewWithdrawalUsecase(
		uow, withdrawalRepo, investorRepo, directory, cycleManager,
		shareEngine, bridge, nil, dispatcher, policy,
	)
	settlementUsecase := usecases.NewSettlementUsecase(
		uow, cycleRepo, depositRepo, investorRepo, shareEngine, dispatcher, policy,
	)
	portfolioUsecase := usecases.NewPortfolioUsecase(directory, cycleManager, shareEngine, depositRepo)

	authHandler := handlers.NewAuthHandler(authUsecase)
	depositHandler := handlers.NewDepositHandler(depositUsecase)
	cycleHandler := handlers.NewCycleHandler(cycleManager, portfolioUsecase, settlementUsecase)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalUsecase)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioUsecase, directory)

	r := gin.New()
	auth := middleware.AuthMiddleware(jwtService)
	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.RefreshToken)
		authGroup.GET("/me", auth, authHandler.GetMe)

		v1.GET("/portfolio", auth, portfolioHandler.Get)
		v1.PUT("/portfolio/profile", auth, portfolioHandler.UpdateProfile)
		v1.GET("/investors", auth, middleware.RequireAdmin(), portfolioHandler.ListInvestors)

		v1.POST("/withdrawals", auth, withdrawalHandler.Request)
		v1.GET("/withdrawals", auth, withdrawalHandler.List)
		v1.GET("/withdrawals/:id", auth, withdrawalHandler.GetByID)
		v1.POST("/withdrawals/:id/decision", auth, middleware.RequireAdmin(), withdrawalHandler.Decide)

		v1.GET("/cycles", auth, cycleHandler.List)
		v1.GET("/cycles/active", auth, cycleHandler.GetActive)
		v1.GET("/cycles/:id/shares", auth, cycleHandler.GetShares)
		v1.POST("/cycles/settle", auth, middleware.RequireAdmin(), cycleHandler.Settle)

		v1.POST("/deposits", auth, middleware.RequireAdmin(), depositHandler.Create)
		v1.GET("/deposits", auth, middleware.RequireAdmin(), depositHandler.List)
	}

	return &testServer{router: r, jwtService: jwtService}
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	pair, err := s.jwtService.GenerateTokenPair(uuid.New(), "admin@fund.test", string(entities.UserRoleAdmin))
	require.NoError(t, err)
	return pair.AccessToken
}

// investorToken returns a token plus the id that doubles as the
// investor's external profile id.
func (s *testServer) investorToken(t *testing.T) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	pair, err := s.jwtService.GenerateTokenPair(userID, "investor@fund.test", string(entities.UserRoleInvestor))
	require.NoError(t, err)
	return pair.AccessToken, userID
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// assertDecimal compares a decimal JSON value numerically, so trailing
// zeros from rate arithmetic do not matter.
func assertDecimal(t *testing.T, want string, got any) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "expected decimal string, got %T (%v)", got, got)
	require.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)),
		"expected %s, got %s", want, s)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

// seedDeposit records a deposit through the admin endpoint so the
// investor holds a position in the active cycle.
func (s *testServer) seedDeposit(t *testing.T, adminToken, externalProfileID string, amount string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/deposits", adminToken, gin.H{
		"externalProfileId": externalProfileID,
		"amount":            amount,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "seed deposit: %s", rec.Body.String())
}
