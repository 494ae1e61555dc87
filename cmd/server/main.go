package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"poolfund.backend/internal/config"
	"poolfund.backend/internal/domain/services"
	"poolfund.backend/internal/infrastructure/blockchain"
	"poolfund.backend/internal/infrastructure/jobs"
	"poolfund.backend/internal/infrastructure/models"
	"poolfund.backend/internal/infrastructure/notifier"
	"poolfund.backend/internal/infrastructure/pricefeed"
	"poolfund.backend/internal/infrastructure/repositories"
	"poolfund.backend/internal/interfaces/http/handlers"
	"poolfund.backend/internal/interfaces/http/middleware"
	"poolfund.backend/internal/usecases"
	"poolfund.backend/pkg/jwt"
	"poolfund.backend/pkg/logger"
	"poolfund.backend/pkg/redis"
)

// Partial unique index enforcing the single-active-cycle invariant.
// AutoMigrate cannot express a partial index, so it is applied directly.
const singleActiveCycleIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_fund_cycles_single_active
ON fund_cycles (status) WHERE status = 'active';`

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Warn(context.Background(), "Redis unavailable, price cache disabled", zap.Error(err))
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("database not available: %v (endpoints will return errors)", err)
	} else {
		if err := migrateSchema(db); err != nil {
			return fmt.Errorf("schema migration failed: %w", err)
		}
		log.Println("connected to PostgreSQL, schema up to date")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	investorRepo := repositories.NewInvestorRepository(db)
	cycleRepo := repositories.NewFundCycleRepository(db)
	depositRepo := repositories.NewDepositRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// External collaborators: allocator bridge, price feed, notifier.
	var bridge services.AllocatorBridge
	var balanceSource services.BalanceSource
	if cfg.Bridge.Enabled {
		allocator, err := blockchain.NewEVMAllocator(cfg.Bridge)
		if err != nil {
			return fmt.Errorf("failed to initialize allocator bridge: %w", err)
		}
		defer allocator.Close()
		bridge = allocator
		balanceSource = allocator
	} else {
		bridge = blockchain.NewNoopAllocator()
	}

	var priceFeed services.PriceFeed
	if cfg.PriceFeed.URL != "" {
		priceFeed = pricefeed.NewHTTPFeed(cfg.PriceFeed.URL, cfg.PriceFeed.CacheTTL)
	}

	var dispatcher services.NotificationDispatcher
	if cfg.Telegram.Enabled {
		dispatcher, err = notifier.NewTelegramDispatcher(cfg.Telegram.BotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram dispatcher: %w", err)
		}
	} else {
		dispatcher = notifier.NewLogDispatcher()
	}

	// Usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	directory := usecases.NewInvestorDirectory(investorRepo)
	cycleManager := usecases.NewCycleManager(cycleRepo)
	shareEngine := usecases.NewShareEngine(depositRepo, withdrawalRepo, investorRepo, priceFeed, balanceSource)
	depositUsecase := usecases.NewDepositUsecase(depositRepo, directory, cycleManager)
	withdrawalUsecase := usecases.NewWithdrawalUsecase(
		uow, withdrawalRepo, investorRepo, directory, cycleManager,
		shareEngine, bridge, priceFeed, dispatcher, cfg.Policy,
	)
	settlementUsecase := usecases.NewSettlementUsecase(
		uow, cycleRepo, depositRepo, investorRepo, shareEngine, dispatcher, cfg.Policy,
	)
	portfolioUsecase := usecases.NewPortfolioUsecase(directory, cycleManager, shareEngine, depositRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	depositHandler := handlers.NewDepositHandler(depositUsecase)
	cycleHandler := handlers.NewCycleHandler(cycleManager, portfolioUsecase, settlementUsecase)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalUsecase)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioUsecase, directory)

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	noticeJob := jobs.NewWithdrawalNoticeJob(withdrawalRepo, dispatcher, cfg.Telegram.AdminChatID, cfg.Jobs.NoticeCheckInterval)
	go noticeJob.Start(ctx)

	reminderJob := jobs.NewSettlementReminderJob(cycleRepo, dispatcher, cfg.Telegram.AdminChatID, cfg.Jobs.SettlementCronSpec)
	if err := reminderJob.Start(ctx); err != nil {
		return fmt.Errorf("failed to start settlement reminder job: %w", err)
	}

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:       authHandler,
		depositHandler:    depositHandler,
		cycleHandler:      cycleHandler,
		withdrawalHandler: withdrawalHandler,
		portfolioHandler:  portfolioHandler,
		authMiddleware:    middleware.AuthMiddleware(jwtService),
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down server...")
		noticeJob.Stop()
		reminderJob.Stop()
		cancel()
	}()

	log.Printf("poolfund backend starting on port %s", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func migrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Investor{},
		&models.FundCycle{},
		&models.Deposit{},
		&models.Withdrawal{},
	); err != nil {
		return err
	}
	return db.Exec(singleActiveCycleIndexSQL).Error
}
