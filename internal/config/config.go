package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Policy    PolicyConfig
	Bridge    BridgeConfig
	PriceFeed PriceFeedConfig
	Telegram  TelegramConfig
	Jobs      JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// PolicyConfig holds the fund's split policy. The splits are fixed fund
// terms, not tunables, so they have no environment overrides.
type PolicyConfig struct {
	WithdrawalPayoutRate   decimal.Decimal // 0.84 of a withdrawal leaves the pool
	WithdrawalReinvestRate decimal.Decimal // 0.16 stays as reinvestment
	ProfitInvestorRate     decimal.Decimal // 0.64 of monthly profit paid out
	ProfitReinvestRate     decimal.Decimal // 0.16 reinvested per investor
	ProfitFeeRate          decimal.Decimal // 0.20 performance fee
	WithdrawalNoticePeriod time.Duration
}

// BridgeConfig holds the EVM allocator settings
type BridgeConfig struct {
	RPCURL             string
	OperatorPrivateKey string
	USDTContract       string
	DCTContract        string
	ChainID            int64
	Enabled            bool
}

// PriceFeedConfig holds the DCT mark price source settings
type PriceFeedConfig struct {
	URL      string
	CacheTTL time.Duration
}

// TelegramConfig holds the notification bot settings
type TelegramConfig struct {
	BotToken    string
	AdminChatID string
	Enabled     bool
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	NoticeCheckInterval time.Duration
	SettlementCronSpec  string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "poolfund"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Policy: PolicyConfig{
			WithdrawalPayoutRate:   decimal.NewFromFloat(0.84),
			WithdrawalReinvestRate: decimal.NewFromFloat(0.16),
			ProfitInvestorRate:     decimal.NewFromFloat(0.64),
			ProfitReinvestRate:     decimal.NewFromFloat(0.16),
			ProfitFeeRate:          decimal.NewFromFloat(0.20),
			WithdrawalNoticePeriod: getEnvAsDuration("WITHDRAWAL_NOTICE_PERIOD", 7*24*time.Hour),
		},
		Bridge: BridgeConfig{
			RPCURL:             getEnv("BRIDGE_RPC_URL", "https://sepolia.base.org"),
			OperatorPrivateKey: getEnv("BRIDGE_OPERATOR_KEY", ""),
			USDTContract:       getEnv("BRIDGE_USDT_CONTRACT", ""),
			DCTContract:        getEnv("BRIDGE_DCT_CONTRACT", ""),
			ChainID:            int64(getEnvAsInt("BRIDGE_CHAIN_ID", 84532)),
			Enabled:            getEnvAsBool("BRIDGE_ENABLED", false),
		},
		PriceFeed: PriceFeedConfig{
			URL:      getEnv("PRICE_FEED_URL", ""),
			CacheTTL: getEnvAsDuration("PRICE_FEED_CACHE_TTL", 5*time.Minute),
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminChatID: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
			Enabled:     getEnvAsBool("TELEGRAM_ENABLED", false),
		},
		Jobs: JobsConfig{
			NoticeCheckInterval: getEnvAsDuration("NOTICE_CHECK_INTERVAL", time.Hour),
			SettlementCronSpec:  getEnv("SETTLEMENT_REMINDER_CRON", "0 9 1 * *"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
