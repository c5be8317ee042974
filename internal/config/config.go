package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	LedgerFile  = "file"
	LedgerRedis = "redis"
)

type Config struct {
	// RPC settings
	RPCUrl       string
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	RPCRateLimit float64 // requests per second

	// Wallet
	WalletAddress string
	PrivateKey    string

	// Auto-sell loop
	Threshold       time.Duration
	ScanInterval    time.Duration
	SellPercentage  float64
	SlippagePercent float64

	// Transaction settings
	UnitBudget      uint32
	UnitPrice       uint64
	ConfirmRetries  int
	ConfirmInterval time.Duration
	ConfirmDeadline time.Duration
	Simulate        bool

	// Risk
	MaxBuySOL     float64
	DailyLimitSOL float64
	MinBalanceSOL float64

	// Ledger and pools
	LedgerBackend  string
	LedgerPath     string
	PoolConfigPath string

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// RabbitMQ settings
	RabbitMQURL   string
	RabbitMQQueue string

	// Price lookup
	DexScreenerURL string

	// Status API
	APIAddr string
	APIKey  string
	DevMode bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:       getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", time.Second),
		RPCRateLimit: getFloatEnv("RPC_RATE_LIMIT", 10),

		// Wallet
		WalletAddress: getEnv("WALLET_ADDRESS", ""),
		PrivateKey:    getEnv("PRIVATE_KEY", getEnv("WALLET_PRIVATE_KEY", "")),

		// Loop
		Threshold:       time.Duration(getIntEnv("X_SECONDS", 300)) * time.Second,
		ScanInterval:    getDurationEnv("SCAN_INTERVAL", time.Second),
		SellPercentage:  getFloatEnv("SELL_PERCENTAGE", 100),
		SlippagePercent: getFloatEnv("SLIPPAGE_PERCENT", 10),

		// Transactions
		UnitBudget:      uint32(getIntEnv("UNIT_BUDGET", 100_000)),
		UnitPrice:       uint64(getIntEnv("UNIT_PRICE", 1_000_000)),
		ConfirmRetries:  getIntEnv("CONFIRM_MAX_RETRIES", 20),
		ConfirmInterval: getDurationEnv("CONFIRM_INTERVAL", 3*time.Second),
		ConfirmDeadline: getDurationEnv("CONFIRM_DEADLINE", 0),
		Simulate:        getBoolEnv("SIMULATE_BEFORE_SEND", false),

		// Risk
		MaxBuySOL:     getFloatEnv("MAX_BUY_SOL", 1),
		DailyLimitSOL: getFloatEnv("DAILY_LIMIT_SOL", 10),
		MinBalanceSOL: getFloatEnv("MIN_BALANCE_SOL", 0.01),

		// Ledger
		LedgerBackend:  strings.ToLower(getEnv("LEDGER_BACKEND", LedgerFile)),
		LedgerPath:     getEnv("LEDGER_PATH", "data/wallet_tokens.json"),
		PoolConfigPath: getEnv("POOL_CONFIG_PATH", "data/pools.json"),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solana"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// RabbitMQ
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "autosell.outcomes"),

		DexScreenerURL: getEnv("DEXSCREENER_BASE_URL", "https://api.dexscreener.com"),

		// API
		APIAddr: getEnv("API_ADDR", ""),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the settings every binary that signs transactions needs.
func (c *Config) Validate() error {
	var problems []error
	if c.RPCUrl == "" {
		problems = append(problems, errors.New("SOLANA_RPC_URL is required"))
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		problems = append(problems, errors.New("PRIVATE_KEY is required"))
	}
	if c.Threshold < 0 {
		problems = append(problems, errors.New("X_SECONDS must be >= 0"))
	}
	if c.ScanInterval <= 0 {
		problems = append(problems, errors.New("SCAN_INTERVAL must be > 0"))
	}
	if c.SellPercentage < 1 || c.SellPercentage > 100 {
		problems = append(problems, fmt.Errorf("SELL_PERCENTAGE %v must be in [1,100]", c.SellPercentage))
	}
	if c.SlippagePercent < 0 || c.SlippagePercent > 100 {
		problems = append(problems, fmt.Errorf("SLIPPAGE_PERCENT %v must be in [0,100]", c.SlippagePercent))
	}
	if c.ConfirmRetries < 1 {
		problems = append(problems, errors.New("CONFIRM_MAX_RETRIES must be >= 1"))
	}
	switch c.LedgerBackend {
	case LedgerFile:
		if c.LedgerPath == "" {
			problems = append(problems, errors.New("LEDGER_PATH is required for the file ledger"))
		}
	case LedgerRedis:
		if c.RedisAddr == "" {
			problems = append(problems, errors.New("REDIS_ADDR is required for the redis ledger"))
		}
	default:
		problems = append(problems, fmt.Errorf("LEDGER_BACKEND %q must be %s or %s", c.LedgerBackend, LedgerFile, LedgerRedis))
	}
	return errors.Join(problems...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
