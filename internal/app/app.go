// Package app wires config into the long-lived clients every binary shares.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/cache"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/config"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/dexscreener"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/holdings"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/queue"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/raydium"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/swapengine"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/wallet"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewLogger returns the text logger all binaries use.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// LoadEnv reads .env from the project root before anything calls os.Getenv.
func LoadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Debugf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// Runtime holds the clients built from one Config.
type Runtime struct {
	Config *config.Config
	Logger *logrus.Logger

	RPC    *rpc.Client
	Wallet *wallet.Wallet
	Pools  *raydium.PoolRegistry
	Prices *dexscreener.Client
	Risk   *swapengine.RiskManager
	Engine *swapengine.Engine

	Redis   redis.UniversalClient // nil when REDIS_ADDR is unset
	Cache   *cache.RedisCache
	History *cache.ClickHouseStore
	Outcome *swapengine.OutcomeFanOut

	closers []func() error
}

// Build connects everything the engine needs. Optional backends that fail
// to connect are logged and left out.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	w, err := wallet.NewWallet(wallet.WalletConfig{
		PrivateKey:      cfg.PrivateKey,
		ExpectedAddress: cfg.WalletAddress,
	})
	if err != nil {
		return nil, err
	}
	rt.Wallet = w

	rt.RPC = rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		RateLimit:    cfg.RPCRateLimit,
		Burst:        int(cfg.RPCRateLimit),
		Logger:       logger,
	})

	rt.Pools, err = raydium.NewPoolRegistry(cfg.PoolConfigPath)
	if err != nil {
		logger.WithError(err).WithField("path", cfg.PoolConfigPath).Warn("no raydium pools loaded; migrated mints cannot be sold")
		rt.Pools = raydium.NewPoolRegistryFromKeys()
	}

	rt.Prices = dexscreener.NewClient(cfg.DexScreenerURL)
	rt.Outcome = swapengine.NewOutcomeFanOut(5*time.Second, logger)
	rt.connectSinks(ctx)

	rt.Risk = swapengine.NewRiskManager(swapengine.RiskConfig{
		MaxBuySOL:          cfg.MaxBuySOL,
		DailyLimitSOL:      cfg.DailyLimitSOL,
		MaxSlippagePercent: swapengine.DefaultRiskConfig().MaxSlippagePercent,
		MinBalanceSOL:      cfg.MinBalanceSOL,
	})

	executor := swapengine.NewExecutor(rt.RPC, w, swapengine.ExecutorConfig{
		Policy: swapengine.RetryPolicy{
			MaxAttempts: cfg.ConfirmRetries,
			Interval:    cfg.ConfirmInterval,
			Deadline:    cfg.ConfirmDeadline,
		},
		Simulate: cfg.Simulate,
		Logger:   logger,
	})

	rt.Engine = swapengine.NewEngine(rt.RPC, executor, rt.Pools, swapengine.EngineConfig{
		UnitLimit:       cfg.UnitBudget,
		UnitPrice:       cfg.UnitPrice,
		SlippagePercent: cfg.SlippagePercent,
		Risk:            rt.Risk,
		Notifier:        rt.Outcome,
		Prices:          rt.Prices,
		Logger:          logger,
	})

	logger.WithFields(logrus.Fields{
		"wallet": w.Address(),
		"pools":  rt.Pools.PoolCount(),
		"sinks":  rt.Outcome.Len(),
	}).Info("runtime ready")
	return rt, nil
}

func (rt *Runtime) connectSinks(ctx context.Context) {
	cfg, logger := rt.Config, rt.Logger

	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.WithError(err).Warn("redis unavailable; outcomes will not be cached or published")
		} else {
			rt.Cache = c
			rt.Redis = c.Client()
			rt.closers = append(rt.closers, c.Close)
			rt.Outcome.Add("redis", c)
			rt.Outcome.Add("pubsub", cache.NewPubSub(c.Client(), logger))
		}
	}

	if cfg.ClickHouseAddr != "" {
		ch, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
			Logger:   logger,
		})
		if err != nil {
			logger.WithError(err).Warn("clickhouse unavailable; outcome history disabled")
		} else {
			rt.History = ch
			rt.closers = append(rt.closers, ch.Close)
			rt.Outcome.Add("clickhouse", ch)
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := queue.Dial(queue.Config{
			URL:    cfg.RabbitMQURL,
			Queue:  cfg.RabbitMQQueue,
			Logger: logger,
		})
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; outcome queue disabled")
		} else {
			rt.closers = append(rt.closers, pub.Close)
			rt.Outcome.Add("rabbitmq", pub)
		}
	}
}

// Ledger returns the configured holdings ledger.
func (rt *Runtime) Ledger() (holdings.Ledger, error) {
	switch rt.Config.LedgerBackend {
	case config.LedgerRedis:
		if rt.Redis == nil {
			return nil, fmt.Errorf("ledger backend %q needs a reachable REDIS_ADDR", config.LedgerRedis)
		}
		return holdings.NewRedisLedger(rt.Redis, rt.Logger)
	default:
		return holdings.NewFileLedger(rt.Config.LedgerPath)
	}
}

// Close releases every backend connection in reverse order.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.Logger.WithError(err).Warn("close failed")
		}
	}
}
