package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/app"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/cache"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/config"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// subscriber tails sell outcomes published by the auto-sell loop.
func main() {
	only := flag.String("outcome", "", "only this outcome kind (confirmed|failed|unknown); default all")
	flag.Parse()

	logger := app.NewLogger(os.Getenv("LOG_LEVEL"))
	app.LoadEnv(logger)
	cfg := config.Load()
	logger = app.NewLogger(cfg.LogLevel)
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	pubsub := cache.NewPubSub(client, logger)
	handle := func(o *models.SellOutcome) {
		entry := logger.WithFields(logrus.Fields{
			"mint":      o.Mint,
			"side":      o.Side,
			"venue":     o.Venue,
			"signature": o.Signature,
			"attempts":  o.Attempts,
		})
		switch {
		case o.Confirmed():
			entry.Info("confirmed")
		case o.Outcome == "unknown":
			entry.Warn("unknown outcome, mint quarantined")
		default:
			entry.WithField("reason", o.Reason).Error(o.Outcome)
		}
	}

	go func() {
		var err error
		if *only != "" {
			err = pubsub.Subscribe(ctx, cache.OutcomeChannel(*only), handle)
		} else {
			err = pubsub.PSubscribe(ctx, cache.OutcomesPattern, handle)
		}
		if err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("subscription ended")
			cancel()
		}
	}()

	logger.Info("subscriber running, press Ctrl+C to stop")
	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	logger.Info("shutting down subscriber")
}
