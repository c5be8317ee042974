package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/app"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/config"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/holdings"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/scheduler"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/server"
	"github.com/sirupsen/logrus"
)

// main runs the scan, age and sell loop until interrupted, plus the
// status API when API_ADDR is set.
func main() {
	once := flag.Bool("once", false, "run a single scan and sell cycle, then exit")
	flag.Parse()

	logger := app.NewLogger(os.Getenv("LOG_LEVEL"))
	app.LoadEnv(logger)

	cfg := config.Load()
	logger = app.NewLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize runtime")
	}
	defer rt.Close()

	ledger, err := rt.Ledger()
	if err != nil {
		logger.WithError(err).Fatal("failed to open ledger")
	}

	tracker := holdings.NewTracker(rt.RPC, ledger, holdings.TrackerConfig{
		Owner:  rt.Wallet.Address(),
		Logger: logger,
	})

	sched := scheduler.New(tracker, rt.Engine, scheduler.Config{
		Interval:        cfg.ScanInterval,
		Threshold:       cfg.Threshold,
		SellPercentage:  cfg.SellPercentage,
		SlippagePercent: cfg.SlippagePercent,
		Logger:          logger,
	})

	// First pass runs immediately so holdings are stamped before the first tick.
	report, err := sched.RunOnce(ctx)
	if err != nil {
		logger.WithError(err).Warn("initial cycle failed")
	} else {
		logger.WithFields(logrus.Fields{
			"added":       report.Added,
			"aged":        report.Aged,
			"sold":        report.Sold,
			"failed":      report.Failed,
			"quarantined": report.Quarantined,
		}).Info("initial cycle done")
	}
	if *once {
		return
	}
	if err := sched.Start(ctx); err != nil {
		logger.WithError(err).Fatal("failed to start scheduler")
	}

	var srv *server.Server
	if cfg.APIAddr != "" {
		h := &server.Handlers{
			Holdings:   tracker,
			Engine:     rt.Engine,
			Quarantine: rt.Risk,
			Prices:     rt.Prices,
			DevMode:    cfg.DevMode,
			Logger:     logger,
		}
		// Assigned only when set so the handlers see a true nil interface.
		if rt.Cache != nil {
			h.Cache = rt.Cache
		}
		if rt.History != nil {
			h.History = rt.History
		}

		srv, err = server.NewServer(server.ServerDeps{
			Handlers: h,
			Config: server.ServerConfig{
				Addr:    cfg.APIAddr,
				DevMode: cfg.DevMode,
				APIKey:  cfg.APIKey,
			},
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to create http server")
		}
		go func() {
			logger.WithField("addr", cfg.APIAddr).Info("status api starting")
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("status api failed")
				cancel()
			}
		}()
	}

	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()

	if srv != nil {
		_ = srv.Shutdown(shutdownCtx)
	}
	// Wait for an in-flight cycle; its confirmation loop stops on ctx.
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("cycle still running at shutdown")
	}
	logger.Info("stopped")
}
