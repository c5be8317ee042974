package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/holdings"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/swapengine"
	"github.com/gagliardetto/solana-go"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Seller exits a position.
type Seller interface {
	Sell(ctx context.Context, mint solana.PublicKey, percentage, slippage float64) (*swapengine.SwapResult, error)
}

type Config struct {
	Interval        time.Duration // between cycles
	Threshold       time.Duration // holdings older than this are sold
	SellPercentage  float64
	SlippagePercent float64
	Logger          *logrus.Logger
}

// CycleReport summarizes one scan-and-sell pass.
type CycleReport struct {
	Added       int
	Aged        int
	Sold        int
	Removed     int
	Failed      int
	Quarantined int
}

// Scheduler drives the scan, age and sell loop on a cron schedule.
type Scheduler struct {
	tracker *holdings.Tracker
	seller  Seller
	cfg     Config
	logger  *logrus.Logger
	now     func() time.Time

	cron *cron.Cron
}

func New(tracker *holdings.Tracker, seller Seller, cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.SellPercentage == 0 {
		cfg.SellPercentage = 100
	}

	cronLog := cron.PrintfLogger(cfg.Logger)
	return &Scheduler{
		tracker: tracker,
		seller:  seller,
		cfg:     cfg,
		logger:  cfg.Logger,
		now:     time.Now,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
	}
}

// Start schedules RunOnce every Interval until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.cfg.Interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.WithError(err).Error("cycle failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	s.logger.WithFields(logrus.Fields{
		"interval":  s.cfg.Interval.String(),
		"threshold": s.cfg.Threshold.String(),
	}).Info("scheduler started")
	s.cron.Start()
	return nil
}

// Stop halts scheduling; the returned context is done when a running cycle ends.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce refreshes the ledger and sells every aged holding. A failed scan
// still sells what the ledger already knows about.
func (s *Scheduler) RunOnce(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{}

	added, err := s.tracker.Refresh(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("wallet scan failed")
	}
	report.Added = added

	aged, err := s.tracker.FindAged(ctx, s.cfg.Threshold, s.now())
	if err != nil {
		return report, err
	}
	report.Aged = len(aged)

	for _, h := range aged {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		s.process(ctx, h, report)
	}

	if report.Aged > 0 || report.Added > 0 {
		s.logger.WithFields(logrus.Fields{
			"added":       report.Added,
			"aged":        report.Aged,
			"sold":        report.Sold,
			"removed":     report.Removed,
			"failed":      report.Failed,
			"quarantined": report.Quarantined,
		}).Info("cycle complete")
	}
	return report, nil
}

// process sells one holding. Panics are contained to the holding.
func (s *Scheduler) process(ctx context.Context, h holdings.Holding, report *CycleReport) {
	log := s.logger.WithFields(logrus.Fields{
		"mint":   h.Mint,
		"symbol": h.Symbol,
		"age":    h.Age(s.now()).Round(time.Second).String(),
	})

	defer func() {
		if r := recover(); r != nil {
			report.Failed++
			log.WithField("panic", r).Error("sell panicked")
		}
	}()

	mint, err := solana.PublicKeyFromBase58(h.Mint)
	if err != nil {
		log.WithError(err).Warn("dropping holding with invalid mint")
		s.remove(ctx, log, h.Mint, report)
		return
	}

	result, err := s.seller.Sell(ctx, mint, s.cfg.SellPercentage, s.cfg.SlippagePercent)
	if result != nil {
		log = log.WithFields(logrus.Fields{
			"venue":     result.Order.Venue,
			"signature": result.Signature,
			"outcome":   result.Outcome,
		})
	}

	switch {
	case err == nil:
		report.Sold++
		log.Info("holding sold")
		s.remove(ctx, log, h.Mint, report)
	case errors.Is(err, errs.ErrZeroBalance):
		log.Info("holding already gone")
		s.remove(ctx, log, h.Mint, report)
	case errors.Is(err, swapengine.ErrQuarantined):
		report.Quarantined++
		log.Debug("holding quarantined, skipping")
	case errors.Is(err, errs.ErrConfirmationUnknown):
		report.Quarantined++
		log.WithError(err).Error("sell outcome unknown")
	default:
		report.Failed++
		log.WithError(err).Warn("sell failed, will retry next cycle")
	}
}

func (s *Scheduler) remove(ctx context.Context, log *logrus.Entry, mint string, report *CycleReport) {
	if err := s.tracker.Remove(ctx, mint); err != nil {
		log.WithError(err).Error("failed to remove holding")
		return
	}
	report.Removed++
}
