package swapengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/storage"
	"github.com/sirupsen/logrus"
)

// OutcomeFanOut delivers each outcome to every registered sink. Sink
// failures are logged and joined; they never change the outcome itself.
type OutcomeFanOut struct {
	sinks   []namedSink
	timeout time.Duration
	logger  *logrus.Logger
}

type namedSink struct {
	name string
	sink storage.OutcomeSink
}

func NewOutcomeFanOut(timeout time.Duration, logger *logrus.Logger) *OutcomeFanOut {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &OutcomeFanOut{timeout: timeout, logger: logger}
}

// Add registers a sink; nil sinks are ignored.
func (f *OutcomeFanOut) Add(name string, sink storage.OutcomeSink) *OutcomeFanOut {
	if sink != nil {
		f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
	}
	return f
}

// Len reports the number of registered sinks.
func (f *OutcomeFanOut) Len() int { return len(f.sinks) }

func (f *OutcomeFanOut) RecordOutcome(ctx context.Context, outcome *models.SellOutcome) error {
	var errs []error
	for _, s := range f.sinks {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		err := s.sink.RecordOutcome(sctx, outcome)
		cancel()
		if err != nil {
			f.logger.WithError(err).WithFields(logrus.Fields{
				"sink":      s.name,
				"signature": outcome.Signature,
			}).Warn("outcome delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// NewSellOutcome converts a swap result into the published event.
func NewSellOutcome(r *SwapResult, symbol string, priceSOL float64) *models.SellOutcome {
	o := &models.SellOutcome{
		Signature: r.Signature,
		Timestamp: r.CompletedAt,
		Symbol:    symbol,
		Outcome:   string(r.Outcome),
		Reason:    r.Reason,
		PriceSOL:  priceSOL,
		FeeSOL:    r.FeeSOL,
		Attempts:  r.Attempts,
		LatencyMS: r.Latency.Milliseconds(),
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Now()
	}
	if r.Order != nil {
		o.Mint = r.Order.Mint.String()
		o.Side = string(r.Order.Side)
		o.Venue = string(r.Order.Venue)
		o.Percentage = r.Order.Percentage
		o.AmountRaw = r.Order.AmountRaw
		o.Bound = r.Order.Bound
	}
	return o
}
