package storage

import (
	"context"
	"io"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
)

// OutcomeSink receives every finished swap outcome.
type OutcomeSink interface {
	RecordOutcome(ctx context.Context, outcome *models.SellOutcome) error
}

// OutcomeCache keeps recent outcomes and spot prices for the status API.
type OutcomeCache interface {
	OutcomeSink

	// GetRecentOutcomes returns the newest outcomes first
	GetRecentOutcomes(ctx context.Context, limit int64) ([]*models.SellOutcome, error)

	// UpdatePrice caches a mint's spot price in SOL
	UpdatePrice(ctx context.Context, mint string, price float64) error

	// GetPrice returns a cached spot price
	GetPrice(ctx context.Context, mint string) (float64, error)

	Ping(ctx context.Context) error
	io.Closer
}

// OutcomeStore is the durable outcome history.
type OutcomeStore interface {
	OutcomeSink

	// RecentOutcomes queries the newest rows
	RecentOutcomes(ctx context.Context, limit int) ([]*models.SellOutcome, error)

	Ping(ctx context.Context) error
	io.Closer
}

// OutcomeHandler processes outcome events from a subscription.
type OutcomeHandler func(*models.SellOutcome)
