package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	"github.com/sirupsen/logrus"
)

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Logger   *logrus.Logger
}

// ClickHouseStore is the sell_outcomes history table.
type ClickHouseStore struct {
	conn driver.Conn
}

const createOutcomesTable = `
	CREATE TABLE IF NOT EXISTS sell_outcomes (
		signature   String,
		timestamp   DateTime64(3),
		mint        String,
		symbol      String,
		side        LowCardinality(String),
		venue       LowCardinality(String),
		outcome     LowCardinality(String),
		reason      String,
		percentage  Float64,
		amount_raw  UInt64,
		bound       UInt64,
		price_sol   Float64,
		fee_sol     Float64,
		attempts    UInt16,
		latency_ms  Int64
	) ENGINE = MergeTree()
	ORDER BY (timestamp, mint)
`

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	if cfg.Username == "" {
		cfg.Username = "default"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, createOutcomesTable); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create sell_outcomes: %w", err)
	}

	cfg.Logger.WithFields(logrus.Fields{
		"addr":     cfg.Addr,
		"database": cfg.Database,
	}).Info("connected to ClickHouse")

	return &ClickHouseStore{conn: conn}, nil
}

func (c *ClickHouseStore) RecordOutcome(ctx context.Context, o *models.SellOutcome) error {
	query := `
		INSERT INTO sell_outcomes (
			signature, timestamp, mint, symbol, side, venue, outcome, reason,
			percentage, amount_raw, bound, price_sol, fee_sol, attempts, latency_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		o.Signature,
		o.Timestamp,
		o.Mint,
		o.Symbol,
		o.Side,
		o.Venue,
		o.Outcome,
		o.Reason,
		o.Percentage,
		o.AmountRaw,
		o.Bound,
		o.PriceSOL,
		o.FeeSOL,
		uint16(o.Attempts),
		o.LatencyMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

func (c *ClickHouseStore) RecentOutcomes(ctx context.Context, limit int) ([]*models.SellOutcome, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.conn.Query(ctx, `
		SELECT signature, timestamp, mint, symbol, side, venue, outcome, reason,
			percentage, amount_raw, bound, price_sol, fee_sol, attempts, latency_ms
		FROM sell_outcomes
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []*models.SellOutcome
	for rows.Next() {
		var (
			o        models.SellOutcome
			attempts uint16
		)
		if err := rows.Scan(
			&o.Signature, &o.Timestamp, &o.Mint, &o.Symbol, &o.Side, &o.Venue, &o.Outcome, &o.Reason,
			&o.Percentage, &o.AmountRaw, &o.Bound, &o.PriceSOL, &o.FeeSOL, &attempts, &o.LatencyMS,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Attempts = int(attempts)
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
