package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/constants"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	recentOutcomesKey = constants.RedisKeyRecentOutcomes
	pricePrefix       = constants.RedisKeyPricePrefix

	defaultRecentCap = constants.MaxRecentOutcomes
	defaultPriceTTL  = 5 * time.Minute
)

// ErrPriceNotCached is returned by GetPrice on a cache miss.
var ErrPriceNotCached = errors.New("price not cached")

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	RecentCap int64
	PriceTTL  time.Duration
}

// RedisCache keeps a capped list of recent outcomes and short-lived prices.
type RedisCache struct {
	client    redis.UniversalClient
	recentCap int64
	priceTTL  time.Duration
}

// NewRedisCache dials Redis and checks the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisCacheFromClient(client, cfg), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.UniversalClient, cfg RedisConfig) *RedisCache {
	if cfg.RecentCap <= 0 {
		cfg.RecentCap = defaultRecentCap
	}
	if cfg.PriceTTL <= 0 {
		cfg.PriceTTL = defaultPriceTTL
	}
	return &RedisCache{client: client, recentCap: cfg.RecentCap, priceTTL: cfg.PriceTTL}
}

// Client exposes the underlying connection for other Redis-backed stores.
func (r *RedisCache) Client() redis.UniversalClient {
	return r.client
}

// RecordOutcome pushes onto the recent list and trims it to the cap.
func (r *RedisCache) RecordOutcome(ctx context.Context, outcome *models.SellOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, recentOutcomesKey, data)
	pipe.LTrim(ctx, recentOutcomesKey, 0, r.recentCap-1)
	if outcome.PriceSOL > 0 {
		pipe.Set(ctx, pricePrefix+outcome.Mint, strconv.FormatFloat(outcome.PriceSOL, 'f', -1, 64), r.priceTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache outcome: %w", err)
	}
	return nil
}

func (r *RedisCache) GetRecentOutcomes(ctx context.Context, limit int64) ([]*models.SellOutcome, error) {
	if limit <= 0 {
		limit = 50
	}
	vals, err := r.client.LRange(ctx, recentOutcomesKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent outcomes: %w", err)
	}

	out := make([]*models.SellOutcome, 0, len(vals))
	for _, v := range vals {
		var o models.SellOutcome
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			continue
		}
		out = append(out, &o)
	}
	return out, nil
}

func (r *RedisCache) UpdatePrice(ctx context.Context, mint string, price float64) error {
	if err := r.client.Set(ctx, pricePrefix+mint, strconv.FormatFloat(price, 'f', -1, 64), r.priceTTL).Err(); err != nil {
		return fmt.Errorf("cache price: %w", err)
	}
	return nil
}

func (r *RedisCache) GetPrice(ctx context.Context, mint string) (float64, error) {
	val, err := r.client.Get(ctx, pricePrefix+mint).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrPriceNotCached
	}
	if err != nil {
		return 0, fmt.Errorf("get price: %w", err)
	}
	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cached price: %w", err)
	}
	return price, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
