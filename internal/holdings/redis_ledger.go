package holdings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/constants"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// LedgerKey is the hash holding one field per mint.
const LedgerKey = constants.RedisKeyLedger

type RedisLedger struct {
	client redis.Cmdable
	key    string
	logger *logrus.Logger
}

func NewRedisLedger(client redis.Cmdable, logger *logrus.Logger) (*RedisLedger, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisLedger{client: client, key: LedgerKey, logger: logger}, nil
}

func (l *RedisLedger) All(ctx context.Context) (map[string]Holding, error) {
	fields, err := l.client.HGetAll(ctx, l.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	out := make(map[string]Holding, len(fields))
	for mint, raw := range fields {
		var r record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			l.logger.WithError(err).WithField("mint", mint).Warn("skipping corrupt ledger entry")
			continue
		}
		h := r.holding()
		h.Mint = mint
		out[mint] = h
	}
	return out, nil
}

// Add writes new entries only; an existing field keeps its detection time.
func (l *RedisLedger) Add(ctx context.Context, holdings ...Holding) error {
	if len(holdings) == 0 {
		return nil
	}

	pipe := l.client.TxPipeline()
	for _, h := range holdings {
		b, err := json.Marshal(toRecord(h))
		if err != nil {
			return fmt.Errorf("marshal ledger entry: %w", err)
		}
		pipe.HSetNX(ctx, l.key, h.Mint, b)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add ledger entries: %w", err)
	}
	return nil
}

func (l *RedisLedger) Delete(ctx context.Context, mint string) error {
	if err := l.client.HDel(ctx, l.key, mint).Err(); err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	return nil
}
