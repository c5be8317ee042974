package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/constants"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// OutcomesChannel carries every outcome.
	OutcomesChannel = constants.PubSubChannelOutcomes
	// OutcomesPattern matches only the per-outcome channels.
	OutcomesPattern = constants.PubSubPatternOutcomes
)

// OutcomeChannel is the channel for one outcome kind, e.g. "autosell:outcomes:unknown".
func OutcomeChannel(outcome string) string {
	return fmt.Sprintf("%s:%s", OutcomesChannel, outcome)
}

type PubSub struct {
	client redis.UniversalClient
	logger *logrus.Logger
}

func NewPubSub(client redis.UniversalClient, logger *logrus.Logger) *PubSub {
	if logger == nil {
		logger = logrus.New()
	}
	return &PubSub{client: client, logger: logger}
}

// RecordOutcome publishes to the shared and the outcome-specific channel.
func (p *PubSub) RecordOutcome(ctx context.Context, outcome *models.SellOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, OutcomesChannel, data)
	pipe.Publish(ctx, OutcomeChannel(outcome.Outcome), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish outcome: %w", err)
	}
	return nil
}

// Subscribe delivers outcomes from channel until ctx ends.
func (p *PubSub) Subscribe(ctx context.Context, channel string, handler storage.OutcomeHandler) error {
	sub := p.client.Subscribe(ctx, channel)
	defer sub.Close()
	// Receive confirms the subscription before messages are read.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return p.consume(ctx, sub, channel, handler)
}

// PSubscribe delivers outcomes from every channel matching pattern.
func (p *PubSub) PSubscribe(ctx context.Context, pattern string, handler storage.OutcomeHandler) error {
	sub := p.client.PSubscribe(ctx, pattern)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("psubscribe %s: %w", pattern, err)
	}
	return p.consume(ctx, sub, pattern, handler)
}

func (p *PubSub) consume(ctx context.Context, sub *redis.PubSub, name string, handler storage.OutcomeHandler) error {
	p.logger.WithField("channel", name).Info("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var outcome models.SellOutcome
			if err := json.Unmarshal([]byte(msg.Payload), &outcome); err != nil {
				p.logger.WithError(err).WithField("channel", msg.Channel).Warn("bad outcome payload")
				continue
			}
			handler(&outcome)
		}
	}
}
