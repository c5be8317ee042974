package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/constants"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// DefaultQueue receives outcome notifications.
const DefaultQueue = constants.QueueOutcomes

// Channel is the slice of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Config struct {
	URL         string
	Queue       string
	DialRetries int
	RetryDelay  time.Duration
	Logger      *logrus.Logger
}

// Publisher sends outcome events to a durable RabbitMQ queue as persistent
// JSON messages.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel Channel
	queue   string
	logger  *logrus.Logger
}

// Dial connects with retries and declares the queue.
func Dial(cfg Config) (*Publisher, error) {
	if cfg.DialRetries <= 0 {
		cfg.DialRetries = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 3 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < cfg.DialRetries; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		if i < cfg.DialRetries-1 {
			cfg.Logger.WithError(err).Warnf("rabbitmq dial failed (attempt %d/%d), retrying in %v", i+1, cfg.DialRetries, cfg.RetryDelay)
			time.Sleep(cfg.RetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", cfg.DialRetries, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := NewPublisher(ch, cfg.Queue, cfg.Logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares queue on an open channel.
func NewPublisher(ch Channel, queue string, logger *logrus.Logger) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if logger == nil {
		logger = logrus.New()
	}

	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &Publisher{channel: ch, queue: queue, logger: logger}, nil
}

// RecordOutcome publishes one outcome.
func (p *Publisher) RecordOutcome(ctx context.Context, outcome *models.SellOutcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    outcome.Timestamp,
			MessageId:    outcome.Signature,
			Type:         outcome.Outcome,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish outcome: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"queue":     p.queue,
		"mint":      outcome.Mint,
		"signature": outcome.Signature,
	}).Debug("outcome published")
	return nil
}

func (p *Publisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
