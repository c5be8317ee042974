package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	maxBackoff       = 30 * time.Second
	maxResponseBytes = 32 << 20
)

// Client is an HTTP client with retry, timeout and rate limit support for Solana RPC
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	limiter      *rate.Limiter
	logger       *logrus.Logger
	nextID       atomic.Int64
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64
	Burst     int

	Logger *logrus.Logger
}

// NewClient creates a new RPC client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		limiter:      limiter,
		logger:       cfg.Logger,
	}
}

// StatusError is a non-200 HTTP answer from the RPC node.
type StatusError struct {
	Code       int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Code == http.StatusTooManyRequests {
		return "rate limited (429)"
	}
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Call makes a JSON-RPC call, retrying transport failures, 429 and 5xx.
// result receives the whole envelope so callers decode both "result" and
// "error"; a JSON-RPC error is never retried here.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	data, err := json.Marshal(request{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	wait := c.retryBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			var se *StatusError
			if errors.As(lastErr, &se) && se.RetryAfter > wait {
				wait = se.RetryAfter
			}
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": wait,
				"method":  method,
			}).WithError(lastErr).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait = min(wait*2, maxBackoff)
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		body, err := c.post(ctx, data)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !se.Temporary() {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s response: %w", method, err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{Code: resp.StatusCode, RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// retryAfter parses the delay-seconds form of Retry-After.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxBackoff)
}
