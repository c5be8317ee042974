package server

import (
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/holdings"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/models"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/swapengine"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK         bool              `json:"ok"`                   // Service health status
	Components map[string]string `json:"components,omitempty"` // Per-backend status
}

// HoldingsResponse lists tracked holdings with their age
type HoldingsResponse struct {
	Items []HoldingItem `json:"items"`
}

// HoldingItem is one ledger entry as served by the API
type HoldingItem struct {
	holdings.Holding
	AgeSeconds int64 `json:"age_seconds"`
}

// OutcomesResponse lists recent sell outcomes, newest first
type OutcomesResponse struct {
	Items  []*models.SellOutcome `json:"items"`
	Source string                `json:"source"` // redis or clickhouse
}

// QuoteResponse is a read-only sell preview
type QuoteResponse struct {
	Mint         string    `json:"mint"`
	Venue        string    `json:"venue"`
	TokenBalance float64   `json:"token_balance"`
	Percentage   float64   `json:"percentage"`
	AmountRaw    uint64    `json:"amount_raw"`
	TokenPrice   float64   `json:"token_price_sol"`
	ExpectedSOL  float64   `json:"expected_sol"`
	MinSOLOut    float64   `json:"min_sol_out"`
	PriceImpact  float64   `json:"price_impact,omitempty"`
	QuotedAt     time.Time `json:"quoted_at"`
}

func newQuoteResponse(q *swapengine.SellQuote) QuoteResponse {
	return QuoteResponse{
		Mint:         q.Mint.String(),
		Venue:        string(q.Venue),
		TokenBalance: q.TokenBalance,
		Percentage:   q.Percentage,
		AmountRaw:    q.AmountRaw,
		TokenPrice:   q.TokenPrice,
		ExpectedSOL:  q.ExpectedSOL,
		MinSOLOut:    q.MinSOLOut,
		PriceImpact:  q.PriceImpact,
		QuotedAt:     q.QuotedAt,
	}
}

// PriceResponse represents a mint's spot price in SOL
type PriceResponse struct {
	Mint   string  `json:"mint"`
	Price  float64 `json:"price"`
	Cached bool    `json:"cached"`
}

// QuarantineResponse lists mints held back from automatic sells
type QuarantineResponse struct {
	Items []swapengine.QuarantineEntry `json:"items"`
}
