package models

import "time"

// SellOutcome is the event emitted after every submitted swap, whatever its result.
type SellOutcome struct {
	Signature  string    `json:"signature"`
	Timestamp  time.Time `json:"timestamp"`
	Mint       string    `json:"mint"`
	Symbol     string    `json:"symbol,omitempty"`
	Side       string    `json:"side"`  // buy, sell
	Venue      string    `json:"venue"` // pumpfun, raydium
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Percentage float64   `json:"percentage,omitempty"`
	AmountRaw  uint64    `json:"amount_raw"`
	Bound      uint64    `json:"bound"`
	PriceSOL   float64   `json:"price_sol,omitempty"`
	FeeSOL     float64   `json:"fee_sol"`
	Attempts   int       `json:"attempts"`
	LatencyMS  int64     `json:"latency_ms"`
}

// Confirmed reports whether the swap landed without error.
func (o *SellOutcome) Confirmed() bool {
	return o.Outcome == "confirmed"
}
