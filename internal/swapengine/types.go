package swapengine

import (
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/pumpfun"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/raydium"
	"github.com/gagliardetto/solana-go"
)

// Venue is where a mint currently trades.
type Venue string

const (
	VenueCurve Venue = pumpfun.VenueName
	VenuePool  Venue = raydium.VenueName
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Outcome is the terminal state of one submitted transaction.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeFailed    Outcome = "failed"
	OutcomeUnknown   Outcome = "unknown"
)

// ErrTransactionFailed is a transaction that landed with an on-chain error.
var ErrTransactionFailed = errors.New("transaction failed on chain")

// SwapOrder is a fully sized trade for one mint on one venue.
type SwapOrder struct {
	Venue           Venue
	Mint            solana.PublicKey
	Side            Side
	Amount          float64 // SOL in for buys, held tokens for sells
	Percentage      float64 // sells only
	SlippagePercent float64
	AmountRaw       uint64 // raw units handed to the venue
	Bound           uint64 // max lamports in for buys, min lamports out for sells
}

func (o *SwapOrder) String() string {
	return fmt.Sprintf("%s %s on %s amount=%d bound=%d", o.Side, o.Mint, o.Venue, o.AmountRaw, o.Bound)
}

// SwapResult is what one Execute call produced.
type SwapResult struct {
	Order       *SwapOrder
	Signature   string
	Outcome     Outcome
	Reason      string
	Cause       error // set when the swap never reached the chain
	Attempts    int   // confirmation polls used
	FeeSOL      float64
	Slot        uint64
	Latency     time.Duration
	StartedAt   time.Time
	CompletedAt time.Time
}

// Err returns nil for confirmed swaps and a classified error otherwise.
func (r *SwapResult) Err() error {
	switch r.Outcome {
	case OutcomeConfirmed:
		return nil
	case OutcomeUnknown:
		return fmt.Errorf("%w: %s", errs.ErrConfirmationUnknown, r.Signature)
	default:
		if r.Cause != nil {
			return r.Cause
		}
		return fmt.Errorf("%w: %s", ErrTransactionFailed, r.Reason)
	}
}

// Route is the venue decision for a mint plus the curve read that led to it.
type Route struct {
	Venue Venue
	Curve *pumpfun.CurveState
}

// SellQuote previews a sell without submitting anything.
type SellQuote struct {
	Mint         solana.PublicKey
	Venue        Venue
	TokenBalance float64
	Percentage   float64
	AmountRaw    uint64
	TokenPrice   float64 // SOL per token
	ExpectedSOL  float64
	MinSOLOut    float64
	PriceImpact  float64
	QuotedAt     time.Time
}
