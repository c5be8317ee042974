package swapengine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
)

// ErrQuarantined blocks automatic sells of a mint whose last sell ended
// Unknown, until an operator releases it.
var ErrQuarantined = errors.New("mint quarantined")

// RiskConfig defines risk management parameters
type RiskConfig struct {
	// Buys only; sells always exit.
	MaxBuySOL     float64 // Max SOL per buy
	DailyLimitSOL float64 // Max SOL bought per rolling 24h

	MaxSlippagePercent float64
	MinBalanceSOL      float64 // Min wallet balance to keep for fees
}

// DefaultRiskConfig returns conservative risk settings
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxBuySOL:          1.0,
		DailyLimitSOL:      10.0,
		MaxSlippagePercent: 50,
		MinBalanceSOL:      0.01,
	}
}

// RiskCheckResult contains risk validation outcome
type RiskCheckResult struct {
	Allowed bool
	Reason  string

	ExceedsMaxBuy     bool
	ExceedsDailyLimit bool
	DailyUsedSOL      float64
	DailyRemainingSOL float64
}

// QuarantineEntry records why a mint is held back.
type QuarantineEntry struct {
	Mint      string    `json:"mint"`
	Signature string    `json:"signature"`
	Reason    string    `json:"reason"`
	Since     time.Time `json:"since"`
}

// RiskManager enforces buy limits and the sell quarantine.
type RiskManager struct {
	config       RiskConfig
	dailyTracker *DailyLimitTracker

	mu         sync.RWMutex
	quarantine map[string]QuarantineEntry
}

func NewRiskManager(config RiskConfig) *RiskManager {
	return &RiskManager{
		config:       config,
		dailyTracker: NewDailyLimitTracker(),
		quarantine:   make(map[string]QuarantineEntry),
	}
}

// CheckBuy validates a buy of solIn SOL from a wallet holding balanceSOL.
func (rm *RiskManager) CheckBuy(solIn, slippagePercent, balanceSOL float64) *RiskCheckResult {
	result := &RiskCheckResult{Allowed: true}

	if rm.config.MaxBuySOL > 0 && solIn > rm.config.MaxBuySOL {
		result.Allowed = false
		result.ExceedsMaxBuy = true
		result.Reason = fmt.Sprintf("buy of %.4f SOL exceeds max %.4f SOL per transaction", solIn, rm.config.MaxBuySOL)
		return result
	}

	used := rm.dailyTracker.GetDailyUsage()
	result.DailyUsedSOL = used
	result.DailyRemainingSOL = rm.config.DailyLimitSOL - used
	if rm.config.DailyLimitSOL > 0 && used+solIn > rm.config.DailyLimitSOL {
		result.Allowed = false
		result.ExceedsDailyLimit = true
		result.Reason = fmt.Sprintf("daily limit exceeded: used %.4f + %.4f > %.4f SOL", used, solIn, rm.config.DailyLimitSOL)
		return result
	}

	if rm.config.MaxSlippagePercent > 0 && slippagePercent > rm.config.MaxSlippagePercent {
		result.Allowed = false
		result.Reason = fmt.Sprintf("slippage %.2f%% exceeds max %.2f%%", slippagePercent, rm.config.MaxSlippagePercent)
		return result
	}

	if balanceSOL-solIn < rm.config.MinBalanceSOL {
		result.Allowed = false
		result.Reason = fmt.Sprintf("insufficient balance: would leave %.4f SOL, need %.4f SOL minimum",
			balanceSOL-solIn, rm.config.MinBalanceSOL)
		return result
	}

	return result
}

// CheckSell returns ErrQuarantined for held-back mints.
func (rm *RiskManager) CheckSell(mint solana.PublicKey) error {
	rm.mu.RLock()
	entry, ok := rm.quarantine[mint.String()]
	rm.mu.RUnlock()
	if ok {
		return fmt.Errorf("%w: %s since %s (signature %s)", ErrQuarantined, mint, entry.Since.Format(time.RFC3339), entry.Signature)
	}
	return nil
}

// RecordResult updates limits and quarantine from a finished swap.
func (rm *RiskManager) RecordResult(result *SwapResult) {
	if result == nil || result.Order == nil {
		return
	}
	switch result.Outcome {
	case OutcomeConfirmed:
		if result.Order.Side == SideBuy {
			rm.dailyTracker.RecordSwap(result.Order.Amount)
		}
	case OutcomeUnknown:
		if result.Order.Side == SideSell {
			rm.Quarantine(result.Order.Mint, result.Signature, result.Reason)
		}
	}
}

func (rm *RiskManager) Quarantine(mint solana.PublicKey, signature, reason string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.quarantine[mint.String()] = QuarantineEntry{
		Mint:      mint.String(),
		Signature: signature,
		Reason:    reason,
		Since:     time.Now(),
	}
}

// Release lifts a quarantine. It reports whether the mint was held.
func (rm *RiskManager) Release(mint string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	_, ok := rm.quarantine[mint]
	delete(rm.quarantine, mint)
	return ok
}

// Quarantined lists held mints, oldest first.
func (rm *RiskManager) Quarantined() []QuarantineEntry {
	rm.mu.RLock()
	out := make([]QuarantineEntry, 0, len(rm.quarantine))
	for _, e := range rm.quarantine {
		out = append(out, e)
	}
	rm.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Since.Before(out[j].Since) })
	return out
}

// DailyUsage returns SOL spent on buys in the last 24 hours.
func (rm *RiskManager) DailyUsage() float64 {
	return rm.dailyTracker.GetDailyUsage()
}

// DailyLimitTracker tracks rolling 24-hour usage
type DailyLimitTracker struct {
	mu    sync.Mutex
	swaps []swapRecord
	now   func() time.Time
}

type swapRecord struct {
	timestamp time.Time
	amountSOL float64
}

func NewDailyLimitTracker() *DailyLimitTracker {
	return &DailyLimitTracker{now: time.Now}
}

// RecordSwap adds a swap to the tracker
func (t *DailyLimitTracker) RecordSwap(amountSOL float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.swaps = append(t.swaps, swapRecord{timestamp: t.now(), amountSOL: amountSOL})
	t.cleanup()
}

// GetDailyUsage calculates total usage in the last 24 hours
func (t *DailyLimitTracker) GetDailyUsage() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleanup()

	total := 0.0
	for _, swap := range t.swaps {
		total += swap.amountSOL
	}
	return total
}

// cleanup removes swaps older than 24 hours; callers hold mu.
func (t *DailyLimitTracker) cleanup() {
	cutoff := t.now().Add(-24 * time.Hour)

	kept := t.swaps[:0]
	for _, swap := range t.swaps {
		if swap.timestamp.After(cutoff) {
			kept = append(kept, swap)
		}
	}
	t.swaps = kept
}
