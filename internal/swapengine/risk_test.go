package swapengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBuyLimits(t *testing.T) {
	rm := NewRiskManager(RiskConfig{
		MaxBuySOL:          1,
		DailyLimitSOL:      2,
		MaxSlippagePercent: 20,
		MinBalanceSOL:      0.01,
	})

	assert.True(t, rm.CheckBuy(0.5, 10, 5).Allowed)

	res := rm.CheckBuy(1.5, 10, 5)
	assert.False(t, res.Allowed)
	assert.True(t, res.ExceedsMaxBuy)

	res = rm.CheckBuy(0.5, 30, 5)
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "slippage")

	res = rm.CheckBuy(0.5, 10, 0.505)
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "insufficient balance")
}

func TestCheckBuyDailyLimit(t *testing.T) {
	rm := NewRiskManager(RiskConfig{MaxBuySOL: 1, DailyLimitSOL: 2})
	now := time.Now()
	rm.dailyTracker.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		rm.RecordResult(&SwapResult{
			Order:   &SwapOrder{Side: SideBuy, Amount: 0.9},
			Outcome: OutcomeConfirmed,
		})
	}
	res := rm.CheckBuy(0.5, 0, 10)
	assert.False(t, res.Allowed)
	assert.True(t, res.ExceedsDailyLimit)
	assert.InDelta(t, 1.8, res.DailyUsedSOL, 1e-9)

	// a day later the window is empty again
	now = now.Add(25 * time.Hour)
	assert.True(t, rm.CheckBuy(0.5, 0, 10).Allowed)
	assert.Zero(t, rm.DailyUsage())
}

func TestFailedBuysDoNotCount(t *testing.T) {
	rm := NewRiskManager(DefaultRiskConfig())
	rm.RecordResult(&SwapResult{Order: &SwapOrder{Side: SideBuy, Amount: 0.9}, Outcome: OutcomeFailed})
	rm.RecordResult(&SwapResult{Order: &SwapOrder{Side: SideBuy, Amount: 0.9}, Outcome: OutcomeUnknown})
	assert.Zero(t, rm.DailyUsage())
	assert.Empty(t, rm.Quarantined())
}

func TestQuarantineLifecycle(t *testing.T) {
	rm := NewRiskManager(DefaultRiskConfig())
	mint := randKey()
	require.NoError(t, rm.CheckSell(mint))

	rm.RecordResult(&SwapResult{
		Order:     &SwapOrder{Side: SideSell, Mint: mint},
		Signature: "5abc",
		Outcome:   OutcomeUnknown,
		Reason:    "no status after 20 attempts",
	})

	err := rm.CheckSell(mint)
	assert.ErrorIs(t, err, ErrQuarantined)
	assert.Contains(t, err.Error(), "5abc")

	held := rm.Quarantined()
	require.Len(t, held, 1)
	assert.Equal(t, mint.String(), held[0].Mint)
	assert.Equal(t, "5abc", held[0].Signature)

	assert.True(t, rm.Release(mint.String()))
	assert.False(t, rm.Release(mint.String()))
	assert.NoError(t, rm.CheckSell(mint))
}

func TestQuarantinedOrdering(t *testing.T) {
	rm := NewRiskManager(DefaultRiskConfig())
	first, second := randKey(), randKey()
	rm.Quarantine(first, "a", "")
	time.Sleep(time.Millisecond)
	rm.Quarantine(second, "b", "")

	held := rm.Quarantined()
	require.Len(t, held, 2)
	assert.Equal(t, first.String(), held[0].Mint)
	assert.Equal(t, second.String(), held[1].Mint)
}
