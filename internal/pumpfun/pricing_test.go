package pumpfun

import (
	"math"
	"testing"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCurve() *CurveState {
	return &CurveState{
		VirtualSolReserves:   30_000_000_000,
		VirtualTokenReserves: 1_000_000_000_000,
	}
}

func TestQuoteSellFullBalance(t *testing.T) {
	q, err := QuoteSell(testCurve(), 1000, 100, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0.00003, q.TokenPrice, 1e-12)
	assert.InDelta(t, 0.03, q.SolOut, 1e-12)
	assert.Equal(t, uint64(1_000_000_000), q.Amount)
	assert.Equal(t, uint64(27_000_000), q.MinSolOutput)
}

func TestQuoteSellPartial(t *testing.T) {
	q, err := QuoteSell(testCurve(), 1000, 50, 10)
	require.NoError(t, err)

	assert.Equal(t, uint64(500_000_000), q.Amount)
	assert.InDelta(t, 500.0, q.TokenAmount, 1e-9)
}

func TestQuoteSellTruncatesMixedBalance(t *testing.T) {
	q, err := QuoteSell(testCurve(), 12.75, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(12_000_000), q.Amount)

	// below one token the fraction is kept
	q, err = QuoteSell(testCurve(), 0.5, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), q.Amount)
}

func TestQuoteSellSlippageMonotonic(t *testing.T) {
	prev := uint64(1 << 63)
	for _, slip := range []float64{0, 1, 5, 10, 25, 50} {
		q, err := QuoteSell(testCurve(), 1000, 100, slip)
		require.NoError(t, err)
		assert.LessOrEqual(t, q.MinSolOutput, prev, "slippage %v", slip)
		prev = q.MinSolOutput
	}
}

func TestQuoteSellRejectsBadInput(t *testing.T) {
	_, err := QuoteSell(testCurve(), 1000, 0, 10)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = QuoteSell(testCurve(), 1000, 101, 10)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = QuoteSell(testCurve(), 1000, 100, -1)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = QuoteSell(testCurve(), 0, 100, 10)
	assert.ErrorIs(t, err, errs.ErrZeroBalance)
}

func TestQuoteZeroReserves(t *testing.T) {
	empty := &CurveState{}

	_, err := QuoteSell(empty, 1000, 100, 10)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = QuoteBuy(empty, 0.1, 10)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestQuoteBuy(t *testing.T) {
	q, err := QuoteBuy(testCurve(), 0.03, 10)
	require.NoError(t, err)

	// 30_000_000 * 1e12 / 3e10
	assert.Equal(t, uint64(1_000_000_000), q.Amount)
	assert.Equal(t, uint64(33_000_000), q.MaxSolCost)

	_, err = QuoteBuy(testCurve(), 0, 10)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestValidatePercentageBounds(t *testing.T) {
	assert.NoError(t, ValidatePercentage(1))
	assert.NoError(t, ValidatePercentage(100))
	assert.Error(t, ValidatePercentage(0.5))
	assert.Error(t, ValidatePercentage(100.01))
}

func TestQuoteBuySlippageMonotonic(t *testing.T) {
	var prev uint64
	for _, slip := range []float64{0, 0.5, 1, 5, 10, 25, 50, 100, 250} {
		q, err := QuoteBuy(testCurve(), 0.25, slip)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, q.MaxSolCost, prev, "slippage %v", slip)
		assert.GreaterOrEqual(t, q.MaxSolCost, uint64(250_000_000), "slippage %v", slip)
		prev = q.MaxSolCost
	}
}

func TestQuoteSellNeverExceedsBalance(t *testing.T) {
	balances := []float64{0.1, 0.3, 0.999999, 1, 1.5, 12.75, 999.999999, 123456.789, 1e9 + 0.5}
	percentages := []float64{1, 2.5, 33.3, 99.9, 100}

	for _, balance := range balances {
		for _, pct := range percentages {
			q, err := QuoteSell(testCurve(), balance, pct, 10)
			require.NoError(t, err, "balance %v pct %v", balance, pct)

			held := balance
			if balance > 1 {
				held = math.Trunc(balance)
			}
			assert.LessOrEqual(t, float64(q.Amount), held*1e6, "balance %v pct %v", balance, pct)
			assert.LessOrEqual(t, float64(q.Amount), balance*1e6, "balance %v pct %v", balance, pct)
			if pct == 100 {
				assert.Equal(t, uint64(held*1e6), q.Amount, "balance %v", balance)
			}
		}
	}
}
