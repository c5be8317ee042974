package raydium

import (
	"math"
	"math/big"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
)

// CalculateSwapOutput computes the constant-product output with the fee taken
// from the input. Returns (amountOut, priceImpact).
func CalculateSwapOutput(amountIn, reserveIn, reserveOut, feeNumerator, feeDenominator uint64) (uint64, float64, error) {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0, 0, errs.InvalidInput("swap amounts and reserves must be > 0")
	}
	if feeDenominator == 0 || feeNumerator >= feeDenominator {
		return 0, 0, errs.InvalidInput("invalid fee %d/%d", feeNumerator, feeDenominator)
	}

	afterFee := new(big.Int).Mul(new(big.Int).SetUint64(amountIn), new(big.Int).SetUint64(feeDenominator-feeNumerator))
	afterFee.Div(afterFee, new(big.Int).SetUint64(feeDenominator))

	// out = afterFee * reserveOut / (reserveIn + afterFee)
	numerator := new(big.Int).Mul(afterFee, new(big.Int).SetUint64(reserveOut))
	denominator := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), afterFee)
	out := new(big.Int).Div(numerator, denominator)
	if !out.IsUint64() {
		return 0, 0, errs.InvalidInput("output amount overflow")
	}
	amountOut := out.Uint64()

	idealRate := float64(reserveOut) / float64(reserveIn)
	executionRate := float64(amountOut) / float64(amountIn)
	impact := math.Max(0, 1-(executionRate/idealRate))

	return amountOut, impact, nil
}

// ApplySlippage returns the minimum output for a tolerance in basis points.
func ApplySlippage(amountOut uint64, slippageBps uint16) uint64 {
	if slippageBps >= 10000 {
		return 0
	}
	res := new(big.Int).Mul(new(big.Int).SetUint64(amountOut), new(big.Int).SetUint64(10000-uint64(slippageBps)))
	res.Div(res, big.NewInt(10000))
	return res.Uint64()
}

// SlippageBps converts a percent tolerance to basis points, clamped to 100%.
func SlippageBps(percent float64) uint16 {
	if percent <= 0 || math.IsNaN(percent) {
		return 0
	}
	if percent >= 100 {
		return 10000
	}
	return uint16(math.Round(percent * 100))
}

// CalculateFeeBps converts a fee fraction to basis points.
func CalculateFeeBps(feeNumerator, feeDenominator uint64) uint16 {
	if feeDenominator == 0 {
		return 0
	}
	return uint16((feeNumerator * 10000) / feeDenominator)
}
