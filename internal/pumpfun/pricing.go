package pumpfun

import (
	"math"
	"math/big"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
)

// SellQuote is the sizing of a curve sell.
type SellQuote struct {
	TokenPrice   float64 // SOL per token
	TokenAmount  float64 // whole tokens being sold
	SolOut       float64 // expected SOL before slippage
	Amount       uint64  // raw token units
	MinSolOutput uint64  // lamports floor
}

// BuyQuote is the sizing of a curve buy.
type BuyQuote struct {
	SolIn      float64
	Amount     uint64 // raw token units expected
	MaxSolCost uint64 // lamports cap
}

// ValidatePercentage accepts whole-wallet fractions in [1, 100].
func ValidatePercentage(percentage float64) error {
	if math.IsNaN(percentage) || percentage < 1 || percentage > 100 {
		return errs.InvalidInput("percentage %v must be between 1 and 100", percentage)
	}
	return nil
}

func validateSlippage(slippage float64) error {
	if math.IsNaN(slippage) || slippage < 0 || slippage > 100 {
		return errs.InvalidInput("slippage %v must be between 0 and 100", slippage)
	}
	return nil
}

// QuoteSell sizes a sell of percentage of balance (whole tokens).
//
// A fractional balance above 1 is truncated to its integer part before the
// percentage is applied; a balance below 1 is sold including the fraction.
// Full exits of mixed balances therefore leave the fractional dust behind.
func QuoteSell(state *CurveState, balance, percentage, slippage float64) (*SellQuote, error) {
	if err := ValidatePercentage(percentage); err != nil {
		return nil, err
	}
	if err := validateSlippage(slippage); err != nil {
		return nil, err
	}

	price, err := state.TokenPrice()
	if err != nil {
		return nil, err
	}

	if math.Mod(balance, 1) != 0 && balance > 1 {
		balance = math.Trunc(balance)
	}
	if balance <= 0 {
		return nil, errs.ErrZeroBalance
	}

	held := uint64(balance * tokenDecimal)
	balance *= percentage / 100

	// never ask the program for more raw units than the wallet holds
	amount := uint64(balance * tokenDecimal)
	if amount > held {
		amount = held
	}

	solOut := balance * price
	return &SellQuote{
		TokenPrice:   price,
		TokenAmount:  balance,
		SolOut:       solOut,
		Amount:       amount,
		MinSolOutput: uint64(solOut * (1 - slippage/100) * solDecimal),
	}, nil
}

// QuoteBuy sizes a buy spending solIn SOL.
func QuoteBuy(state *CurveState, solIn, slippage float64) (*BuyQuote, error) {
	if math.IsNaN(solIn) || solIn <= 0 {
		return nil, errs.InvalidInput("sol amount %v must be positive", solIn)
	}
	if math.IsNaN(slippage) || slippage < 0 {
		return nil, errs.InvalidInput("slippage %v must not be negative", slippage)
	}
	if err := state.checkReserves(); err != nil {
		return nil, err
	}

	lamports := new(big.Int).SetUint64(uint64(solIn * solDecimal))
	amount := new(big.Int).Mul(lamports, new(big.Int).SetUint64(state.VirtualTokenReserves))
	amount.Div(amount, new(big.Int).SetUint64(state.VirtualSolReserves))
	if !amount.IsUint64() {
		return nil, errs.InvalidInput("buy amount overflows u64")
	}

	return &BuyQuote{
		SolIn:      solIn,
		Amount:     amount.Uint64(),
		MaxSolCost: uint64(solIn * (1 + slippage/100) * solDecimal),
	}, nil
}
