package raydium

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// VaultReader reads raw token account balances.
type VaultReader interface {
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// FetchPoolState reads both vault balances for a pool.
func FetchPoolState(ctx context.Context, vaults VaultReader, pool *PoolKeys) (*PoolState, error) {
	base, err := vaults.GetTokenAccountBalance(ctx, pool.BaseVault)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch base vault balance: %w", err)
	}
	quote, err := vaults.GetTokenAccountBalance(ctx, pool.QuoteVault)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote vault balance: %w", err)
	}

	return &PoolState{
		Pool:         pool,
		BaseReserve:  base,
		QuoteReserve: quote,
		Timestamp:    time.Now().Unix(),
	}, nil
}

// Reserves returns (in, out) reserves for a swap spending inputMint.
func (ps *PoolState) Reserves(inputMint solana.PublicKey) (reserveIn, reserveOut uint64, err error) {
	switch {
	case ps.Pool.BaseMint.Equals(inputMint):
		return ps.BaseReserve, ps.QuoteReserve, nil
	case ps.Pool.QuoteMint.Equals(inputMint):
		return ps.QuoteReserve, ps.BaseReserve, nil
	}
	return 0, 0, fmt.Errorf("input mint %s does not match pool mints", inputMint)
}

// Quote estimates the output of spending amountIn of inputMint on the pool.
func Quote(ctx context.Context, vaults VaultReader, pool *PoolKeys, inputMint solana.PublicKey, amountIn uint64, slippageBps uint16) (*SwapQuote, error) {
	outputMint, err := pool.OtherMint(inputMint)
	if err != nil {
		return nil, err
	}

	state, err := FetchPoolState(ctx, vaults, pool)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut, err := state.Reserves(inputMint)
	if err != nil {
		return nil, err
	}

	amountOut, impact, err := CalculateSwapOutput(amountIn, reserveIn, reserveOut, FeeNumerator, FeeDenominator)
	if err != nil {
		return nil, err
	}

	return &SwapQuote{
		PoolID:       pool.ID,
		InputMint:    inputMint,
		OutputMint:   outputMint,
		AmountIn:     amountIn,
		AmountOut:    amountOut,
		MinAmountOut: ApplySlippage(amountOut, slippageBps),
		FeeBps:       CalculateFeeBps(FeeNumerator, FeeDenominator),
		PriceImpact:  impact,
		ReserveIn:    reserveIn,
		ReserveOut:   reserveOut,
	}, nil
}
