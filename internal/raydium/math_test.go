package raydium

import (
	"context"
	"testing"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSwapOutput(t *testing.T) {
	// 1000 in, 25bps fee -> 997 effective; 997*1e6/(1e6+997) = 996
	out, impact, err := CalculateSwapOutput(1000, 1_000_000, 1_000_000, FeeNumerator, FeeDenominator)
	require.NoError(t, err)
	assert.Equal(t, uint64(996), out)
	assert.Greater(t, impact, 0.0)
	assert.Less(t, impact, 0.01)
}

func TestCalculateSwapOutputRejectsEmptyPool(t *testing.T) {
	_, _, err := CalculateSwapOutput(1000, 0, 1_000_000, FeeNumerator, FeeDenominator)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, _, err = CalculateSwapOutput(1000, 10, 10, 5, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestApplySlippage(t *testing.T) {
	assert.Equal(t, uint64(900), ApplySlippage(1000, 1000))
	assert.Equal(t, uint64(1000), ApplySlippage(1000, 0))
	assert.Equal(t, uint64(0), ApplySlippage(1000, 10000))
}

func TestSlippageBps(t *testing.T) {
	assert.Equal(t, uint16(1000), SlippageBps(10))
	assert.Equal(t, uint16(50), SlippageBps(0.5))
	assert.Equal(t, uint16(0), SlippageBps(-3))
	assert.Equal(t, uint16(10000), SlippageBps(250))
}

type fakeVaults map[solana.PublicKey]uint64

func (f fakeVaults) GetTokenAccountBalance(_ context.Context, account solana.PublicKey) (uint64, error) {
	bal, ok := f[account]
	if !ok {
		return 0, errs.NotFound("vault %s", account)
	}
	return bal, nil
}

func TestQuoteSellDirection(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	pool := &PoolKeys{
		ID:         solana.NewWallet().PublicKey(),
		BaseMint:   mint,
		QuoteMint:  solana.SolMint,
		BaseVault:  solana.NewWallet().PublicKey(),
		QuoteVault: solana.NewWallet().PublicKey(),
	}
	vaults := fakeVaults{
		pool.BaseVault:  1_000_000_000_000, // tokens
		pool.QuoteVault: 50_000_000_000,    // lamports
	}

	q, err := Quote(context.Background(), vaults, pool, mint, 1_000_000_000, SlippageBps(10))
	require.NoError(t, err)
	assert.Equal(t, solana.SolMint, q.OutputMint)
	assert.Equal(t, uint64(1_000_000_000_000), q.ReserveIn)
	assert.Equal(t, uint64(50_000_000_000), q.ReserveOut)
	assert.Less(t, q.MinAmountOut, q.AmountOut)
	// roughly 0.05 SOL for 0.1% of the pool
	assert.InDelta(t, 49_825_000, float64(q.AmountOut), 100_000)
}

func TestQuoteForeignMint(t *testing.T) {
	pool := &PoolKeys{BaseMint: solana.NewWallet().PublicKey(), QuoteMint: solana.SolMint}
	_, err := Quote(context.Background(), fakeVaults{}, pool, solana.NewWallet().PublicKey(), 1, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
