package raydium

import (
	"context"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/address"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/solanaix"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// PoolKeysResolver looks up the pool a mint trades in against wrapped SOL.
type PoolKeysResolver interface {
	FindByMint(mint solana.PublicKey) (*PoolKeys, error)
}

// ChainReader is the RPC surface the builder needs to prepare token accounts.
type ChainReader interface {
	solanaix.AccountReader
	solanaix.RentReader
}

type BuilderConfig struct {
	UnitLimit uint32
	UnitPrice uint64
	Logger    *logrus.Logger
}

// Builder assembles AMM v4 swaps that route SOL through a temporary
// wrapped-SOL account living for one transaction.
type Builder struct {
	pools         PoolKeysResolver
	chain         ChainReader
	tokenAccounts *solanaix.TokenAccountResolver
	unitLimit     uint32
	unitPrice     uint64
	logger        *logrus.Logger
}

func NewBuilder(pools PoolKeysResolver, chain ChainReader, cfg BuilderConfig) *Builder {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Builder{
		pools:         pools,
		chain:         chain,
		tokenAccounts: solanaix.NewTokenAccountResolver(chain),
		unitLimit:     cfg.UnitLimit,
		unitPrice:     cfg.UnitPrice,
		logger:        cfg.Logger,
	}
}

// Pool resolves the pool keys for mint.
func (b *Builder) Pool(mint solana.PublicKey) (*PoolKeys, error) {
	if b.pools == nil {
		return nil, errs.NotFound("raydium pool keys for mint %s: no registry", mint)
	}
	return b.pools.FindByMint(mint)
}

// classicOnly rejects Token-2022 mints; AMM v4 vaults are classic SPL accounts.
func classicOnly(mint, tokenProgram solana.PublicKey) error {
	if tokenProgram.Equals(address.Token2022ProgramID) {
		return errs.InvalidInput("raydium amm v4 cannot trade token-2022 mint %s", mint)
	}
	return nil
}

// BuildSell swaps amountIn raw tokens from source into SOL, paid out to owner
// when the temporary wrapped account is closed.
func (b *Builder) BuildSell(ctx context.Context, owner, source, mint solana.PublicKey, amountIn, minOut uint64) (*solanaix.Plan, error) {
	if amountIn == 0 {
		return nil, errs.ErrZeroBalance
	}
	pool, err := b.Pool(mint)
	if err != nil {
		return nil, err
	}
	program, err := solanaix.TokenProgramOf(ctx, b.chain, mint)
	if err != nil {
		return nil, err
	}
	if err := classicOnly(mint, program); err != nil {
		return nil, err
	}

	wsol, err := solanaix.NewWrappedAccount(ctx, b.chain, owner, 0)
	if err != nil {
		return nil, err
	}

	swap, err := NewSwapBaseInInstruction(pool, amountIn, minOut, source, wsol.Account, owner)
	if err != nil {
		return nil, err
	}

	ixs := solanaix.ComputeBudget(b.unitLimit, b.unitPrice)
	ixs = append(ixs, wsol.PreIxs...)
	ixs = append(ixs, swap)
	ixs = append(ixs, wsol.PostIxs...)

	b.logger.WithFields(logrus.Fields{
		"mint":      mint.String(),
		"pool":      pool.ID.String(),
		"amount_in": amountIn,
		"min_out":   minOut,
		"wsol":      wsol.Account.String(),
	}).Debug("raydium sell built")

	return &solanaix.Plan{
		Instructions: ixs,
		Signers:      []solana.PrivateKey{wsol.Signer},
		AmountIn:     amountIn,
		MinOut:       minOut,
		Venue:        VenueName,
		Mint:         mint,
		CreatedAt:    time.Now().Unix(),
	}, nil
}

// BuildBuy spends lamportsIn on mint, creating owner's token account if needed.
func (b *Builder) BuildBuy(ctx context.Context, owner, mint solana.PublicKey, lamportsIn, minOut uint64) (*solanaix.Plan, error) {
	if lamportsIn == 0 {
		return nil, errs.InvalidInput("buy amount must be > 0")
	}
	pool, err := b.Pool(mint)
	if err != nil {
		return nil, err
	}

	dest, err := b.tokenAccounts.Resolve(ctx, owner, owner, mint)
	if err != nil {
		return nil, err
	}
	if err := classicOnly(mint, dest.TokenProgram); err != nil {
		return nil, err
	}

	wsol, err := solanaix.NewWrappedAccount(ctx, b.chain, owner, lamportsIn)
	if err != nil {
		return nil, err
	}

	swap, err := NewSwapBaseInInstruction(pool, lamportsIn, minOut, wsol.Account, dest.Account, owner)
	if err != nil {
		return nil, err
	}

	ixs := solanaix.ComputeBudget(b.unitLimit, b.unitPrice)
	ixs = append(ixs, dest.PreIxs...)
	ixs = append(ixs, wsol.PreIxs...)
	ixs = append(ixs, swap)
	ixs = append(ixs, wsol.PostIxs...)

	return &solanaix.Plan{
		Instructions: ixs,
		Signers:      []solana.PrivateKey{wsol.Signer},
		AmountIn:     lamportsIn,
		MinOut:       minOut,
		MaxIn:        lamportsIn,
		Venue:        VenueName,
		Mint:         mint,
		CreatedAt:    time.Now().Unix(),
	}, nil
}
