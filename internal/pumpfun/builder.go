package pumpfun

import (
	"context"
	"errors"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/address"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/solanaix"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// VenueName labels plans and outcomes built here.
const VenueName = "pumpfun"

// ErrCurveComplete means the curve has migrated and the mint now trades on a pool.
var ErrCurveComplete = errors.New("bonding curve complete")

// Default compute budget for curve trades.
const (
	DefaultUnitLimit uint32 = 100_000
	DefaultUnitPrice uint64 = 1_000_000
)

type BuilderConfig struct {
	UnitLimit uint32
	UnitPrice uint64
	Logger    *logrus.Logger
}

// Builder assembles pump.fun buy and sell instruction lists.
type Builder struct {
	tokenAccounts *solanaix.TokenAccountResolver
	unitLimit     uint32
	unitPrice     uint64
	logger        *logrus.Logger
}

func NewBuilder(accounts solanaix.AccountReader, cfg BuilderConfig) *Builder {
	if cfg.UnitLimit == 0 {
		cfg.UnitLimit = DefaultUnitLimit
	}
	if cfg.UnitPrice == 0 {
		cfg.UnitPrice = DefaultUnitPrice
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Builder{
		tokenAccounts: solanaix.NewTokenAccountResolver(accounts),
		unitLimit:     cfg.UnitLimit,
		unitPrice:     cfg.UnitPrice,
		logger:        cfg.Logger,
	}
}

// BuildSell sells percentage of balance (whole tokens) held by owner.
// tokenProgram owns the mint; zero means the classic SPL token program.
func (b *Builder) BuildSell(owner, tokenProgram solana.PublicKey, state *CurveState, balance, percentage, slippage float64) (*solanaix.Plan, *SellQuote, error) {
	if state.Complete {
		return nil, nil, ErrCurveComplete
	}

	quote, err := QuoteSell(state, balance, percentage, slippage)
	if err != nil {
		return nil, nil, err
	}

	if tokenProgram.IsZero() {
		tokenProgram = solana.TokenProgramID
	}
	userATA, err := address.AssociatedTokenAddressFor(owner, state.Mint, tokenProgram)
	if err != nil {
		return nil, nil, err
	}
	vault, err := CreatorVault(state.Creator)
	if err != nil {
		return nil, nil, err
	}

	b.logger.WithFields(logrus.Fields{
		"mint":        state.Mint.String(),
		"price":       quote.TokenPrice,
		"tokens":      quote.TokenAmount,
		"min_sol_out": quote.MinSolOutput,
	}).Debug("pumpfun sell sized")

	ixs := solanaix.ComputeBudget(b.unitLimit, b.unitPrice)
	ixs = append(ixs, NewSellInstruction(TradeAccounts{
		Mint:              state.Mint,
		Curve:             state.Curve,
		CurveTokenAccount: state.CurveTokenAccount,
		UserTokenAccount:  userATA,
		User:              owner,
		TokenProgram:      tokenProgram,
	}, vault, quote.Amount, quote.MinSolOutput))

	return &solanaix.Plan{
		Instructions: ixs,
		AmountIn:     quote.Amount,
		MinOut:       quote.MinSolOutput,
		Venue:        VenueName,
		Mint:         state.Mint,
		CreatedAt:    time.Now().Unix(),
	}, quote, nil
}

// BuildBuy spends solIn SOL on the curve, creating the owner's ATA if needed.
func (b *Builder) BuildBuy(ctx context.Context, owner solana.PublicKey, state *CurveState, solIn, slippage float64) (*solanaix.Plan, *BuyQuote, error) {
	if state.Complete {
		return nil, nil, ErrCurveComplete
	}

	quote, err := QuoteBuy(state, solIn, slippage)
	if err != nil {
		return nil, nil, err
	}

	ata, err := b.tokenAccounts.Resolve(ctx, owner, owner, state.Mint)
	if err != nil {
		return nil, nil, err
	}

	ixs := solanaix.ComputeBudget(b.unitLimit, b.unitPrice)
	ixs = append(ixs, ata.PreIxs...)
	ixs = append(ixs, NewBuyInstruction(TradeAccounts{
		Mint:              state.Mint,
		Curve:             state.Curve,
		CurveTokenAccount: state.CurveTokenAccount,
		UserTokenAccount:  ata.Account,
		User:              owner,
		TokenProgram:      ata.TokenProgram,
	}, quote.Amount, quote.MaxSolCost))

	return &solanaix.Plan{
		Instructions: ixs,
		AmountIn:     uint64(solIn * solDecimal),
		MinOut:       quote.Amount,
		MaxIn:        quote.MaxSolCost,
		Venue:        VenueName,
		Mint:         state.Mint,
		CreatedAt:    time.Now().Unix(),
	}, quote, nil
}
