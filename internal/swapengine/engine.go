package swapengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/constants"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/pumpfun"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/raydium"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/solanaix"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/storage"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// EngineChain is the read side of the RPC client the engine needs.
type EngineChain interface {
	pumpfun.AccountReader
	solanaix.RentReader
	raydium.VaultReader
	GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (*rpc.TokenAccount, error)
	GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error)
}

// PriceLookup gives a spot price in SOL and the symbol for pool-traded mints.
type PriceLookup interface {
	GetSpotPrice(ctx context.Context, mint string) (float64, error)
	GetSymbol(ctx context.Context, mint string) (token, quote string, err error)
}

// EngineConfig holds configuration for the swap engine
type EngineConfig struct {
	UnitLimit       uint32
	UnitPrice       uint64
	SlippagePercent float64

	Risk     *RiskManager
	Notifier storage.OutcomeSink
	Prices   PriceLookup
	Logger   *logrus.Logger
}

// Engine turns a mint and an intent into a submitted, confirmed swap.
type Engine struct {
	chain    EngineChain
	executor *Executor
	router   *Router
	curve    *pumpfun.Builder
	pool     *raydium.Builder
	risk     *RiskManager
	notifier storage.OutcomeSink
	prices   PriceLookup
	slippage float64
	logger   *logrus.Logger
}

func NewEngine(chain EngineChain, executor *Executor, pools raydium.PoolKeysResolver, cfg EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Risk == nil {
		cfg.Risk = NewRiskManager(DefaultRiskConfig())
	}
	if cfg.SlippagePercent == 0 {
		cfg.SlippagePercent = 10
	}

	return &Engine{
		chain:    chain,
		executor: executor,
		router:   NewRouter(chain),
		curve: pumpfun.NewBuilder(chain, pumpfun.BuilderConfig{
			UnitLimit: cfg.UnitLimit,
			UnitPrice: cfg.UnitPrice,
			Logger:    cfg.Logger,
		}),
		pool: raydium.NewBuilder(pools, chain, raydium.BuilderConfig{
			UnitLimit: cfg.UnitLimit,
			UnitPrice: cfg.UnitPrice,
			Logger:    cfg.Logger,
		}),
		risk:     cfg.Risk,
		notifier: cfg.Notifier,
		prices:   cfg.Prices,
		slippage: cfg.SlippagePercent,
		logger:   cfg.Logger,
	}
}

// Risk exposes the quarantine for the status API.
func (e *Engine) Risk() *RiskManager { return e.risk }

// DefaultSlippage is the configured slippage percent.
func (e *Engine) DefaultSlippage() float64 { return e.slippage }

// Route reports where mint trades right now.
func (e *Engine) Route(ctx context.Context, mint solana.PublicKey) (*Route, error) {
	return e.router.Route(ctx, mint)
}

// Sell exits percentage of the wallet's live balance of mint.
// Pre-submission failures return a nil result; submitted swaps always return
// a result whose Err classifies the outcome.
func (e *Engine) Sell(ctx context.Context, mint solana.PublicKey, percentage, slippage float64) (*SwapResult, error) {
	if err := e.risk.CheckSell(mint); err != nil {
		return nil, err
	}
	if err := pumpfun.ValidatePercentage(percentage); err != nil {
		return nil, err
	}

	route, err := e.router.Route(ctx, mint)
	if err != nil {
		return nil, err
	}
	holding, err := e.tokenBalance(ctx, mint)
	if err != nil {
		return nil, err
	}

	owner := e.executor.Payer()
	order := &SwapOrder{
		Venue:           route.Venue,
		Mint:            mint,
		Side:            SideSell,
		Amount:          uiAmount(holding),
		Percentage:      percentage,
		SlippagePercent: slippage,
	}

	var (
		plan  *solanaix.Plan
		price float64
	)
	if route.Venue == VenueCurve {
		var q *pumpfun.SellQuote
		plan, q, err = e.curve.BuildSell(owner, holding.Program, route.Curve, order.Amount, percentage, slippage)
		switch {
		case err == nil:
			price = q.TokenPrice
		case errors.Is(err, pumpfun.ErrCurveComplete):
			order.Venue = VenuePool
		default:
			return nil, err
		}
	}
	if order.Venue == VenuePool {
		amountRaw := scaleRaw(holding.Amount, percentage)
		minOut := e.poolMinOut(ctx, mint, mint, amountRaw, slippage)
		plan, err = e.pool.BuildSell(ctx, owner, holding.Address, mint, amountRaw, minOut)
		if err != nil {
			return nil, err
		}
		price = e.spotPrice(ctx, mint)
	}

	order.AmountRaw = plan.AmountIn
	order.Bound = plan.MinOut

	e.logger.WithFields(logrus.Fields{
		"mint":    mint.String(),
		"venue":   order.Venue,
		"amount":  order.AmountRaw,
		"min_out": order.Bound,
	}).Info("submitting sell")

	result := e.executor.Execute(ctx, plan, order)
	e.finish(ctx, result, price, e.symbol(ctx, mint, order.Venue))
	return result, result.Err()
}

// Buy spends solIn SOL on mint on whichever venue it trades.
func (e *Engine) Buy(ctx context.Context, mint solana.PublicKey, solIn, slippage float64) (*SwapResult, error) {
	owner := e.executor.Payer()

	lamports, err := e.chain.GetBalance(ctx, owner)
	if err != nil {
		return nil, err
	}
	if check := e.risk.CheckBuy(solIn, slippage, float64(lamports)/float64(solana.LAMPORTS_PER_SOL)); !check.Allowed {
		return nil, errs.InvalidInput("risk check rejected: %s", check.Reason)
	}

	route, err := e.router.Route(ctx, mint)
	if err != nil {
		return nil, err
	}

	order := &SwapOrder{
		Venue:           route.Venue,
		Mint:            mint,
		Side:            SideBuy,
		Amount:          solIn,
		SlippagePercent: slippage,
	}

	var (
		plan  *solanaix.Plan
		price float64
	)
	if route.Venue == VenueCurve {
		plan, _, err = e.curve.BuildBuy(ctx, owner, route.Curve, solIn, slippage)
		switch {
		case err == nil:
			price, _ = route.Curve.TokenPrice()
			order.AmountRaw = plan.AmountIn
			order.Bound = plan.MaxIn
		case errors.Is(err, pumpfun.ErrCurveComplete):
			order.Venue = VenuePool
		default:
			return nil, err
		}
	}
	if order.Venue == VenuePool {
		if math.IsNaN(solIn) || solIn <= 0 {
			return nil, errs.InvalidInput("sol amount %v must be positive", solIn)
		}
		lamportsIn := uint64(solIn * float64(solana.LAMPORTS_PER_SOL))
		minOut := e.poolMinOut(ctx, mint, solana.SolMint, lamportsIn, slippage)
		plan, err = e.pool.BuildBuy(ctx, owner, mint, lamportsIn, minOut)
		if err != nil {
			return nil, err
		}
		order.AmountRaw = lamportsIn
		order.Bound = lamportsIn
		price = e.spotPrice(ctx, mint)
	}

	result := e.executor.Execute(ctx, plan, order)
	e.finish(ctx, result, price, e.symbol(ctx, mint, order.Venue))
	return result, result.Err()
}

// Quote previews a sell without building or submitting a transaction.
func (e *Engine) Quote(ctx context.Context, mint solana.PublicKey, percentage, slippage float64) (*SellQuote, error) {
	if err := pumpfun.ValidatePercentage(percentage); err != nil {
		return nil, err
	}
	route, err := e.router.Route(ctx, mint)
	if err != nil {
		return nil, err
	}
	holding, err := e.tokenBalance(ctx, mint)
	if err != nil {
		return nil, err
	}

	out := &SellQuote{
		Mint:         mint,
		Venue:        route.Venue,
		TokenBalance: uiAmount(holding),
		Percentage:   percentage,
		QuotedAt:     time.Now(),
	}

	if route.Venue == VenueCurve {
		q, err := pumpfun.QuoteSell(route.Curve, out.TokenBalance, percentage, slippage)
		if err != nil {
			return nil, err
		}
		out.AmountRaw = q.Amount
		out.TokenPrice = q.TokenPrice
		out.ExpectedSOL = q.SolOut
		out.MinSOLOut = float64(q.MinSolOutput) / float64(solana.LAMPORTS_PER_SOL)
		return out, nil
	}

	pool, err := e.pool.Pool(mint)
	if err != nil {
		return nil, err
	}
	out.AmountRaw = scaleRaw(holding.Amount, percentage)
	q, err := raydium.Quote(ctx, e.chain, pool, mint, out.AmountRaw, raydium.SlippageBps(slippage))
	if err != nil {
		return nil, err
	}
	out.ExpectedSOL = float64(q.AmountOut) / float64(solana.LAMPORTS_PER_SOL)
	out.MinSOLOut = float64(q.MinAmountOut) / float64(solana.LAMPORTS_PER_SOL)
	out.PriceImpact = q.PriceImpact
	if out.TokenBalance > 0 {
		out.TokenPrice = out.ExpectedSOL / (out.TokenBalance * percentage / 100)
	}
	return out, nil
}

// tokenBalance reads the live holding; no account or an empty one is ErrZeroBalance.
func (e *Engine) tokenBalance(ctx context.Context, mint solana.PublicKey) (*rpc.TokenAccount, error) {
	holding, err := e.chain.GetTokenBalance(ctx, e.executor.Payer(), mint)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%w: no token account for %s", errs.ErrZeroBalance, mint)
	}
	if err != nil {
		return nil, err
	}
	if holding.Amount == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrZeroBalance, mint)
	}
	return holding, nil
}

// poolMinOut quotes the pool from live vault balances. Without a quote the
// floor is zero, matching an unprotected market sell.
func (e *Engine) poolMinOut(ctx context.Context, mint, inputMint solana.PublicKey, amountIn uint64, slippage float64) uint64 {
	pool, err := e.pool.Pool(mint)
	if err != nil {
		return 0
	}
	q, err := raydium.Quote(ctx, e.chain, pool, inputMint, amountIn, raydium.SlippageBps(slippage))
	if err != nil {
		e.logger.WithError(err).WithField("mint", mint.String()).Warn("pool quote failed, submitting without a floor")
		return 0
	}
	return q.MinAmountOut
}

func (e *Engine) spotPrice(ctx context.Context, mint solana.PublicKey) float64 {
	if e.prices == nil {
		return 0
	}
	price, err := e.prices.GetSpotPrice(ctx, mint.String())
	if err != nil {
		e.logger.WithError(err).WithField("mint", mint.String()).Debug("spot price unavailable")
		return 0
	}
	return price
}

// symbol names mint for outcome events. Pool-traded mints are looked up;
// curve mints and failed lookups use the built-in table.
func (e *Engine) symbol(ctx context.Context, mint solana.PublicKey, venue Venue) string {
	if venue == VenuePool && e.prices != nil {
		token, _, err := e.prices.GetSymbol(ctx, mint.String())
		if err == nil && token != "" {
			return token
		}
		if err != nil {
			e.logger.WithError(err).WithField("mint", mint.String()).Debug("symbol unavailable")
		}
	}
	return constants.SymbolFor(mint.String(), "")
}

func (e *Engine) finish(ctx context.Context, result *SwapResult, price float64, symbol string) {
	e.risk.RecordResult(result)

	entry := e.logger.WithFields(logrus.Fields{
		"mint":       result.Order.Mint.String(),
		"symbol":     symbol,
		"venue":      result.Order.Venue,
		"side":       result.Order.Side,
		"signature":  result.Signature,
		"outcome":    result.Outcome,
		"fee_sol":    result.FeeSOL,
		"latency_ms": result.Latency.Milliseconds(),
	})
	switch result.Outcome {
	case OutcomeConfirmed:
		entry.Info("swap confirmed")
	case OutcomeUnknown:
		entry.WithField("reason", result.Reason).Error("swap outcome unknown, mint quarantined")
	default:
		entry.WithField("reason", result.Reason).Warn("swap failed")
	}

	if e.notifier != nil {
		_ = e.notifier.RecordOutcome(ctx, NewSellOutcome(result, symbol, price))
	}
}

func uiAmount(t *rpc.TokenAccount) float64 {
	if t.UIAmount > 0 {
		return t.UIAmount
	}
	return float64(t.Amount) / math.Pow10(t.Decimals)
}

// scaleRaw takes percentage of a raw token amount, rounding down.
func scaleRaw(raw uint64, percentage float64) uint64 {
	if percentage >= 100 {
		return raw
	}
	bps := new(big.Int).SetUint64(uint64(math.Round(percentage * 100)))
	out := new(big.Int).Mul(new(big.Int).SetUint64(raw), bps)
	return out.Div(out, big.NewInt(10000)).Uint64()
}
