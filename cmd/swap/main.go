package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/app"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/config"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/swapengine"
	"github.com/gagliardetto/solana-go"
)

// swap runs one manual trade against the same engine the auto-sell loop uses.
func main() {
	side := flag.String("side", "quote", "quote | sell | buy")
	mintArg := flag.String("mint", "", "token mint address")
	amount := flag.Float64("amount", 0, "SOL to spend (buy only)")
	percentage := flag.Float64("percentage", 100, "percent of balance to sell (1-100)")
	slippage := flag.Float64("slippage", 0, "slippage percent (default: SLIPPAGE_PERCENT)")
	flag.Parse()

	mint, err := solana.PublicKeyFromBase58(*mintArg)
	if err != nil {
		fmt.Println("missing or invalid -mint:", err)
		os.Exit(2)
	}
	if *side == "buy" && *amount <= 0 {
		fmt.Println("missing -amount (must be > 0)")
		os.Exit(2)
	}

	logger := app.NewLogger(os.Getenv("LOG_LEVEL"))
	app.LoadEnv(logger)
	cfg := config.Load()
	logger = app.NewLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		fmt.Println("failed to init engine:", err)
		os.Exit(1)
	}
	defer rt.Close()

	slip := *slippage
	if slip == 0 {
		slip = rt.Engine.DefaultSlippage()
	}

	switch *side {
	case "quote":
		q, err := rt.Engine.Quote(ctx, mint, *percentage, slip)
		if err != nil {
			fmt.Println("quote failed:", err)
			os.Exit(1)
		}
		fmt.Printf("venue=%s balance=%.6f amount_raw=%d price=%.10f expected_sol=%.9f min_sol=%.9f impact=%.4f\n",
			q.Venue, q.TokenBalance, q.AmountRaw, q.TokenPrice, q.ExpectedSOL, q.MinSOLOut, q.PriceImpact)
	case "sell":
		res, err := rt.Engine.Sell(ctx, mint, *percentage, slip)
		report(res, err)
	case "buy":
		res, err := rt.Engine.Buy(ctx, mint, *amount, slip)
		report(res, err)
	default:
		fmt.Println("invalid -side (use quote|sell|buy)")
		os.Exit(2)
	}
}

func report(res *swapengine.SwapResult, err error) {
	if res != nil {
		fmt.Printf("outcome=%s sig=%s attempts=%d fee_sol=%.9f latency=%s\n",
			res.Outcome, res.Signature, res.Attempts, res.FeeSOL, res.Latency)
	}
	if err != nil {
		fmt.Println("swap failed:", err)
		os.Exit(1)
	}
}
