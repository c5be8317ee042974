package raydium

import (
	"github.com/gagliardetto/solana-go"
)

// Raydium AMM v4 program and its swap fee.
var (
	ProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
)

const (
	FeeNumerator   uint64 = 25
	FeeDenominator uint64 = 10000
)

// VenueName labels plans and outcomes built here.
const VenueName = "raydium"

// PoolKeys is the address bundle of one AMM v4 pool and its OpenBook market.
type PoolKeys struct {
	ID               solana.PublicKey
	ProgramID        solana.PublicKey
	Authority        solana.PublicKey
	OpenOrders       solana.PublicKey
	TargetOrders     solana.PublicKey
	BaseMint         solana.PublicKey
	QuoteMint        solana.PublicKey
	BaseVault        solana.PublicKey
	QuoteVault       solana.PublicKey
	BaseDecimals     uint8
	QuoteDecimals    uint8
	MarketProgramID  solana.PublicKey
	MarketID         solana.PublicKey
	MarketBids       solana.PublicKey
	MarketAsks       solana.PublicKey
	MarketEventQueue solana.PublicKey
	MarketBaseVault  solana.PublicKey
	MarketQuoteVault solana.PublicKey
	MarketAuthority  solana.PublicKey
}

// PoolState holds vault balances read at quote time.
type PoolState struct {
	Pool         *PoolKeys
	BaseReserve  uint64
	QuoteReserve uint64
	Timestamp    int64
}

// SwapQuote is a constant-product estimate for one direction of a pool.
type SwapQuote struct {
	PoolID       solana.PublicKey
	InputMint    solana.PublicKey
	OutputMint   solana.PublicKey
	AmountIn     uint64
	AmountOut    uint64
	MinAmountOut uint64
	FeeBps       uint16
	PriceImpact  float64 // 0.01 = 1%
	ReserveIn    uint64
	ReserveOut   uint64
}
