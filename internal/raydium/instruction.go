package raydium

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// swapBaseInTag is the AMM v4 instruction index for SwapBaseIn.
const swapBaseInTag = 9

// NewSwapBaseInInstruction swaps amountIn from userSource into userDest,
// failing on-chain if fewer than minAmountOut arrive.
func NewSwapBaseInInstruction(
	pool *PoolKeys,
	amountIn uint64,
	minAmountOut uint64,
	userSource solana.PublicKey,
	userDest solana.PublicKey,
	userOwner solana.PublicKey,
) (solana.Instruction, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: pool.ID, IsWritable: true, IsSigner: false},
		{PublicKey: pool.Authority, IsWritable: false, IsSigner: false},
		{PublicKey: pool.OpenOrders, IsWritable: true, IsSigner: false},
		{PublicKey: pool.TargetOrders, IsWritable: true, IsSigner: false},
		{PublicKey: pool.BaseVault, IsWritable: true, IsSigner: false},
		{PublicKey: pool.QuoteVault, IsWritable: true, IsSigner: false},
		{PublicKey: pool.MarketProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: pool.MarketID, IsWritable: true, IsSigner: false},
		{PublicKey: pool.MarketBids, IsWritable: true, IsSigner: false},
		{PublicKey: pool.MarketAsks, IsWritable: true, IsSigner: false},
		{PublicKey: pool.MarketEventQueue, IsWritable: true, IsSigner: false},
		{PublicKey: pool.MarketBaseVault, IsWritable: true, IsSigner: false},
		{PublicKey: pool.MarketQuoteVault, IsWritable: true, IsSigner: false},
		{PublicKey: pool.MarketAuthority, IsWritable: false, IsSigner: false},
		{PublicKey: userSource, IsWritable: true, IsSigner: false},
		{PublicKey: userDest, IsWritable: true, IsSigner: false},
		{PublicKey: userOwner, IsWritable: false, IsSigner: true},
	}

	// [0] tag, [1:9] amount_in, [9:17] minimum_amount_out
	data := make([]byte, 17)
	data[0] = swapBaseInTag
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minAmountOut)

	return solana.NewInstruction(pool.ProgramID, accounts, data), nil
}
