package pumpfun

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// TradeAccounts are the per-trade addresses shared by buy and sell.
type TradeAccounts struct {
	Mint              solana.PublicKey
	Curve             solana.PublicKey
	CurveTokenAccount solana.PublicKey
	UserTokenAccount  solana.PublicKey
	User              solana.PublicKey
	TokenProgram      solana.PublicKey // zero means the classic SPL token program
}

func (a TradeAccounts) tokenProgram() solana.PublicKey {
	if a.TokenProgram.IsZero() {
		return solana.TokenProgramID
	}
	return a.TokenProgram
}

func encodeTrade(disc [8]byte, amount, bound uint64) []byte {
	data := make([]byte, 24)
	copy(data[0:8], disc[:])
	binary.LittleEndian.PutUint64(data[8:16], amount)
	binary.LittleEndian.PutUint64(data[16:24], bound)
	return data
}

// NewBuyInstruction buys amount raw tokens paying at most maxSolCost lamports.
func NewBuyInstruction(acc TradeAccounts, amount, maxSolCost uint64) solana.Instruction {
	metas := solana.AccountMetaSlice{
		{PublicKey: GlobalAccount, IsWritable: false, IsSigner: false},
		{PublicKey: FeeRecipient, IsWritable: true, IsSigner: false},
		{PublicKey: acc.Mint, IsWritable: false, IsSigner: false},
		{PublicKey: acc.Curve, IsWritable: true, IsSigner: false},
		{PublicKey: acc.CurveTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: acc.UserTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: acc.User, IsWritable: true, IsSigner: true},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: acc.tokenProgram(), IsWritable: false, IsSigner: false},
		{PublicKey: solana.SysVarRentPubkey, IsWritable: false, IsSigner: false},
		{PublicKey: EventAuthority, IsWritable: false, IsSigner: false},
		{PublicKey: ProgramID, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(ProgramID, metas, encodeTrade(BuyDiscriminator, amount, maxSolCost))
}

// NewSellInstruction sells amount raw tokens for at least minSolOutput lamports.
func NewSellInstruction(acc TradeAccounts, creatorVault solana.PublicKey, amount, minSolOutput uint64) solana.Instruction {
	metas := solana.AccountMetaSlice{
		{PublicKey: GlobalAccount, IsWritable: false, IsSigner: false},
		{PublicKey: FeeRecipient, IsWritable: true, IsSigner: false},
		{PublicKey: acc.Mint, IsWritable: false, IsSigner: false},
		{PublicKey: acc.Curve, IsWritable: true, IsSigner: false},
		{PublicKey: acc.CurveTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: acc.UserTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: acc.User, IsWritable: true, IsSigner: true},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: creatorVault, IsWritable: true, IsSigner: false},
		{PublicKey: acc.tokenProgram(), IsWritable: false, IsSigner: false},
		{PublicKey: EventAuthority, IsWritable: false, IsSigner: false},
		{PublicKey: ProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: FeeConfig, IsWritable: false, IsSigner: false},
		{PublicKey: FeeProgramID, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(ProgramID, metas, encodeTrade(SellDiscriminator, amount, minSolOutput))
}
