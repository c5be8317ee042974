package solanaix

import (
	"encoding/binary"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/address"
	"github.com/gagliardetto/solana-go"
)

var (
	// ComputeBudgetProgramID is the native compute budget program.
	ComputeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
)

// TokenAccountSize is the byte size of an SPL token account.
const TokenAccountSize = 165

// NewSetComputeUnitLimitIx caps the compute units the transaction may use.
func NewSetComputeUnitLimitIx(units uint32) solana.Instruction {
	// ComputeBudget instruction 2 = SetComputeUnitLimit(u32)
	data := make([]byte, 1+4)
	data[0] = 2
	binary.LittleEndian.PutUint32(data[1:5], units)
	return solana.NewInstruction(ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// NewSetComputeUnitPriceIx sets the priority fee in micro-lamports per unit.
func NewSetComputeUnitPriceIx(microLamports uint64) solana.Instruction {
	// ComputeBudget instruction 3 = SetComputeUnitPrice(u64)
	data := make([]byte, 1+8)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:9], microLamports)
	return solana.NewInstruction(ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// ComputeBudget returns the limit and price instructions, skipping zero values.
func ComputeBudget(units uint32, microLamports uint64) []solana.Instruction {
	var ixs []solana.Instruction
	if units > 0 {
		ixs = append(ixs, NewSetComputeUnitLimitIx(units))
	}
	if microLamports > 0 {
		ixs = append(ixs, NewSetComputeUnitPriceIx(microLamports))
	}
	return ixs
}

// NewCreateAssociatedTokenAccountIx builds an instruction to create an ATA.
// Account order (ATA program):
// 0. payer (signer, writable)
// 1. ata (writable)
// 2. owner (read-only)
// 3. mint (read-only)
// 4. system_program
// 5. token_program
// 6. rent_sysvar
func NewCreateAssociatedTokenAccountIx(
	payer solana.PublicKey,
	ata solana.PublicKey,
	owner solana.PublicKey,
	mint solana.PublicKey,
	tokenProgram solana.PublicKey,
) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: tokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}

	// ATA create instruction data is empty.
	return solana.NewInstruction(address.AssociatedTokenProgramID, accounts, nil)
}

// NewCreateAccountIx builds a SystemProgram CreateAccount instruction.
// Both funder and the new account must sign.
func NewCreateAccountIx(funder, newAccount solana.PublicKey, lamports, space uint64, owner solana.PublicKey) solana.Instruction {
	// SystemProgram instruction layout:
	// u32: instruction index (0 = CreateAccount)
	// u64: lamports
	// u64: space
	// [32]: owner program
	data := make([]byte, 4+8+8+32)
	binary.LittleEndian.PutUint32(data[0:4], 0)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	binary.LittleEndian.PutUint64(data[12:20], space)
	copy(data[20:52], owner.Bytes())

	accounts := []*solana.AccountMeta{
		{PublicKey: funder, IsSigner: true, IsWritable: true},
		{PublicKey: newAccount, IsSigner: true, IsWritable: true},
	}
	return solana.NewInstruction(solana.SystemProgramID, accounts, data)
}

// NewTokenInitializeAccountIx builds a SPL Token InitializeAccount instruction.
func NewTokenInitializeAccountIx(account, mint, owner solana.PublicKey) solana.Instruction {
	// TokenProgram instruction index 1 = InitializeAccount
	data := []byte{1}
	accounts := []*solana.AccountMeta{
		{PublicKey: account, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(solana.TokenProgramID, accounts, data)
}

// NewTokenCloseAccountIx builds a SPL Token CloseAccount instruction.
func NewTokenCloseAccountIx(account, destination, owner solana.PublicKey) solana.Instruction {
	// TokenProgram instruction index 9 = CloseAccount
	data := []byte{9}
	accounts := []*solana.AccountMeta{
		{PublicKey: account, IsSigner: false, IsWritable: true},
		{PublicKey: destination, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(solana.TokenProgramID, accounts, data)
}
