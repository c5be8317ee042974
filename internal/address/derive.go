// Package address derives program-owned addresses. Nothing here performs I/O.
package address

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// AssociatedTokenProgramID is the SPL Associated Token Account program.
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

	// Token2022ProgramID is the SPL Token-2022 program.
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// IsTokenProgram reports whether program can own mints and token accounts.
func IsTokenProgram(program solana.PublicKey) bool {
	return program.Equals(solana.TokenProgramID) || program.Equals(Token2022ProgramID)
}

// Derived is a program-derived address with its bump seed.
type Derived struct {
	Address solana.PublicKey
	Bump    uint8
}

// Derive computes the program address for [seed, key] under program.
// The result depends only on its inputs.
func Derive(seed string, key, program solana.PublicKey) (Derived, error) {
	if seed == "" {
		return Derived{}, fmt.Errorf("derive: empty seed")
	}
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{
			[]byte(seed),
			key.Bytes(),
		},
		program,
	)
	if err != nil {
		return Derived{}, fmt.Errorf("derive %q for %s: %w", seed, key, err)
	}
	return Derived{Address: addr, Bump: bump}, nil
}

// AssociatedTokenAddress derives the ATA for (owner, mint) under the classic
// token program.
func AssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	return AssociatedTokenAddressFor(owner, mint, solana.TokenProgramID)
}

// AssociatedTokenAddressFor derives the ATA for (owner, mint) under
// tokenProgram, which is part of the seed.
func AssociatedTokenAddressFor(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	if !IsTokenProgram(tokenProgram) {
		return solana.PublicKey{}, fmt.Errorf("derive ata for %s/%s: %s is not a token program", owner, mint, tokenProgram)
	}
	// Seeds: [owner, token_program, mint]
	ata, _, err := solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			tokenProgram.Bytes(),
			mint.Bytes(),
		},
		AssociatedTokenProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive ata for %s/%s: %w", owner, mint, err)
	}
	return ata, nil
}
