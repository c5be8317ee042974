package pumpfun

import "github.com/gagliardetto/solana-go"

// pump.fun program and fixed accounts
var (
	ProgramID      = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	GlobalAccount  = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	FeeRecipient   = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
	EventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
	FeeProgramID   = solana.MustPublicKeyFromBase58("pfeeUxB6jkeY1Hxd7CsFCAjcbHA9rWtchMGdZ6VojVZ")
	FeeConfig      = solana.MustPublicKeyFromBase58("8Wf5TiAheLUqBrKXeYg2JtAFFMWtKdG2BSFgqUcPVwTt")
)

// Instruction discriminators (first 8 bytes of sha256("global:<name>"))
var (
	BuyDiscriminator  = [8]byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}
	SellDiscriminator = [8]byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}
)

// PDA seeds
const (
	SeedBondingCurve = "bonding-curve"
	SeedCreatorVault = "creator-vault"
)

// Base unit scales: lamports per SOL and raw units per token (6 decimals).
const (
	solDecimal   = 1e9
	tokenDecimal = 1e6
)
