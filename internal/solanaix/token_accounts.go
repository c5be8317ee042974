package solanaix

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/address"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/errs"
	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// AccountReader is the read side of the RPC client used to resolve accounts.
type AccountReader interface {
	GetAccountInfo(ctx context.Context, address solana.PublicKey) (*rpc.AccountInfo, error)
}

// RentReader returns the rent-exempt minimum for an account size.
type RentReader interface {
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
}

// ResolvedTokenAccount describes a token account to use for a swap plus any
// instructions needed to make it usable (e.g. create ATA).
type ResolvedTokenAccount struct {
	Account      solana.PublicKey
	TokenProgram solana.PublicKey
	Created      bool // true if PreIxs creates the account
	PreIxs       []solana.Instruction
}

// TokenProgramOf returns the program that owns mint. A mint the node does not
// know is assumed to be a classic SPL mint.
func TokenProgramOf(ctx context.Context, accounts AccountReader, mint solana.PublicKey) (solana.PublicKey, error) {
	info, err := accounts.GetAccountInfo(ctx, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if info == nil {
		return solana.TokenProgramID, nil
	}
	if !address.IsTokenProgram(info.Owner) {
		return solana.PublicKey{}, errs.InvalidInput("mint %s is owned by %s, not a token program", mint, info.Owner)
	}
	return info.Owner, nil
}

// TokenAccountResolver resolves the owner's ATA for a mint, creating it in
// the same transaction when it is missing.
type TokenAccountResolver struct {
	accounts AccountReader
}

func NewTokenAccountResolver(accounts AccountReader) *TokenAccountResolver {
	return &TokenAccountResolver{accounts: accounts}
}

func (r *TokenAccountResolver) Resolve(ctx context.Context, payer, owner, mint solana.PublicKey) (*ResolvedTokenAccount, error) {
	if r == nil || r.accounts == nil {
		return nil, fmt.Errorf("token account resolver: account reader is nil")
	}

	program, err := TokenProgramOf(ctx, r.accounts, mint)
	if err != nil {
		return nil, err
	}
	ata, err := address.AssociatedTokenAddressFor(owner, mint, program)
	if err != nil {
		return nil, err
	}

	info, err := r.accounts.GetAccountInfo(ctx, ata)
	if err != nil {
		return nil, err
	}
	if info != nil {
		return &ResolvedTokenAccount{Account: ata, TokenProgram: program}, nil
	}

	createATA := NewCreateAssociatedTokenAccountIx(payer, ata, owner, mint, program)
	return &ResolvedTokenAccount{
		Account:      ata,
		TokenProgram: program,
		Created:      true,
		PreIxs:       []solana.Instruction{createATA},
	}, nil
}

// WrappedAccount is a temporary wrapped-SOL token account that lives for a
// single transaction. Signer must co-sign the transaction.
type WrappedAccount struct {
	Account  solana.PublicKey
	Signer   solana.PrivateKey
	Lamports uint64
	PreIxs   []solana.Instruction
	PostIxs  []solana.Instruction
}

// NewWrappedAccount builds the create/initialize/close instructions for a
// fresh wrapped-SOL account funded with rent + amount lamports.
func NewWrappedAccount(ctx context.Context, rent RentReader, payer solana.PublicKey, amount uint64) (*WrappedAccount, error) {
	minRent, err := rent.GetMinimumBalanceForRentExemption(ctx, TokenAccountSize)
	if err != nil {
		return nil, fmt.Errorf("rent exemption for wrapped account: %w", err)
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate wrapped account key: %w", err)
	}
	account := key.PublicKey()
	lamports := minRent + amount

	return &WrappedAccount{
		Account:  account,
		Signer:   key,
		Lamports: lamports,
		PreIxs: []solana.Instruction{
			NewCreateAccountIx(payer, account, lamports, TokenAccountSize, solana.TokenProgramID),
			NewTokenInitializeAccountIx(account, solana.SolMint, payer),
		},
		PostIxs: []solana.Instruction{
			NewTokenCloseAccountIx(account, payer, payer),
		},
	}, nil
}
